package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglite/raglite/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *httptest.Server {
	t.Helper()
	if ports.Chat == nil {
		ports.Chat = &mockChatService{}
	}
	if ports.Ingest == nil {
		ports.Ingest = &mockIngestService{}
	}
	if ports.Library == nil {
		ports.Library = &mockLibraryService{}
	}

	s, err := NewServer(ports)
	require.NoError(t, err)

	server := httptest.NewServer(s.Handler())
	t.Cleanup(server.Close)
	return server
}

// sseEvents reads an SSE body into its decoded payloads.
func sseEvents(t *testing.T, body io.Reader) []string {
	t.Helper()
	data, err := io.ReadAll(body)
	require.NoError(t, err)

	var events []string
	for _, line := range strings.Split(string(data), "\n") {
		if payload, ok := strings.CutPrefix(line, "data: "); ok {
			events = append(events, payload)
		}
	}
	return events
}

func TestNewServer_RequiresPorts(t *testing.T) {
	_, err := NewServer(&Ports{})
	assert.Error(t, err)
}

func TestChatStream(t *testing.T) {
	chat := &mockChatService{
		stages: []domain.Stage{domain.StageInit, domain.StageRetrieve, domain.StageGenerate},
		deltas: []string{"Hello ", "world.\nBye."},
	}
	server := newTestServer(t, &Ports{Chat: chat})

	resp, err := http.Post(server.URL+"/chat/stream", "application/json",
		strings.NewReader(`{"session_id":"s1","message":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := sseEvents(t, resp.Body)
	assert.Equal(t, []string{
		"<think>init</think>",
		"<think>retrieve</think>",
		"<think>generate</think>",
		"Hello ",
		"world.[NEWLINE]Bye.",
		"[DONE]",
	}, events)

	assert.Equal(t, "s1", chat.lastSessionID)
	assert.Equal(t, "hi", chat.lastMessage)
}

func TestChatStream_PipelineError(t *testing.T) {
	chat := &mockChatService{
		stages:    []domain.Stage{domain.StageInit},
		streamErr: errors.New("completion unreachable"),
	}
	server := newTestServer(t, &Ports{Chat: chat})

	resp, err := http.Post(server.URL+"/chat/stream", "application/json",
		strings.NewReader(`{"session_id":"s1","message":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	events := sseEvents(t, resp.Body)
	require.NotEmpty(t, events)
	assert.Equal(t, "[ERROR] completion unreachable", events[len(events)-1])
	assert.NotContains(t, events, "[DONE]")
}

func TestChatStream_MissingFields(t *testing.T) {
	server := newTestServer(t, &Ports{})

	resp, err := http.Post(server.URL+"/chat/stream", "application/json",
		strings.NewReader(`{"session_id":"s1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpload(t *testing.T) {
	ingest := &mockIngestService{
		report: domain.IngestReport{
			Outcomes: []domain.FileOutcome{
				{FileName: "notes.md", ChunksAdded: 3},
			},
			ChunksAdded: 3,
		},
	}
	server := newTestServer(t, &Ports{Ingest: ingest})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.md")
	require.NoError(t, err)
	fmt.Fprint(part, "# Notes\n\nSome content.")
	require.NoError(t, mw.Close())

	resp, err := http.Post(server.URL+"/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, ingest.lastFiles, 1)
	assert.Equal(t, "notes.md", ingest.lastFiles[0].FileName)

	var body struct {
		ChunksAdded int `json:"chunks_added"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 3, body.ChunksAdded)
}

func TestUpload_PartialFailure(t *testing.T) {
	ingest := &mockIngestService{
		report: domain.IngestReport{
			Outcomes: []domain.FileOutcome{
				{FileName: "good.txt", ChunksAdded: 2},
				{FileName: "bad.bin", Err: domain.ErrMalformedInput},
			},
			ChunksAdded: 2,
		},
	}
	server := newTestServer(t, &Ports{Ingest: ingest})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"good.txt", "bad.bin"} {
		part, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		fmt.Fprint(part, "content")
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(server.URL+"/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMultiStatus, resp.StatusCode)
}

func TestUpload_NotMultipart(t *testing.T) {
	server := newTestServer(t, &Ports{})

	resp, err := http.Post(server.URL+"/upload", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListFiles(t *testing.T) {
	library := &mockLibraryService{
		files: []domain.FileInfo{
			{FileName: "a.md", FileType: "markdown", ChunkCount: 4, LastUpload: time.Now()},
		},
	}
	server := newTestServer(t, &Ports{Library: library})

	resp, err := http.Get(server.URL + "/files")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Files []fileResponse `json:"files"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Files, 1)
	assert.Equal(t, "a.md", body.Files[0].FileName)
	assert.Equal(t, 4, body.Files[0].ChunkCount)
}

func TestDeleteFile_NotFound(t *testing.T) {
	library := &mockLibraryService{err: domain.ErrNotFound}
	server := newTestServer(t, &Ports{Library: library})

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/files/missing.txt", http.NoBody)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFileChunks(t *testing.T) {
	library := &mockLibraryService{
		previews: []domain.ChunkPreview{
			{ID: "c1", ChunkIndex: 0, ContentLength: 40, Content: "preview"},
		},
		total: 9,
	}
	server := newTestServer(t, &Ports{Library: library})

	resp, err := http.Get(server.URL + "/files/a.md/chunks?offset=0&limit=1")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Total  int             `json:"total"`
		Chunks []chunkResponse `json:"chunks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 9, body.Total)
	require.Len(t, body.Chunks, 1)
	assert.Equal(t, "c1", body.Chunks[0].ID)
}

func TestFileSearch_RequiresQuery(t *testing.T) {
	server := newTestServer(t, &Ports{})

	resp, err := http.Get(server.URL + "/files/a.md/search")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFileSearch(t *testing.T) {
	library := &mockLibraryService{
		previews: []domain.ChunkPreview{{ID: "c2", Content: "kernel tuning"}},
	}
	server := newTestServer(t, &Ports{Library: library})

	resp, err := http.Get(server.URL + "/files/a.md/search?q=kernel")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "kernel", library.lastQuery)
}

func TestSessionHistory(t *testing.T) {
	chat := &mockChatService{
		history: []domain.Turn{
			{Role: domain.RoleUser, Content: "hi"},
			{Role: domain.RoleAssistant, Content: "hello"},
		},
	}
	server := newTestServer(t, &Ports{Chat: chat})

	resp, err := http.Get(server.URL + "/sessions/s1/history")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		SessionID string         `json:"session_id"`
		History   []turnResponse `json:"history"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "s1", body.SessionID)
	require.Len(t, body.History, 2)
	assert.Equal(t, domain.RoleAssistant, body.History[1].Role)
}

func TestClearSession(t *testing.T) {
	chat := &mockChatService{}
	server := newTestServer(t, &Ports{Chat: chat})

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/sessions/s1", http.NoBody)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "s1", chat.clearedID)
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t, &Ports{})

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
