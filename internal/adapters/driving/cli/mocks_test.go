package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driving"
)

type mockChatService struct {
	deltas    []string
	streamErr error
}

func (m *mockChatService) StreamChat(ctx context.Context, sessionID, message string, h driving.StreamHandler) error {
	h.Stage(domain.StageInit, "")
	for _, d := range m.deltas {
		h.Delta(d)
	}
	return m.streamErr
}

func (m *mockChatService) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	return nil, nil
}

func (m *mockChatService) ClearSession(ctx context.Context, sessionID string) error {
	return nil
}

type mockIngestService struct {
	report    domain.IngestReport
	batchErr  error
	lastFiles []driving.NamedContent
}

func (m *mockIngestService) IngestFile(ctx context.Context, fileName string, content []byte) (int, error) {
	report, err := m.IngestBatch(ctx, []driving.NamedContent{{FileName: fileName, Content: content}})
	if err != nil {
		return 0, err
	}
	return report.ChunksAdded, nil
}

func (m *mockIngestService) IngestBatch(ctx context.Context, files []driving.NamedContent) (domain.IngestReport, error) {
	m.lastFiles = files
	if m.batchErr != nil {
		return domain.IngestReport{}, m.batchErr
	}
	if len(m.report.Outcomes) == 0 {
		// Default: every file succeeds with one chunk.
		report := domain.IngestReport{}
		for _, f := range files {
			report.Outcomes = append(report.Outcomes, domain.FileOutcome{
				FileName:    f.FileName,
				ChunksAdded: 1,
			})
			report.ChunksAdded++
		}
		return report, nil
	}
	return m.report, nil
}

type mockLibraryService struct {
	files    []domain.FileInfo
	previews []domain.ChunkPreview
	total    int
	deleted  int
	err      error
}

func (m *mockLibraryService) ListFiles(ctx context.Context) ([]domain.FileInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.files, nil
}

func (m *mockLibraryService) FileChunks(ctx context.Context, fileName string, offset, limit, previewLen int) ([]domain.ChunkPreview, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.previews, m.total, nil
}

func (m *mockLibraryService) SearchInFile(ctx context.Context, fileName, query string, limit int) ([]domain.ChunkPreview, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.previews, nil
}

func (m *mockLibraryService) DeleteFile(ctx context.Context, fileName string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.deleted, nil
}

// setupTestServices wires mock services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	oldChat, oldIngest, oldLibrary := chatService, ingestService, libraryService
	oldValidate, oldServe, oldAddr := validateAI, serveAPI, defaultAddr

	chatService = &mockChatService{deltas: []string{"mock answer"}}
	ingestService = &mockIngestService{}
	libraryService = &mockLibraryService{}
	validateAI = nil
	serveAPI = nil

	return func() {
		chatService, ingestService, libraryService = oldChat, oldIngest, oldLibrary
		validateAI, serveAPI, defaultAddr = oldValidate, oldServe, oldAddr
	}
}

// execute runs the root command with args, capturing output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
