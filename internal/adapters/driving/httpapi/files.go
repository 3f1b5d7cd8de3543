package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driving"
)

// maxUploadBytes caps the total size of one upload request.
const maxUploadBytes = 32 << 20 // 32 MiB

// Default pagination for chunk listing.
const (
	defaultChunkPageSize = 20
	defaultPreviewLen    = 200
)

// fileResponse is one entry in GET /files.
type fileResponse struct {
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type"`
	ChunkCount  int       `json:"chunk_count"`
	FirstUpload time.Time `json:"first_upload"`
	LastUpload  time.Time `json:"last_upload"`
}

// chunkResponse is one chunk preview in chunk listing and search.
type chunkResponse struct {
	ID            string `json:"id"`
	ChunkIndex    int    `json:"chunk_index"`
	ContentLength int    `json:"content_length"`
	Content       string `json:"content"`
}

// outcomeResponse is one per-file result in the upload report.
type outcomeResponse struct {
	FileName    string `json:"file_name"`
	ChunksAdded int    `json:"chunks_added"`
	Error       string `json:"error,omitempty"`
}

// handleUpload ingests the files of a multipart form. Individual file
// failures do not fail the request; the report carries them.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, fmt.Errorf("%w: expected multipart form upload", domain.ErrInvalidInput))
		return
	}

	var files []driving.NamedContent
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			f, err := header.Open()
			if err != nil {
				writeError(w, fmt.Errorf("open uploaded file %q: %w", header.Filename, err))
				return
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				writeError(w, fmt.Errorf("read uploaded file %q: %w", header.Filename, err))
				return
			}
			files = append(files, driving.NamedContent{
				FileName: header.Filename,
				Content:  content,
			})
		}
	}
	if len(files) == 0 {
		writeError(w, fmt.Errorf("%w: no files in upload", domain.ErrInvalidInput))
		return
	}

	report, err := s.ports.Ingest.IngestBatch(r.Context(), files)
	if err != nil {
		writeError(w, err)
		return
	}

	outcomes := make([]outcomeResponse, len(report.Outcomes))
	for i, o := range report.Outcomes {
		outcomes[i] = outcomeResponse{
			FileName:    o.FileName,
			ChunksAdded: o.ChunksAdded,
		}
		if o.Err != nil {
			outcomes[i].Error = o.Err.Error()
		}
	}

	status := http.StatusOK
	if len(report.Failed()) > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, map[string]any{
		"chunks_added": report.ChunksAdded,
		"files":        outcomes,
	})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	infos, err := s.ports.Library.ListFiles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]fileResponse, len(infos))
	for i, info := range infos {
		out[i] = fileResponse{
			FileName:    info.FileName,
			FileType:    info.FileType,
			ChunkCount:  info.ChunkCount,
			FirstUpload: info.FirstUpload,
			LastUpload:  info.LastUpload,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": out})
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	fileName := r.PathValue("name")

	deleted, err := s.ports.Library.DeleteFile(r.Context(), fileName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"file_name":      fileName,
		"chunks_deleted": deleted,
	})
}

func (s *Server) handleFileChunks(w http.ResponseWriter, r *http.Request) {
	fileName := r.PathValue("name")
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", defaultChunkPageSize)
	previewLen := queryInt(r, "preview", defaultPreviewLen)

	previews, total, err := s.ports.Library.FileChunks(r.Context(), fileName, offset, limit, previewLen)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"file_name": fileName,
		"total":     total,
		"offset":    offset,
		"chunks":    toChunkResponses(previews),
	})
}

func (s *Server) handleFileSearch(w http.ResponseWriter, r *http.Request) {
	fileName := r.PathValue("name")
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, fmt.Errorf("%w: query parameter q is required", domain.ErrInvalidInput))
		return
	}
	limit := queryInt(r, "limit", defaultChunkPageSize)

	previews, err := s.ports.Library.SearchInFile(r.Context(), fileName, query, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"file_name": fileName,
		"query":     query,
		"chunks":    toChunkResponses(previews),
	})
}

func toChunkResponses(previews []domain.ChunkPreview) []chunkResponse {
	out := make([]chunkResponse, len(previews))
	for i, p := range previews {
		out[i] = chunkResponse{
			ID:            p.ID,
			ChunkIndex:    p.ChunkIndex,
			ContentLength: p.ContentLength,
			Content:       p.Content,
		}
	}
	return out
}

// queryInt reads an integer query parameter, falling back to def when
// absent or unparseable.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
