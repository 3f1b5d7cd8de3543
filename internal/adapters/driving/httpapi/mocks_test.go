package httpapi

import (
	"context"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driving"
)

// mockChatService scripts the stream handler callbacks.
type mockChatService struct {
	stages    []domain.Stage
	deltas    []string
	streamErr error

	history    []domain.Turn
	historyErr error
	clearedID  string

	lastSessionID string
	lastMessage   string
}

func (m *mockChatService) StreamChat(ctx context.Context, sessionID, message string, h driving.StreamHandler) error {
	m.lastSessionID = sessionID
	m.lastMessage = message

	for _, stage := range m.stages {
		h.Stage(stage, "")
	}
	for _, d := range m.deltas {
		h.Delta(d)
	}
	if m.streamErr != nil {
		h.Stage(domain.StageError, m.streamErr.Error())
		h.Error(m.streamErr)
		return m.streamErr
	}
	h.Stage(domain.StageDone, "")
	return nil
}

func (m *mockChatService) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.history, nil
}

func (m *mockChatService) ClearSession(ctx context.Context, sessionID string) error {
	m.clearedID = sessionID
	return nil
}

// mockIngestService records submissions and returns a scripted report.
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
	return m.report, nil
}

// mockLibraryService returns scripted library data.
type mockLibraryService struct {
	files     []domain.FileInfo
	previews  []domain.ChunkPreview
	total     int
	deleted   int
	err       error
	lastQuery string
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
	m.lastQuery = query
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
