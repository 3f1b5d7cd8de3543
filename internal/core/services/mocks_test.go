package services

import (
	"context"
	"strings"
	"sync"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driven"
	"github.com/raglite/raglite/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	mu         sync.Mutex
	embedding  []float32
	embedErr   error
	dims       int
	embedCalls int
	batchCalls int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.mu.Lock()
	m.embedCalls++
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 4
}

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

func (m *mockEmbeddingService) calls() (embed, batch int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embedCalls, m.batchCalls
}

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits []domain.SearchCandidate
	err  error
}

func (m *mockVectorIndex) Nearest(_ context.Context, _ []float32, k int) ([]domain.SearchCandidate, error) {
	if m.err != nil {
		return nil, m.err
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

// mockLexicalIndex implements driven.LexicalIndex for testing.
type mockLexicalIndex struct {
	hits []domain.SearchCandidate
	err  error
}

func (m *mockLexicalIndex) Similar(_ context.Context, _ string, limit int) ([]domain.SearchCandidate, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:limit], nil
}

// mockChunkStore implements driven.ChunkStore for testing.
type mockChunkStore struct {
	mu       sync.Mutex
	saved    map[string][]domain.Chunk
	files    []domain.FileInfo
	scanHits []domain.SearchCandidate

	saveErr   error
	listErr   error
	chunksErr error
	deleteErr error
	scanErr   error
}

func newMockChunkStore() *mockChunkStore {
	return &mockChunkStore{saved: make(map[string][]domain.Chunk)}
}

func (m *mockChunkStore) SaveChunks(_ context.Context, fileName string, chunks []domain.Chunk) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[fileName] = chunks
	return nil
}

func (m *mockChunkStore) GetChunk(_ context.Context, id string) (domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chunks := range m.saved {
		for _, c := range chunks {
			if c.ID == id {
				return c, nil
			}
		}
	}
	return domain.Chunk{}, domain.ErrNotFound
}

func (m *mockChunkStore) ListFiles(_ context.Context) ([]domain.FileInfo, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.files, nil
}

func (m *mockChunkStore) ChunksByFile(_ context.Context, fileName string, offset, limit int) ([]domain.Chunk, int, error) {
	if m.chunksErr != nil {
		return nil, 0, m.chunksErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	chunks, ok := m.saved[fileName]
	if !ok {
		return nil, 0, domain.ErrNotFound
	}
	total := len(chunks)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return chunks[offset:end], total, nil
}

func (m *mockChunkStore) DeleteFileChunks(_ context.Context, fileName string) (int, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	chunks, ok := m.saved[fileName]
	if !ok {
		return 0, domain.ErrNotFound
	}
	delete(m.saved, fileName)
	return len(chunks), nil
}

func (m *mockChunkStore) ScanContent(_ context.Context, fileName, query string, limit int) ([]domain.SearchCandidate, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	if m.scanHits != nil {
		if limit < len(m.scanHits) {
			return m.scanHits[:limit], nil
		}
		return m.scanHits, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var hits []domain.SearchCandidate
	for name, chunks := range m.saved {
		if fileName != "" && name != fileName {
			continue
		}
		for _, c := range chunks {
			if strings.Contains(strings.ToLower(c.Content), strings.ToLower(query)) {
				hits = append(hits, domain.SearchCandidate{
					ChunkID:    c.ID,
					Content:    c.Content,
					FileName:   c.FileName,
					ChunkIndex: c.ChunkIndex,
				})
				if len(hits) == limit {
					return hits, nil
				}
			}
		}
	}
	return hits, nil
}

func (m *mockChunkStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, chunks := range m.saved {
		n += len(chunks)
	}
	return n, nil
}

func (m *mockChunkStore) Dimensions(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chunks := range m.saved {
		for _, c := range chunks {
			return len(c.Embedding), nil
		}
	}
	return 0, nil
}

func (m *mockChunkStore) Close() error { return nil }

// mockCompletionService implements driven.CompletionService for testing.
type mockCompletionService struct {
	mu sync.Mutex

	chatReply string
	chatErr   error
	chatCalls int

	streamDeltas []string
	streamErr    error
	failAfter    int // deltas delivered before streamErr; 0 means all

	lastMessages []driven.ChatMessage
}

func (m *mockCompletionService) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.chatCalls++
	m.mu.Unlock()
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.chatReply, nil
}

func (m *mockCompletionService) ChatStream(
	_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions, onDelta func(string),
) (string, error) {
	m.mu.Lock()
	m.lastMessages = messages
	m.mu.Unlock()

	var sb strings.Builder
	for i, delta := range m.streamDeltas {
		if m.streamErr != nil && i == m.failAfter {
			return "", m.streamErr
		}
		onDelta(delta)
		sb.WriteString(delta)
	}
	if m.streamErr != nil && m.failAfter >= len(m.streamDeltas) {
		return "", m.streamErr
	}
	return sb.String(), nil
}

func (m *mockCompletionService) ModelName() string { return "mock-llm" }

func (m *mockCompletionService) Ping(_ context.Context) error { return nil }

func (m *mockCompletionService) Close() error { return nil }

func (m *mockCompletionService) messages() []driven.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastMessages
}

// mockRetriever implements driving.SearchService for testing the
// orchestrator without real legs.
type mockRetriever struct {
	result domain.RetrievalResult
	err    error
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, _ int) (domain.RetrievalResult, error) {
	if m.err != nil {
		return domain.RetrievalResult{}, m.err
	}
	return m.result, nil
}

// recordingHandler captures everything a pipeline reports.
type recordingHandler struct {
	mu     sync.Mutex
	stages []domain.Stage
	notes  []string
	deltas []string
	errs   []error
}

func (r *recordingHandler) handler() (h driving.StreamHandler) {
	h.OnStage = func(stage domain.Stage, note string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.stages = append(r.stages, stage)
		r.notes = append(r.notes, note)
	}
	h.OnDelta = func(text string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.deltas = append(r.deltas, text)
	}
	h.OnError = func(err error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.errs = append(r.errs, err)
	}
	return h
}

func (r *recordingHandler) answer() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.deltas, "")
}
