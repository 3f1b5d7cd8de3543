package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driven"
	"github.com/raglite/raglite/internal/core/ports/driving"
	"github.com/raglite/raglite/internal/logger"
)

// Ensure Library implements the interface.
var _ driving.LibraryService = (*Library)(nil)

// Pagination defaults for file inspection.
const (
	// DefaultChunkPageSize is the per-page chunk count.
	DefaultChunkPageSize = 20

	// DefaultPreviewLen truncates chunk content in previews, in runes.
	DefaultPreviewLen = 200
)

// Library inspects and manages the ingested file library.
type Library struct {
	store driven.ChunkStore
}

// NewLibrary creates a library service over the chunk store.
func NewLibrary(store driven.ChunkStore) *Library {
	return &Library{store: store}
}

// ListFiles summarises every ingested file.
func (l *Library) ListFiles(ctx context.Context) ([]domain.FileInfo, error) {
	files, err := l.store.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// FileChunks returns one page of a file's chunks as previews plus the
// file's total chunk count.
func (l *Library) FileChunks(
	ctx context.Context, fileName string, offset, limit, previewLen int,
) ([]domain.ChunkPreview, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultChunkPageSize
	}
	if previewLen <= 0 {
		previewLen = DefaultPreviewLen
	}

	chunks, total, err := l.store.ChunksByFile(ctx, fileName, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("chunks of %s: %w", fileName, err)
	}

	previews := make([]domain.ChunkPreview, len(chunks))
	for i, c := range chunks {
		previews[i] = preview(c, previewLen)
	}

	return previews, total, nil
}

// SearchInFile finds chunks of one file whose content contains the
// query, case-insensitively.
func (l *Library) SearchInFile(
	ctx context.Context, fileName, query string, limit int,
) ([]domain.ChunkPreview, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultChunkPageSize
	}

	hits, err := l.store.ScanContent(ctx, fileName, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search in %s: %w", fileName, err)
	}

	previews := make([]domain.ChunkPreview, len(hits))
	for i, hit := range hits {
		previews[i] = domain.ChunkPreview{
			ID:            hit.ChunkID,
			FileName:      hit.FileName,
			ChunkIndex:    hit.ChunkIndex,
			ContentLength: len(hit.Content),
			Content:       truncateRunes(hit.Content, DefaultPreviewLen),
		}
	}

	logger.Debug("Search in %s: %d hits for %q", fileName, len(hits), query)
	return previews, nil
}

// DeleteFile removes a file's chunks, returning how many were removed.
func (l *Library) DeleteFile(ctx context.Context, fileName string) (int, error) {
	removed, err := l.store.DeleteFileChunks(ctx, fileName)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", fileName, err)
	}

	logger.Info("Deleted %s: %d chunks removed", fileName, removed)
	return removed, nil
}

func preview(c domain.Chunk, previewLen int) domain.ChunkPreview {
	return domain.ChunkPreview{
		ID:            c.ID,
		FileName:      c.FileName,
		FileType:      c.FileType,
		ChunkIndex:    c.ChunkIndex,
		ContentLength: len(c.Content),
		Content:       truncateRunes(c.Content, previewLen),
		CreatedAt:     c.CreatedAt,
	}
}

// truncateRunes shortens s to max runes, marking the cut with an ellipsis.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
