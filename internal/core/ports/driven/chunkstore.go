package driven

import (
	"context"

	"github.com/raglite/raglite/internal/core/domain"
)

// ChunkStore persists document chunks and serves the file library.
type ChunkStore interface {
	// SaveChunks stores the chunks of one file. Any chunks previously
	// stored under the same file name are removed first, so re-ingesting
	// a file replaces it rather than duplicating it.
	SaveChunks(ctx context.Context, fileName string, chunks []domain.Chunk) error

	// GetChunk returns one chunk by id. domain.ErrNotFound when absent.
	GetChunk(ctx context.Context, id string) (domain.Chunk, error)

	// ListFiles summarises every ingested file.
	ListFiles(ctx context.Context) ([]domain.FileInfo, error)

	// ChunksByFile returns a page of a file's chunks in chunk order.
	// domain.ErrNotFound when the file has no chunks.
	ChunksByFile(ctx context.Context, fileName string, offset, limit int) ([]domain.Chunk, int, error)

	// DeleteFileChunks removes all chunks of a file, returning how many
	// were removed. domain.ErrNotFound when the file has no chunks.
	DeleteFileChunks(ctx context.Context, fileName string) (int, error)

	// ScanContent finds chunks whose content contains the query,
	// case-insensitively. fileName narrows the scan to one file when
	// non-empty. Match order follows chunk storage order.
	ScanContent(ctx context.Context, fileName, query string, limit int) ([]domain.SearchCandidate, error)

	// Count returns the total number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Dimensions returns the embedding dimension of the stored chunks,
	// or 0 when the store is empty.
	Dimensions(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
