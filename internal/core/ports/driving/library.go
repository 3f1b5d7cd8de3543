package driving

import (
	"context"

	"github.com/raglite/raglite/internal/core/domain"
)

// LibraryService inspects and manages the ingested file library.
type LibraryService interface {
	// ListFiles summarises every ingested file.
	ListFiles(ctx context.Context) ([]domain.FileInfo, error)

	// FileChunks returns one page of a file's chunks as previews, plus
	// the file's total chunk count. previewLen > 0 truncates content.
	FileChunks(ctx context.Context, fileName string, offset, limit, previewLen int) ([]domain.ChunkPreview, int, error)

	// SearchInFile finds chunks of one file whose content contains the
	// query, case-insensitively.
	SearchInFile(ctx context.Context, fileName, query string, limit int) ([]domain.ChunkPreview, error)

	// DeleteFile removes a file's chunks, returning how many were removed.
	DeleteFile(ctx context.Context, fileName string) (int, error)
}
