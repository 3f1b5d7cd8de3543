package driving

import (
	"context"

	"github.com/raglite/raglite/internal/core/domain"
)

// IngestService turns raw documents into stored, embedded chunks.
type IngestService interface {
	// IngestFile chunks, embeds and stores one document, replacing any
	// previous ingestion of the same file name. Returns the number of
	// chunks stored.
	IngestFile(ctx context.Context, fileName string, content []byte) (int, error)

	// IngestBatch ingests several documents. A failing file does not
	// abort the batch; the report carries per-file outcomes.
	IngestBatch(ctx context.Context, files []NamedContent) (domain.IngestReport, error)
}

// NamedContent is a document submitted for ingestion.
type NamedContent struct {
	// FileName is the name to ingest the document under.
	FileName string

	// Content is the raw document bytes.
	Content []byte
}
