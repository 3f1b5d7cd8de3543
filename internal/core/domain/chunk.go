package domain

import "time"

// Chunk represents a retrievable unit of an ingested document.
// Chunks are immutable after creation and are only destroyed by
// deleting all chunks of their owning file.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Content is the text content of this chunk.
	Content string

	// FileName is the name of the file the chunk came from.
	FileName string

	// ChunkIndex is the ordinal position within the file.
	// Indexes are dense and start at 0 in chunking order.
	ChunkIndex int

	// FileType is the detected type of the owning file ("text", "markdown", ...).
	FileType string

	// Embedding is the vector representation for semantic search.
	// Its dimension is fixed process-wide by the embedding provider.
	Embedding []float32

	// CreatedAt is when the chunk was stored.
	CreatedAt time.Time
}

// FileInfo summarises the stored chunks of one ingested file.
type FileInfo struct {
	// FileName is the name the file was ingested under.
	FileName string

	// FileType is the detected type of the file.
	FileType string

	// ChunkCount is the number of stored chunks.
	ChunkCount int

	// FirstUpload is the creation time of the oldest chunk.
	FirstUpload time.Time

	// LastUpload is the creation time of the newest chunk.
	LastUpload time.Time
}

// ChunkPreview is a chunk projection with optionally truncated content,
// used for paginated file inspection.
type ChunkPreview struct {
	// ID is the chunk identifier.
	ID string

	// FileName is the owning file.
	FileName string

	// FileType is the owning file's type.
	FileType string

	// ChunkIndex is the ordinal position within the file.
	ChunkIndex int

	// ContentLength is the full content length in bytes.
	ContentLength int

	// Content holds the (possibly truncated) chunk text.
	Content string

	// CreatedAt is when the chunk was stored.
	CreatedAt time.Time
}
