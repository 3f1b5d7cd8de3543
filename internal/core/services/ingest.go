package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/raglite/raglite/internal/chunker"
	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driven"
	"github.com/raglite/raglite/internal/core/ports/driving"
	"github.com/raglite/raglite/internal/logger"
)

// Ensure Ingestor implements the interface.
var _ driving.IngestService = (*Ingestor)(nil)

// Ingestion defaults, overridable through IngestorConfig.
const (
	// DefaultEmbedBatchSize is how many chunks embed per provider call.
	DefaultEmbedBatchSize = 16

	// DefaultEmbedRate throttles embedding calls per second during bulk
	// ingestion so a local provider is not flooded.
	DefaultEmbedRate = 4.0
)

// IngestorConfig tunes ingestion. Zero values take the package defaults.
type IngestorConfig struct {
	MinTokens      int
	MaxTokens      int
	FlatChunkSize  int
	EmbedBatchSize int
	EmbedRate      float64
}

// Ingestor turns raw documents into stored, embedded chunks. Markdown
// goes through the structure-aware chunker; plain text and JSON go
// through the flat sentence chunker.
type Ingestor struct {
	store    driven.ChunkStore
	embedder driven.EmbeddingService

	structured    *chunker.Structured
	flatChunkSize int
	batchSize     int
	limiter       *rate.Limiter
}

// NewIngestor creates an ingestor over the given store and embedder.
func NewIngestor(store driven.ChunkStore, embedder driven.EmbeddingService, cfg IngestorConfig) *Ingestor {
	if cfg.FlatChunkSize <= 0 {
		cfg.FlatChunkSize = chunker.DefaultMaxChunkSize
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = DefaultEmbedBatchSize
	}
	if cfg.EmbedRate <= 0 {
		cfg.EmbedRate = DefaultEmbedRate
	}

	var opts []chunker.Option
	if cfg.MinTokens > 0 {
		opts = append(opts, chunker.WithMinTokens(cfg.MinTokens))
	}
	if cfg.MaxTokens > 0 {
		opts = append(opts, chunker.WithMaxTokens(cfg.MaxTokens))
	}

	return &Ingestor{
		store:         store,
		embedder:      embedder,
		structured:    chunker.NewStructured(opts...),
		flatChunkSize: cfg.FlatChunkSize,
		batchSize:     cfg.EmbedBatchSize,
		limiter:       rate.NewLimiter(rate.Limit(cfg.EmbedRate), 1),
	}
}

// IngestFile chunks, embeds and stores one document. Re-ingesting a
// file name replaces its previous chunks. Returns the number of chunks
// stored.
func (g *Ingestor) IngestFile(ctx context.Context, fileName string, content []byte) (int, error) {
	logger.Section("Ingestion")
	logger.Debug("File: %s (%d bytes)", fileName, len(content))

	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return 0, fmt.Errorf("file name: %w", domain.ErrInvalidInput)
	}

	fileType, err := detectFileType(fileName, content)
	if err != nil {
		return 0, err
	}
	logger.Debug("Detected type: %s", fileType)

	text, err := extractText(fileType, content)
	if err != nil {
		return 0, err
	}

	var pieces []string
	if fileType == "markdown" {
		pieces = g.structured.Split(text)
	} else {
		pieces = chunker.NormalizeAndChunk(text, g.flatChunkSize)
	}
	if len(pieces) == 0 {
		return 0, fmt.Errorf("%s: %w", fileName, domain.ErrEmptyDocument)
	}
	logger.Debug("Chunked into %d pieces", len(pieces))

	embeddings, err := g.embedAll(ctx, pieces)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", fileName, err)
	}

	now := time.Now().UTC()
	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:         uuid.NewString(),
			Content:    piece,
			FileName:   fileName,
			ChunkIndex: i,
			FileType:   fileType,
			Embedding:  embeddings[i],
			CreatedAt:  now,
		}
	}

	if err := g.store.SaveChunks(ctx, fileName, chunks); err != nil {
		return 0, fmt.Errorf("save %s: %w", fileName, err)
	}

	logger.Info("Ingested %s: %d chunks", fileName, len(chunks))
	return len(chunks), nil
}

// IngestBatch ingests several documents, collecting per-file outcomes.
// A failing file does not abort the batch.
func (g *Ingestor) IngestBatch(ctx context.Context, files []driving.NamedContent) (domain.IngestReport, error) {
	var report domain.IngestReport

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		added, err := g.IngestFile(ctx, f.FileName, f.Content)
		report.Outcomes = append(report.Outcomes, domain.FileOutcome{
			FileName:    f.FileName,
			ChunksAdded: added,
			Err:         err,
		})
		report.ChunksAdded += added
	}

	if failed := report.Failed(); len(failed) > 0 {
		logger.Warn("Batch finished with %d/%d failures", len(failed), len(files))
	}

	return report, nil
}

// embedAll embeds pieces in rate-limited batches.
func (g *Ingestor) embedAll(ctx context.Context, pieces []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(pieces))

	for start := 0; start < len(pieces); start += g.batchSize {
		end := start + g.batchSize
		if end > len(pieces) {
			end = len(pieces)
		}

		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		batch, err := g.embedder.EmbedBatch(ctx, pieces[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding batch returned %d vectors for %d inputs",
				len(batch), end-start)
		}

		embeddings = append(embeddings, batch...)
	}

	return embeddings, nil
}

// detectFileType classifies by extension and rejects binary payloads.
func detectFileType(fileName string, content []byte) (string, error) {
	if !utf8.Valid(content) || bytes.ContainsRune(content, 0) {
		return "", fmt.Errorf("%s is not valid text: %w", fileName, domain.ErrMalformedInput)
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".md", ".markdown":
		return "markdown", nil
	case ".json":
		return "json", nil
	case ".txt", "":
		return "text", nil
	default:
		return "", fmt.Errorf("unsupported file type %q: %w",
			filepath.Ext(fileName), domain.ErrMalformedInput)
	}
}

// extractText prepares content for chunking. JSON documents are reduced
// to their string values in key order; other types pass through.
func extractText(fileType string, content []byte) (string, error) {
	if fileType != "json" {
		return string(content), nil
	}

	var decoded any
	if err := json.Unmarshal(content, &decoded); err != nil {
		return "", fmt.Errorf("decode json: %w", domain.ErrMalformedInput)
	}

	var parts []string
	collectStrings(decoded, &parts)
	return strings.Join(parts, " "), nil
}

// collectStrings walks a decoded JSON value depth-first, gathering every
// string leaf. Map keys are visited in sorted order for determinism.
func collectStrings(v any, out *[]string) {
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			*out = append(*out, s)
		}
	case []any:
		for _, item := range val {
			collectStrings(item, out)
		}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectStrings(val[k], out)
		}
	case float64, bool, nil:
		// Non-string scalars carry no searchable text.
	}
}
