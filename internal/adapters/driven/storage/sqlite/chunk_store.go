package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driven"
)

var _ driven.ChunkStore = (*Store)(nil)

const chunkColumns = "id, file_name, chunk_index, file_type, content, embedding, created_at"

// SaveChunks stores the chunks of one file inside a transaction,
// removing any chunks previously stored under the same file name first.
func (s *Store) SaveChunks(ctx context.Context, fileName string, chunks []domain.Chunk) error {
	if fileName == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE file_name = ?", fileName); err != nil {
		return fmt.Errorf("deleting previous chunks: %w", err)
	}

	for _, chunk := range chunks {
		createdAt := chunk.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (id, file_name, chunk_index, file_type, content, embedding, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, chunk.ID, fileName, chunk.ChunkIndex, chunk.FileType,
			chunk.Content, float32SliceToBytes(chunk.Embedding), createdAt); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// GetChunk retrieves a chunk by ID.
func (s *Store) GetChunk(ctx context.Context, id string) (domain.Chunk, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE id = ?", id)

	chunk, err := scanChunk(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Chunk{}, domain.ErrNotFound
		}
		return domain.Chunk{}, fmt.Errorf("scanning chunk: %w", err)
	}
	return chunk, nil
}

// ListFiles summarises every ingested file.
func (s *Store) ListFiles(ctx context.Context) ([]domain.FileInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT file_name, file_type, COUNT(*), MIN(created_at), MAX(created_at)
		FROM chunks
		GROUP BY file_name, file_type
		ORDER BY MAX(created_at) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var files []domain.FileInfo //nolint:prealloc // size unknown from query
	for rows.Next() {
		var info domain.FileInfo
		if err := rows.Scan(&info.FileName, &info.FileType,
			&info.ChunkCount, &info.FirstUpload, &info.LastUpload); err != nil {
			return nil, fmt.Errorf("scanning file info: %w", err)
		}
		files = append(files, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating files: %w", err)
	}

	return files, nil
}

// ChunksByFile returns a page of a file's chunks in chunk order,
// plus the file's total chunk count.
func (s *Store) ChunksByFile(ctx context.Context, fileName string, offset, limit int) ([]domain.Chunk, int, error) {
	var total int
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE file_name = ?", fileName)
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting chunks: %w", err)
	}
	if total == 0 {
		return nil, 0, domain.ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+chunkColumns+` FROM chunks
		WHERE file_name = ? ORDER BY chunk_index LIMIT ? OFFSET ?`,
		fileName, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	chunks, err := collectChunks(rows)
	if err != nil {
		return nil, 0, err
	}
	return chunks, total, nil
}

// DeleteFileChunks removes all chunks of a file.
func (s *Store) DeleteFileChunks(ctx context.Context, fileName string) (int, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM chunks WHERE file_name = ?", fileName)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted chunks: %w", err)
	}
	if affected == 0 {
		return 0, domain.ErrNotFound
	}
	return int(affected), nil
}

// ScanContent finds chunks whose content contains the query,
// case-insensitively, in storage order.
func (s *Store) ScanContent(ctx context.Context, fileName, query string, limit int) ([]domain.SearchCandidate, error) {
	// LIKE with a lowered haystack keeps the match case-insensitive for
	// non-ASCII too, which sqlite's default LIKE does not guarantee.
	pattern := "%" + strings.ToLower(query) + "%"

	var (
		rows *sql.Rows
		err  error
	)
	if fileName != "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, file_name, chunk_index, content FROM chunks
			WHERE file_name = ? AND LOWER(content) LIKE ?
			ORDER BY file_name, chunk_index LIMIT ?`,
			fileName, pattern, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, file_name, chunk_index, content FROM chunks
			WHERE LOWER(content) LIKE ?
			ORDER BY file_name, chunk_index LIMIT ?`,
			pattern, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning content: %w", err)
	}
	defer rows.Close()

	var hits []domain.SearchCandidate //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.SearchCandidate
		if err := rows.Scan(&c.ChunkID, &c.FileName, &c.ChunkIndex, &c.Content); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		hits = append(hits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}

	return hits, nil
}

// Count returns the total number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks")
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Dimensions returns the embedding dimension of the stored chunks, or 0
// when the store is empty.
func (s *Store) Dimensions(ctx context.Context) (int, error) {
	var blobLen sql.NullInt64
	row := s.db.QueryRowContext(ctx, "SELECT LENGTH(embedding) FROM chunks LIMIT 1")
	if err := row.Scan(&blobLen); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("probing embedding length: %w", err)
	}
	return int(blobLen.Int64) / 4, nil
}

// scanner abstracts *sql.Row and *sql.Rows for chunk scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanChunk(row scanner) (domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	if err := row.Scan(&chunk.ID, &chunk.FileName, &chunk.ChunkIndex,
		&chunk.FileType, &chunk.Content, &embeddingBlob, &chunk.CreatedAt); err != nil {
		return domain.Chunk{}, err
	}
	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
	return chunk, nil
}

func collectChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
