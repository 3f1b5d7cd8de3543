package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedInput indicates undecodable file content. Ingestion
	// skips the offending file and continues with the rest of the batch.
	ErrMalformedInput = errors.New("malformed input")

	// ErrEmptyDocument indicates a file produced no chunks.
	ErrEmptyDocument = errors.New("document produced no chunks")

	// ErrServiceUnavailable indicates an external service (embedding,
	// completion, index) is unreachable. Retrieval degrades to empty
	// context; ingestion aborts for the affected batch.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrLexicalUnavailable indicates the trigram similarity engine is
	// not usable. Callers fall back to substring containment matching.
	ErrLexicalUnavailable = errors.New("lexical index unavailable")

	// ErrDimensionMismatch indicates stored embeddings do not match the
	// dimension reported by the embedding provider. Fatal at startup.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStreamInterrupted indicates the completion stream failed before
	// the end-of-stream signal. The partial answer is discarded.
	ErrStreamInterrupted = errors.New("completion stream interrupted")
)
