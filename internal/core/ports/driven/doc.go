// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ChunkStore: chunk persistence and file library queries
//   - VectorIndex: nearest-neighbour search over stored embeddings
//   - LexicalIndex: trigram similarity search over stored content
//   - HistoryStore: per-session conversation history
//   - EmbeddingService: generates vector embeddings
//   - CompletionService: chat completion, blocking and streaming
//
// The sqlite adapter implements ChunkStore, VectorIndex and LexicalIndex
// on the same store.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
