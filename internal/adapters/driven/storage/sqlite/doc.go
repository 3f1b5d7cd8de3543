// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - ChunkStore: chunk persistence and file library queries
//   - VectorIndex: cosine nearest-neighbour search over embedding BLOBs
//   - LexicalIndex: trigram similarity search over chunk content
//
// Embeddings are stored as little-endian float32 BLOBs. Cosine distance
// and trigram similarity are computed in Go over full scans, which is
// adequate for single-node corpora in the tens of thousands of chunks.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.raglite/data/raglite.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
