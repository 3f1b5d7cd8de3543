// Package domain defines the core business entities for raglite.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A bounded span of document text stored as a retrievable unit
//   - SearchCandidate: A retrieved chunk with its per-request scores
//   - Turn: A single message in a session's conversation history
//   - FileInfo: Aggregate metadata for an ingested file
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
