package driven

import (
	"context"

	"github.com/raglite/raglite/internal/core/domain"
)

// HistoryStore keeps per-session conversation history. Mutations on the
// same session are serialised by the store.
type HistoryStore interface {
	// Append adds turns to the end of a session's history, creating the
	// session on first use.
	Append(ctx context.Context, sessionID string, turns ...domain.Turn) error

	// Read returns a copy of the session's history in order. An unknown
	// session yields an empty history, not an error.
	Read(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// ReplaceLastUser rewrites the content of the most recent user turn.
	// domain.ErrNotFound when the session has no user turn.
	ReplaceLastUser(ctx context.Context, sessionID, content string) error

	// Clear removes a session and its history.
	Clear(ctx context.Context, sessionID string) error

	// WithSessionLock runs fn while holding the session's mutation lock,
	// so a multi-step history extension is atomic with respect to other
	// requests on the same session.
	WithSessionLock(sessionID string, fn func() error) error
}
