package driving

import (
	"context"

	"github.com/raglite/raglite/internal/core/domain"
)

// ChatService answers questions over the ingested corpus, streaming the
// reply as it is generated.
type ChatService interface {
	// StreamChat runs the full pipeline for one user message: optional
	// query rewriting, hybrid retrieval, context assembly and streaming
	// generation. Progress and deltas are delivered through h. On success
	// the exchange is committed to the session's history; on failure or
	// cancellation nothing is committed.
	StreamChat(ctx context.Context, sessionID, message string, h StreamHandler) error

	// History returns a session's conversation so far.
	History(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// ClearSession discards a session's history.
	ClearSession(ctx context.Context, sessionID string) error
}

// StreamHandler receives pipeline progress and generated text. Any field
// may be nil; nil callbacks are skipped.
type StreamHandler struct {
	// OnStage is called when the pipeline enters a stage. note carries a
	// short human-readable detail, possibly empty.
	OnStage func(stage domain.Stage, note string)

	// OnDelta is called for every generated text fragment, in order.
	OnDelta func(text string)

	// OnError is called once with the terminal error. No further
	// callbacks follow it.
	OnError func(err error)
}

// Stage reports a stage transition, skipping nil handlers.
func (h StreamHandler) Stage(stage domain.Stage, note string) {
	if h.OnStage != nil {
		h.OnStage(stage, note)
	}
}

// Delta forwards a text fragment, skipping nil handlers.
func (h StreamHandler) Delta(text string) {
	if h.OnDelta != nil {
		h.OnDelta(text)
	}
}

// Error reports the terminal error, skipping nil handlers.
func (h StreamHandler) Error(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}
