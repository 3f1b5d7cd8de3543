package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driven"
	"github.com/raglite/raglite/internal/core/ports/driving"
	"github.com/raglite/raglite/internal/logger"
)

// Ensure ChatOrchestrator implements the interface.
var _ driving.ChatService = (*ChatOrchestrator)(nil)

// DefaultSystemPrompt is the assistant persona used when the config
// provides none.
const DefaultSystemPrompt = "You are a helpful assistant. Answer using the provided " +
	"context when it is relevant; say so when it is not."

// rewritePrompt instructs the model to fold conversation history into a
// standalone query. The rewritten query is used for retrieval only and
// never stored.
const rewritePrompt = "Rewrite the user's latest question as a single standalone " +
	"search query, resolving any pronouns or references using the conversation so " +
	"far. Reply with the query only, no explanation."

// ChatConfig tunes the chat pipeline. Zero values take the package
// defaults.
type ChatConfig struct {
	SystemPrompt      string
	TopK              int
	DistanceThreshold float64
	MaxContextChars   int
	ContextTopN       int
	Temperature       float64
	MaxTokens         int
}

// ChatOrchestrator runs the question answering pipeline: optional query
// rewriting, hybrid retrieval, context assembly and streaming
// generation, with history committed only on success.
type ChatOrchestrator struct {
	retriever  driving.SearchService
	completion driven.CompletionService
	history    driven.HistoryStore
	cfg        ChatConfig
}

// NewChatOrchestrator wires the pipeline together.
func NewChatOrchestrator(
	retriever driving.SearchService,
	completion driven.CompletionService,
	history driven.HistoryStore,
	cfg ChatConfig,
) *ChatOrchestrator {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}

	return &ChatOrchestrator{
		retriever:  retriever,
		completion: completion,
		history:    history,
		cfg:        cfg,
	}
}

// StreamChat runs the full pipeline for one user message. Stage
// transitions and answer deltas stream through h as they happen. The
// exchange commits to history only after the stream completes; a
// mid-stream failure or cancellation discards the partial answer.
func (o *ChatOrchestrator) StreamChat(
	ctx context.Context, sessionID, message string, h driving.StreamHandler,
) error {
	message = strings.TrimSpace(message)
	if message == "" {
		err := fmt.Errorf("empty message: %w", domain.ErrInvalidInput)
		h.Error(err)
		return err
	}

	logger.Section("Chat Pipeline")
	logger.Debug("Session: %s", sessionID)
	h.Stage(domain.StageInit, "")

	prior, err := o.history.Read(ctx, sessionID)
	if err != nil {
		return o.fail(h, fmt.Errorf("read history: %w", err))
	}
	logger.Debug("Prior turns: %d", len(prior))

	searchQuery := o.rewriteQuery(ctx, prior, message, h)

	h.Stage(domain.StageRetrieve, "")
	result, err := o.retriever.Retrieve(ctx, searchQuery, o.cfg.TopK)
	if err != nil {
		// Retrieval trouble never kills the answer; generation proceeds
		// without context.
		logger.Warn("Retrieval failed, continuing without context: %v", err)
		result = domain.RetrievalResult{}
	}

	assembled := Assemble(result.Candidates, AssembleOptions{
		DistanceThreshold: o.cfg.DistanceThreshold,
		MaxContextChars:   o.cfg.MaxContextChars,
		TopN:              o.cfg.ContextTopN,
	})
	if assembled == "" {
		h.Stage(domain.StageAssemble, "no relevant context found")
	} else {
		h.Stage(domain.StageAssemble, fmt.Sprintf("context assembled from %d candidates", len(result.Candidates)))
	}

	userContent := message
	if assembled != "" {
		userContent = message + "\n\nRelevant Context:\n" + assembled
	}

	messages := make([]driven.ChatMessage, 0, len(prior)+2)
	messages = append(messages, driven.ChatMessage{Role: domain.RoleSystem, Content: o.cfg.SystemPrompt})
	for _, t := range prior {
		messages = append(messages, driven.ChatMessage{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: domain.RoleUser, Content: userContent})

	h.Stage(domain.StageGenerate, "")
	answer, err := o.completion.ChatStream(ctx, messages, o.chatOptions(), h.Delta)
	if err != nil {
		return o.fail(h, fmt.Errorf("generate: %w", err))
	}
	if err := ctx.Err(); err != nil {
		return o.fail(h, err)
	}

	// The stored user turn carries the context-augmented content only
	// transiently: it is rewritten to the plain question so history stays
	// context-free. The whole extension is atomic per session.
	err = o.history.WithSessionLock(sessionID, func() error {
		if err := o.history.Append(ctx, sessionID, domain.Turn{Role: domain.RoleUser, Content: userContent}); err != nil {
			return err
		}
		if userContent != message {
			if err := o.history.ReplaceLastUser(ctx, sessionID, message); err != nil {
				return err
			}
		}
		return o.history.Append(ctx, sessionID, domain.Turn{Role: domain.RoleAssistant, Content: answer})
	})
	if err != nil {
		return o.fail(h, fmt.Errorf("commit history: %w", err))
	}

	logger.Info("Chat complete: %d answer chars", len(answer))
	h.Stage(domain.StageDone, "")
	return nil
}

// rewriteQuery folds prior turns into a standalone retrieval query.
// First turns of a session skip it; failures fall back to the original
// message.
func (o *ChatOrchestrator) rewriteQuery(
	ctx context.Context, prior []domain.Turn, message string, h driving.StreamHandler,
) string {
	if len(prior) == 0 {
		return message
	}

	h.Stage(domain.StageRewrite, "")
	logger.Debug("Rewriting query against %d prior turns", len(prior))

	messages := make([]driven.ChatMessage, 0, len(prior)+2)
	messages = append(messages, driven.ChatMessage{Role: domain.RoleSystem, Content: rewritePrompt})
	for _, t := range prior {
		messages = append(messages, driven.ChatMessage{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: domain.RoleUser, Content: message})

	rewritten, err := o.completion.Chat(ctx, messages, o.chatOptions())
	if err != nil {
		logger.Warn("Query rewrite failed, using original query: %v", err)
		return message
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return message
	}

	logger.Info("Query rewritten: %q", rewritten)
	return rewritten
}

// History returns the session's conversation so far.
func (o *ChatOrchestrator) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	return o.history.Read(ctx, sessionID)
}

// ClearSession discards the session's history.
func (o *ChatOrchestrator) ClearSession(ctx context.Context, sessionID string) error {
	return o.history.Clear(ctx, sessionID)
}

func (o *ChatOrchestrator) chatOptions() driven.ChatOptions {
	return driven.ChatOptions{
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	}
}

// fail reports the terminal error on the handler and returns it.
func (o *ChatOrchestrator) fail(h driving.StreamHandler, err error) error {
	logger.Warn("Chat pipeline failed: %v", err)
	h.Stage(domain.StageError, err.Error())
	h.Error(err)
	return err
}
