package ai

import (
	"context"
	"sync"

	"github.com/raglite/raglite/internal/adapters/driven/config/file"
	"github.com/raglite/raglite/internal/core/ports/driven"
	"github.com/raglite/raglite/internal/logger"
)

// Ensure SwitchableCompletion implements the interface.
var _ driven.CompletionService = (*SwitchableCompletion)(nil)

// SwitchableCompletion is a completion service whose backend can be
// swapped when the configuration file changes, without restarting.
// In-flight requests finish on the backend they started with.
type SwitchableCompletion struct {
	mu      sync.RWMutex
	current driven.CompletionService
	cfg     file.Config
}

// NewSwitchableCompletion builds the backend named by cfg.Provider and
// wraps it for hot swapping.
func NewSwitchableCompletion(cfg file.Config) (*SwitchableCompletion, error) {
	svc, err := NewCompletionService(cfg)
	if err != nil {
		return nil, err
	}
	return &SwitchableCompletion{current: svc, cfg: cfg}, nil
}

// Reload rebuilds the backend if the relevant configuration changed.
// A configuration the factory rejects keeps the old backend running.
func (s *SwitchableCompletion) Reload(cfg file.Config) {
	s.mu.RLock()
	unchanged := cfg.Provider == s.cfg.Provider &&
		cfg.Ollama == s.cfg.Ollama &&
		cfg.Deepseek == s.cfg.Deepseek
	s.mu.RUnlock()
	if unchanged {
		return
	}

	svc, err := NewCompletionService(cfg)
	if err != nil {
		logger.Warn("completion provider reload failed, keeping %s: %v", s.ModelName(), err)
		return
	}

	s.mu.Lock()
	old := s.current
	s.current = svc
	s.cfg = cfg
	s.mu.Unlock()

	old.Close()
	logger.Info("completion provider switched to %s (%s)", cfg.Provider, svc.ModelName())
}

func (s *SwitchableCompletion) backend() driven.CompletionService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Chat delegates to the current backend.
func (s *SwitchableCompletion) Chat(
	ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions,
) (string, error) {
	return s.backend().Chat(ctx, messages, opts)
}

// ChatStream delegates to the current backend.
func (s *SwitchableCompletion) ChatStream(
	ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions, onDelta func(string),
) (string, error) {
	return s.backend().ChatStream(ctx, messages, opts, onDelta)
}

// ModelName reports the current backend's model.
func (s *SwitchableCompletion) ModelName() string {
	return s.backend().ModelName()
}

// Ping checks the current backend.
func (s *SwitchableCompletion) Ping(ctx context.Context) error {
	return s.backend().Ping(ctx)
}

// Close releases the current backend.
func (s *SwitchableCompletion) Close() error {
	return s.backend().Close()
}
