// Package ai builds the embedding and completion services named by the
// configuration and validates them at startup.
package ai

import (
	"fmt"

	"github.com/raglite/raglite/internal/adapters/driven/config/file"
	ollamaembed "github.com/raglite/raglite/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/raglite/raglite/internal/adapters/driven/embedding/openai"
	"github.com/raglite/raglite/internal/adapters/driven/llm/deepseek"
	ollamallm "github.com/raglite/raglite/internal/adapters/driven/llm/ollama"
	"github.com/raglite/raglite/internal/core/ports/driven"
)

// Provider names accepted in configuration.
const (
	ProviderOllama   = "ollama"
	ProviderDeepseek = "deepseek"
	ProviderOpenAI   = "openai"
)

// NewEmbeddingService creates the embedding backend selected by
// cfg.Embedder.
func NewEmbeddingService(cfg file.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedder {
	case ProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.EmbedModel,
		}), nil

	case ProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q (use %q or %q)",
			cfg.Embedder, ProviderOllama, ProviderOpenAI)
	}
}

// NewCompletionService creates the completion backend selected by
// cfg.Provider.
func NewCompletionService(cfg file.Config) (driven.CompletionService, error) {
	switch cfg.Provider {
	case ProviderOllama:
		return ollamallm.NewCompletionService(ollamallm.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.ChatModel,
		}), nil

	case ProviderDeepseek:
		return deepseek.NewCompletionService(deepseek.Config{
			APIKey:  cfg.Deepseek.APIKey,
			BaseURL: cfg.Deepseek.BaseURL,
			Model:   cfg.Deepseek.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported completion provider: %q (use %q or %q)",
			cfg.Provider, ProviderOllama, ProviderDeepseek)
	}
}
