// Command raglite is the retrieval-augmented chat CLI and server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raglite/raglite/internal/adapters/driven/ai"
	configfile "github.com/raglite/raglite/internal/adapters/driven/config/file"
	"github.com/raglite/raglite/internal/adapters/driven/history/memory"
	"github.com/raglite/raglite/internal/adapters/driven/storage/sqlite"
	"github.com/raglite/raglite/internal/adapters/driving/cli"
	"github.com/raglite/raglite/internal/adapters/driving/httpapi"
	"github.com/raglite/raglite/internal/core/services"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgStore, err := configfile.NewStore(os.Getenv("RAGLITE_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	defer cfgStore.Close()
	cfg := cfgStore.Snapshot()

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open chunk store: %w", err)
	}
	defer store.Close()

	embedder, err := ai.NewEmbeddingService(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	completion, err := ai.NewSwitchableCompletion(cfg)
	if err != nil {
		return err
	}
	defer completion.Close()

	// Query embeddings are cached; document chunks go through the
	// plain embedder during ingestion.
	cachedEmbedder, err := services.NewCachedEmbedder(embedder, cfg.Retrieval.CacheSize)
	if err != nil {
		return err
	}

	retriever := services.NewRetriever(cachedEmbedder, store, store, store, services.RetrieverConfig{
		TopK:               cfg.Retrieval.TopK,
		Alpha:              cfg.Retrieval.Alpha,
		RelevanceThreshold: cfg.Retrieval.RelevanceThreshold,
	})

	history := memory.NewHistoryStore()
	orchestrator := services.NewChatOrchestrator(retriever, completion, history, services.ChatConfig{
		SystemPrompt:      cfg.SystemPrompt,
		TopK:              cfg.Retrieval.TopK,
		DistanceThreshold: cfg.Retrieval.RelevanceThreshold,
		MaxContextChars:   cfg.Retrieval.MaxContextChars,
		ContextTopN:       cfg.Retrieval.ContextTopN,
		Temperature:       cfg.Chat.Temperature,
		MaxTokens:         cfg.Chat.MaxTokens,
	})

	ingestor := services.NewIngestor(store, embedder, services.IngestorConfig{
		MinTokens:      cfg.Ingest.MinTokens,
		MaxTokens:      cfg.Ingest.MaxTokens,
		FlatChunkSize:  cfg.Ingest.FlatChunkSize,
		EmbedBatchSize: cfg.Ingest.EmbedBatchSize,
		EmbedRate:      cfg.Ingest.EmbedRate,
	})

	library := services.NewLibrary(store)

	server, err := httpapi.NewServer(&httpapi.Ports{
		Chat:    orchestrator,
		Ingest:  ingestor,
		Library: library,
	})
	if err != nil {
		return err
	}

	// Provider changes in the config file take effect live.
	cfgStore.OnReload(completion.Reload)
	if err := cfgStore.Watch(); err != nil {
		return fmt.Errorf("watch configuration: %w", err)
	}

	cli.Configure(cli.Deps{
		Chat:    orchestrator,
		Ingest:  ingestor,
		Library: library,
		ValidateAI: func(ctx context.Context) error {
			return ai.ValidateStartup(ctx, embedder, completion, store)
		},
		ServeAPI:    server.Run,
		DefaultAddr: cfg.Server.Addr,
		Version:     version,
	})

	return cli.Execute(ctx)
}
