// Package cli implements the raglite command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/raglite/raglite/internal/core/ports/driving"
	"github.com/raglite/raglite/internal/logger"
)

// version is printed by the version command; main overrides it at
// build time.
var version = "dev"

var verbose bool

// Services the commands run against, wired by Configure.
var (
	chatService    driving.ChatService
	ingestService  driving.IngestService
	libraryService driving.LibraryService

	// validateAI pings the AI backends before commands that need them.
	validateAI func(context.Context) error

	// serveAPI runs the HTTP API on an address.
	serveAPI func(ctx context.Context, addr string) error

	// defaultAddr is the configured HTTP listen address.
	defaultAddr string
)

var rootCmd = &cobra.Command{
	Use:   "raglite",
	Short: "Retrieval-augmented chat over your documents",
	Long: `raglite answers questions over documents you ingest.
Documents are chunked and embedded; answers combine semantic and
keyword retrieval with streaming LLM generation.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging to stderr")
}

// Deps carries the wired services for the commands.
type Deps struct {
	Chat    driving.ChatService
	Ingest  driving.IngestService
	Library driving.LibraryService

	// ValidateAI checks AI backend connectivity; commands that talk to
	// the model run it first. Optional.
	ValidateAI func(context.Context) error

	// ServeAPI runs the HTTP API server until the context ends.
	ServeAPI func(ctx context.Context, addr string) error

	// DefaultAddr is the configured HTTP listen address.
	DefaultAddr string

	// Version overrides the printed version when non-empty.
	Version string
}

// Configure injects the wired services. Must be called before Execute.
func Configure(deps Deps) {
	chatService = deps.Chat
	ingestService = deps.Ingest
	libraryService = deps.Library
	validateAI = deps.ValidateAI
	serveAPI = deps.ServeAPI
	defaultAddr = deps.DefaultAddr
	if deps.Version != "" {
		version = deps.Version
	}
}

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ensureAI runs the startup validation when one is configured.
func ensureAI(ctx context.Context) error {
	if validateAI == nil {
		return nil
	}
	return validateAI(ctx)
}
