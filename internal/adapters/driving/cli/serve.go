package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serves the chat, upload and file library endpoints over HTTP.
Chat answers stream as server-sent events.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to the configured address)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveAPI == nil {
		return errors.New("server not configured")
	}

	if err := ensureAI(cmd.Context()); err != nil {
		return fmt.Errorf("startup validation failed: %w", err)
	}

	addr := serveAddr
	if addr == "" {
		addr = defaultAddr
	}
	return serveAPI(cmd.Context(), addr)
}
