package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driving"
	"github.com/raglite/raglite/internal/logger"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question",
	Long: `Runs the full pipeline for a single question and streams the
answer to stdout. Each invocation is its own session.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	if err := ensureAI(cmd.Context()); err != nil {
		return fmt.Errorf("startup validation failed: %w", err)
	}

	handler := driving.StreamHandler{
		OnStage: func(stage domain.Stage, note string) {
			if note != "" {
				logger.Debug("stage %s: %s", stage, note)
			} else {
				logger.Debug("stage %s", stage)
			}
		},
		OnDelta: func(text string) {
			cmd.Print(text)
		},
	}

	sessionID := uuid.NewString()
	if err := chatService.StreamChat(cmd.Context(), sessionID, args[0], handler); err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	cmd.Println()
	return nil
}
