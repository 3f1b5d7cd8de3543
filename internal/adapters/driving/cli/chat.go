package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raglite/raglite/internal/adapters/driving/tui"
	"github.com/raglite/raglite/internal/core/ports/driving"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long:  `Opens the terminal chat UI. The conversation keeps context across turns.`,
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

// runTUI starts the chat UI; swapped out in tests.
var runTUI = func(ctx context.Context, chat driving.ChatService) error {
	app, err := tui.NewApp(chat)
	if err != nil {
		return err
	}
	return app.WithContext(ctx).Run()
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	if err := ensureAI(cmd.Context()); err != nil {
		return fmt.Errorf("startup validation failed: %w", err)
	}

	return runTUI(cmd.Context(), chatService)
}
