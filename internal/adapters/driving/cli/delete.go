package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [file]",
	Short: "Delete an ingested file's chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}
	fileName := args[0]

	deleted, err := libraryService.DeleteFile(cmd.Context(), fileName)
	if err != nil {
		return fmt.Errorf("delete %s: %w", fileName, err)
	}
	cmd.Printf("Deleted %d chunks of %s.\n", deleted, fileName)
	return nil
}
