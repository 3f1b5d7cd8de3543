package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raglite/raglite/internal/core/ports/driving"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest documents into the library",
	Long: `Chunks, embeds and stores the given files. Markdown keeps its
structure; plain text and JSON are chunked by sentences. Re-ingesting a
file name replaces its previous chunks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	files := make([]driving.NamedContent, 0, len(args))
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, driving.NamedContent{
			FileName: filepath.Base(path),
			Content:  content,
		})
	}

	report, err := ingestService.IngestBatch(cmd.Context(), files)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	for _, outcome := range report.Outcomes {
		if outcome.Err != nil {
			cmd.Printf("  %s: failed: %v\n", outcome.FileName, outcome.Err)
			continue
		}
		cmd.Printf("  %s: %d chunks\n", outcome.FileName, outcome.ChunksAdded)
	}
	cmd.Printf("Ingested %d chunks from %d file(s).\n", report.ChunksAdded, len(files))

	if failed := report.Failed(); len(failed) == len(files) {
		return errors.New("all files failed to ingest")
	}
	return nil
}
