package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	chunksOffset  int
	chunksLimit   int
	chunksPreview int
	searchLimit   int
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List ingested files",
	Args:  cobra.NoArgs,
	RunE:  runFiles,
}

var filesChunksCmd = &cobra.Command{
	Use:   "chunks [file]",
	Short: "Show a file's chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runFileChunks,
}

var filesSearchCmd = &cobra.Command{
	Use:   "search [file] [query]",
	Short: "Search within one file's chunks",
	Args:  cobra.ExactArgs(2),
	RunE:  runFileSearch,
}

func init() {
	filesChunksCmd.Flags().IntVar(&chunksOffset, "offset", 0, "first chunk index to show")
	filesChunksCmd.Flags().IntVarP(&chunksLimit, "limit", "n", 10, "maximum number of chunks")
	filesChunksCmd.Flags().IntVar(&chunksPreview, "preview", 200, "preview length in characters (0 for full content)")
	filesSearchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of matches")

	filesCmd.AddCommand(filesChunksCmd)
	filesCmd.AddCommand(filesSearchCmd)
	rootCmd.AddCommand(filesCmd)
}

func runFiles(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	infos, err := libraryService.ListFiles(cmd.Context())
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}
	if len(infos) == 0 {
		cmd.Println("No files ingested yet.")
		return nil
	}

	cmd.Println("Files:")
	for _, info := range infos {
		cmd.Printf("  %s (%s, %d chunks, updated %s)\n",
			info.FileName, info.FileType, info.ChunkCount,
			info.LastUpload.Format("2006-01-02 15:04"))
	}
	return nil
}

func runFileChunks(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}
	fileName := args[0]

	previews, total, err := libraryService.FileChunks(
		cmd.Context(), fileName, chunksOffset, chunksLimit, chunksPreview)
	if err != nil {
		return fmt.Errorf("chunks of %s: %w", fileName, err)
	}

	cmd.Printf("%s: %d chunks total\n", fileName, total)
	for _, p := range previews {
		cmd.Printf("  [%d] (%d bytes) %s\n", p.ChunkIndex, p.ContentLength, p.Content)
	}
	return nil
}

func runFileSearch(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}
	fileName, query := args[0], args[1]

	previews, err := libraryService.SearchInFile(cmd.Context(), fileName, query, searchLimit)
	if err != nil {
		return fmt.Errorf("search %s: %w", fileName, err)
	}
	if len(previews) == 0 {
		cmd.Println("No matches.")
		return nil
	}

	for _, p := range previews {
		cmd.Printf("  [%d] %s\n", p.ChunkIndex, p.Content)
	}
	return nil
}
