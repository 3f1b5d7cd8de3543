package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglite/raglite/internal/core/domain"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestIngestCmd_RequiresArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ingest")

	assert.Error(t, err)
}

func TestIngestCmd_IngestsFiles(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingest := &mockIngestService{}
	ingestService = ingest

	path := writeTempFile(t, "notes.md", "# Notes\n\nSome content.")

	out, err := execute(t, "ingest", path)

	require.NoError(t, err)
	require.Len(t, ingest.lastFiles, 1)
	assert.Equal(t, "notes.md", ingest.lastFiles[0].FileName)
	assert.Contains(t, out, "notes.md: 1 chunks")
	assert.Contains(t, out, "Ingested 1 chunks from 1 file(s).")
}

func TestIngestCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ingest", filepath.Join(t.TempDir(), "absent.txt"))

	assert.Error(t, err)
}

func TestIngestCmd_PartialFailureReported(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = &mockIngestService{
		report: domain.IngestReport{
			Outcomes: []domain.FileOutcome{
				{FileName: "good.txt", ChunksAdded: 2},
				{FileName: "bad.bin", Err: domain.ErrMalformedInput},
			},
			ChunksAdded: 2,
		},
	}

	good := writeTempFile(t, "good.txt", "content")
	bad := writeTempFile(t, "bad.bin", "content")

	out, err := execute(t, "ingest", good, bad)

	require.NoError(t, err)
	assert.Contains(t, out, "good.txt: 2 chunks")
	assert.Contains(t, out, "bad.bin: failed")
}

func TestIngestCmd_AllFailed(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = &mockIngestService{
		report: domain.IngestReport{
			Outcomes: []domain.FileOutcome{
				{FileName: "bad.bin", Err: domain.ErrMalformedInput},
			},
		},
	}

	bad := writeTempFile(t, "bad.bin", "content")

	_, err := execute(t, "ingest", bad)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all files failed")
}
