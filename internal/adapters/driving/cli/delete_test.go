package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglite/raglite/internal/core/domain"
)

func TestDeleteCmd_DeletesFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	libraryService = &mockLibraryService{deleted: 5}

	out, err := execute(t, "delete", "notes.md")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 5 chunks of notes.md.")
}

func TestDeleteCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	libraryService = &mockLibraryService{err: domain.ErrNotFound}

	_, err := execute(t, "delete", "missing.md")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCmd_RequiresArg(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "delete")

	assert.Error(t, err)
}
