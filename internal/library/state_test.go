package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStore_ReadMissingIsAbsent(t *testing.T) {
	store := NewStateStore(t.TempDir())

	digest, err := store.Read("books", RoleProducer)
	require.NoError(t, err)
	assert.Empty(t, digest)
}

func TestStateStore_ReadEmptyFileIsAbsent(t *testing.T) {
	dir := t.TempDir()
	store := NewStateStore(dir)
	require.NoError(t, os.WriteFile(store.FilePath("books", RoleProducer), []byte("  \n"), 0o644))

	digest, err := store.Read("books", RoleProducer)
	require.NoError(t, err)
	assert.Empty(t, digest)
}

func TestStateStore_WriteReadRoundTrip(t *testing.T) {
	store := NewStateStore(t.TempDir())

	require.NoError(t, store.Write("books", RoleProducer, "abc123"))
	digest, err := store.Read("books", RoleProducer)
	require.NoError(t, err)
	assert.Equal(t, "abc123", digest)

	// last write wins
	require.NoError(t, store.Write("books", RoleProducer, "def456"))
	digest, err = store.Read("books", RoleProducer)
	require.NoError(t, err)
	assert.Equal(t, "def456", digest)
}

func TestStateStore_RolesAreIndependent(t *testing.T) {
	store := NewStateStore(t.TempDir())

	require.NoError(t, store.Write("books", RoleProducer, "produced"))
	require.NoError(t, store.Write("books", RoleConsumer, "restored"))

	produced, err := store.Read("books", RoleProducer)
	require.NoError(t, err)
	restored, err := store.Read("books", RoleConsumer)
	require.NoError(t, err)

	assert.Equal(t, "produced", produced)
	assert.Equal(t, "restored", restored)
}

func TestStateStore_WriteCreatesBackupDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not", "yet", "there")
	store := NewStateStore(dir)

	require.NoError(t, store.Write("manga", RoleConsumer, "abc"))
	digest, err := store.Read("manga", RoleConsumer)
	require.NoError(t, err)
	assert.Equal(t, "abc", digest)
}

func TestStateStore_FileNamesAreTheWireContract(t *testing.T) {
	store := NewStateStore("/backups")

	assert.Equal(t, filepath.Join("/backups", "books_library_state.txt"),
		store.FilePath("books", RoleProducer))
	assert.Equal(t, filepath.Join("/backups", "books_library_last_restored_state.txt"),
		store.FilePath("books", RoleConsumer))
}
