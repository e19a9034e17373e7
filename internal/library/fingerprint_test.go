package library

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFingerprint_Deterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "aaaa")
	writeFile(t, root, "sub/b.txt", "bb")
	writeFile(t, root, "sub/nested/c.txt", "c")

	first, err := Fingerprint(root)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := Fingerprint(root)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	assert.Len(t, first, 64) // hex sha256
}

func TestFingerprint_SensitiveToAdd(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "aaaa")

	before, err := Fingerprint(root)
	require.NoError(t, err)

	writeFile(t, root, "b.txt", "bbbb")
	after, err := Fingerprint(root)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestFingerprint_SensitiveToRemove(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "aaaa")
	b := writeFile(t, root, "b.txt", "bbbb")

	before, err := Fingerprint(root)
	require.NoError(t, err)

	require.NoError(t, os.Remove(b))
	after, err := Fingerprint(root)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestFingerprint_SensitiveToResize(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "b.txt", "12345")
	info, err := os.Stat(path)
	require.NoError(t, err)

	before, err := Fingerprint(root)
	require.NoError(t, err)

	// grow by one byte but pin the mtime so only size differs
	require.NoError(t, os.WriteFile(path, []byte("123456"), 0o644))
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))

	after, err := Fingerprint(root)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestFingerprint_SensitiveToMtime(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.txt", "aaaa")

	before, err := Fingerprint(root)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	bumped := info.ModTime().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, bumped, bumped))

	after, err := Fingerprint(root)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestFingerprint_IgnoresEmptyDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "aaaa")

	before, err := Fingerprint(root)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty", "deeper"), 0o755))
	after, err := Fingerprint(root)
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestFingerprint_EmptyTree(t *testing.T) {
	digest, err := Fingerprint(t.TempDir())
	require.NoError(t, err)
	assert.Len(t, digest, 64)
}

func TestFingerprint_MissingRoot(t *testing.T) {
	_, err := Fingerprint(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
