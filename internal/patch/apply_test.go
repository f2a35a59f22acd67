package patch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestApplyPatchesFile(t *testing.T) {
	dir := t.TempDir()
	original := "def auth(user):\n    return False\n"
	modified := "def auth(user):\n    return verify(user)\n"
	path := writeFile(t, dir, "auth.py", original)

	diff := Generate(original, modified, "auth.py")
	require.NoError(t, Apply(path, diff))

	assert.Equal(t, modified, readFile(t, path))
	assert.Equal(t, original, readFile(t, BackupPath(path)), "backup holds pre-apply content")
}

func TestApplyEmptyDiffIsNoopWithBackup(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.txt", "unchanged\n")

	require.NoError(t, Apply(path, ""))

	assert.Equal(t, "unchanged\n", readFile(t, path))
	assert.True(t, HasBackup(path))
}

func TestApplyMissingFileLeavesNoBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.txt")

	err := Apply(path, "--- a/nope.txt\n+++ b/nope.txt\n@@ -1,1 +1,1 @@\n-a\n+b\n")
	require.ErrorIs(t, err, ErrBackup)
	assert.NoFileExists(t, BackupPath(path))
}

func TestApplyMismatchRestoresOriginal(t *testing.T) {
	dir := t.TempDir()
	content := "totally\nunrelated\ncontent\n"
	path := writeFile(t, dir, "f.txt", content)

	diff := Generate("a\nb\nc\n", "a\nx\nc\n", "f.txt")
	err := Apply(path, diff)
	require.ErrorIs(t, err, ErrApply)

	assert.Equal(t, content, readFile(t, path), "file unchanged after failed apply")
}

func TestApplyThenRestoreBackup(t *testing.T) {
	dir := t.TempDir()
	original := "one\ntwo\n"
	path := writeFile(t, dir, "f.txt", original)

	require.NoError(t, Apply(path, Generate(original, "one\nTWO\n", "f.txt")))
	require.Equal(t, "one\nTWO\n", readFile(t, path))

	require.NoError(t, RestoreBackup(path))
	assert.Equal(t, original, readFile(t, path))
}

func TestBackupRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.txt", "v1\n")

	backupPath, err := CreateBackup(path)
	require.NoError(t, err)
	assert.Equal(t, path+BackupSuffix, backupPath)

	require.NoError(t, os.WriteFile(path, []byte("v2\n"), 0644))
	require.NoError(t, RestoreBackup(path))
	assert.Equal(t, "v1\n", readFile(t, path))

	// Restore is repeatable.
	require.NoError(t, RestoreBackup(path))
	assert.Equal(t, "v1\n", readFile(t, path))
}

func TestCreateBackupOverwritesPrevious(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.txt", "first\n")

	_, err := CreateBackup(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("second\n"), 0644))
	_, err = CreateBackup(path)
	require.NoError(t, err)

	assert.Equal(t, "second\n", readFile(t, BackupPath(path)), "one backup slot per path")
}

func TestCreateBackupMissingSource(t *testing.T) {
	_, err := CreateBackup(filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, ErrBackup)
}

func TestRestoreBackupWithoutBackup(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.txt", "content\n")

	err := RestoreBackup(path)
	require.ErrorIs(t, err, ErrNoBackup)
	assert.Equal(t, "content\n", readFile(t, path))
}
