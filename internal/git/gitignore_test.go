package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadIgnore(t *testing.T, content string) *Ignore {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0644))
	ig, err := LoadIgnore(dir)
	require.NoError(t, err)
	return ig
}

func TestLoadIgnoreMissingFile(t *testing.T) {
	ig, err := LoadIgnore(t.TempDir())
	require.NoError(t, err)

	assert.False(t, ig.Match("main.go", false))
	// .git is ignored even without a .gitignore.
	assert.True(t, ig.Match(".git", true))
	assert.True(t, ig.Match(".git/config", false))
}

func TestMatchWildcard(t *testing.T) {
	ig := loadIgnore(t, "*.log\n")

	assert.True(t, ig.Match("debug.log", false))
	assert.True(t, ig.Match("sub/dir/debug.log", false))
	assert.False(t, ig.Match("debug.txt", false))
}

func TestMatchDirOnly(t *testing.T) {
	ig := loadIgnore(t, "build/\n")

	assert.True(t, ig.Match("build", true))
	assert.True(t, ig.Match("build/out.txt", false))
	// A plain file named build is not a directory match.
	assert.False(t, ig.Match("build", false))
}

func TestMatchAnchored(t *testing.T) {
	ig := loadIgnore(t, "/todo.txt\n")

	assert.True(t, ig.Match("todo.txt", false))
	assert.False(t, ig.Match("sub/todo.txt", false))
}

func TestMatchNegationLastWins(t *testing.T) {
	ig := loadIgnore(t, "*.log\n!important.log\n")

	assert.True(t, ig.Match("debug.log", false))
	assert.False(t, ig.Match("important.log", false))

	// Reversed order: the wildcard re-ignores the file.
	ig = loadIgnore(t, "!important.log\n*.log\n")
	assert.True(t, ig.Match("important.log", false))
}

func TestMatchSkipsCommentsAndBlanks(t *testing.T) {
	ig := loadIgnore(t, "# build artifacts\n\n*.o\n")

	assert.True(t, ig.Match("main.o", false))
	assert.False(t, ig.Match("# build artifacts", false))
}

func TestMatchAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\n"), 0644))
	ig, err := LoadIgnore(dir)
	require.NoError(t, err)

	assert.True(t, ig.Match(filepath.Join(dir, "debug.log"), false))
	assert.False(t, ig.Match(filepath.Join(dir, "main.go"), false))
}

func TestIsRepoOutsideRepository(t *testing.T) {
	assert.False(t, IsRepo(t.TempDir()))
}
