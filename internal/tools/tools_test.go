package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coda/internal/patch"
	"coda/internal/workspace"
)

func seedFile(t *testing.T, ws workspace.Workspace, name, content string) string {
	t.Helper()
	path := filepath.Join(ws.Root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadFile(t *testing.T) {
	ws := testWorkspace(t)
	seedFile(t, ws, "hello.txt", "hello world\n")
	tool := NewReadFileTool(ws, 0)

	res, err := tool.Execute(context.Background(), map[string]any{"path": "hello.txt"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "hello world\n", res.Content)
}

func TestReadFileNotFound(t *testing.T) {
	ws := testWorkspace(t)
	tool := NewReadFileTool(ws, 0)

	res, err := tool.Execute(context.Background(), map[string]any{"path": "missing.txt"})
	require.NoError(t, err, "missing file is an in-band result, not an error")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "not found")
}

func TestReadFileCapsSize(t *testing.T) {
	ws := testWorkspace(t)
	seedFile(t, ws, "big.txt", strings.Repeat("x", 64))
	tool := NewReadFileTool(ws, 16)

	res, err := tool.Execute(context.Background(), map[string]any{"path": "big.txt"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Truncated)
	assert.Contains(t, res.Content, "truncated")
	assert.True(t, strings.HasPrefix(res.Content, strings.Repeat("x", 16)))
}

func TestWriteFileCreatesParents(t *testing.T) {
	ws := testWorkspace(t)
	tool := NewWriteFileTool(ws)

	res, err := tool.Execute(context.Background(), map[string]any{
		"path":    "a/b/c.txt",
		"content": "nested\n",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)

	data, err := os.ReadFile(filepath.Join(ws.Root, "a/b/c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "nested\n", string(data))
}

func TestWriteFileRejectsEscapingPaths(t *testing.T) {
	ws := testWorkspace(t)
	tool := NewWriteFileTool(ws)

	for _, path := range []string{"../outside.txt", "/tmp/outside.txt"} {
		res, err := tool.Execute(context.Background(), map[string]any{
			"path":    path,
			"content": "nope",
		})
		require.NoError(t, err)
		assert.False(t, res.Success, "path %q must be rejected", path)
		assert.Contains(t, res.Error, "outside the project root")
	}
	assert.NoFileExists(t, filepath.Join(filepath.Dir(ws.Root), "outside.txt"))
}

func TestListFilesHonorsPattern(t *testing.T) {
	ws := testWorkspace(t)
	seedFile(t, ws, "main.go", "package main\n")
	seedFile(t, ws, "util/helper.go", "package util\n")
	seedFile(t, ws, "README.md", "# readme\n")
	tool := NewListFilesTool(ws, 0)

	res, err := tool.Execute(context.Background(), map[string]any{"pattern": "**/*.go"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Content, "main.go")
	assert.Contains(t, res.Content, "util/helper.go")
	assert.NotContains(t, res.Content, "README.md")
}

func TestListFilesBoundsResults(t *testing.T) {
	ws := testWorkspace(t)
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		seedFile(t, ws, name, "x")
	}
	tool := NewListFilesTool(ws, 2)

	res, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Contains(t, res.Content, "capped")
}

func TestRunCommandCapturesOutput(t *testing.T) {
	ws := testWorkspace(t)
	tool := NewRunCommandTool(ws, time.Minute)

	res, err := tool.Execute(context.Background(), map[string]any{"command": "echo out; echo err 1>&2"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Content, "out")
	assert.Contains(t, res.Content, "err")
}

func TestRunCommandTimeoutMarker(t *testing.T) {
	ws := testWorkspace(t)
	tool := NewRunCommandTool(ws, 100*time.Millisecond)

	start := time.Now()
	res, err := tool.Execute(context.Background(), map[string]any{"command": "sleep 5"})
	require.NoError(t, err, "timeout is an in-band result")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "timed out")
	assert.Less(t, time.Since(start), 3*time.Second, "must not wait out the full sleep")
}

func TestRunCommandNonZeroExit(t *testing.T) {
	ws := testWorkspace(t)
	tool := NewRunCommandTool(ws, time.Minute)

	res, err := tool.Execute(context.Background(), map[string]any{"command": "echo bad; exit 3"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "bad")
}

func TestSearchCode(t *testing.T) {
	ws := testWorkspace(t)
	seedFile(t, ws, "auth.py", "def authenticate(user):\n    return True\n")
	seedFile(t, ws, "db.py", "def connect():\n    pass\n")
	tool := NewSearchCodeTool(ws, 0)

	res, err := tool.Execute(context.Background(), map[string]any{"query": "def auth"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Content, "auth.py:1:")
	assert.NotContains(t, res.Content, "db.py")
}

func TestSearchCodeBoundsResults(t *testing.T) {
	ws := testWorkspace(t)
	seedFile(t, ws, "many.txt", strings.Repeat("needle\n", 10))
	tool := NewSearchCodeTool(ws, 3)

	res, err := tool.Execute(context.Background(), map[string]any{"query": "needle"})
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(res.Content, "many.txt:"), "at most 3 matches")
}

func TestSearchCodeRejectsBadRegexp(t *testing.T) {
	tool := NewSearchCodeTool(testWorkspace(t), 0)
	assert.Error(t, tool.Validate(map[string]any{"query": "("}))
}

func TestGitToolsOutsideRepository(t *testing.T) {
	ws := testWorkspace(t)
	ctx := context.Background()

	status, err := NewGitStatusTool(ws).Execute(ctx, nil)
	require.NoError(t, err)
	assert.True(t, status.Success, "not a repository is a normal result")
	assert.Equal(t, notARepo, status.Content)

	diff, err := NewGitDiffTool(ws).Execute(ctx, nil)
	require.NoError(t, err)
	assert.True(t, diff.Success)
	assert.Equal(t, notARepo, diff.Content)

	commit, err := NewGitCommitTool(ws).Execute(ctx, map[string]any{"message": "m"})
	require.NoError(t, err)
	assert.False(t, commit.Success, "mutating git tools fail gracefully")
}

func TestApplyPatchTool(t *testing.T) {
	ws := testWorkspace(t)
	path := seedFile(t, ws, "f.txt", "a\nb\nc\n")
	tool := NewApplyPatchTool(ws)

	diff := patch.Generate("a\nb\nc\n", "a\nX\nc\n", "f.txt")
	res, err := tool.Execute(context.Background(), map[string]any{"path": "f.txt", "diff": diff})
	require.NoError(t, err)
	assert.True(t, res.Success)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nX\nc\n", string(data))
	assert.FileExists(t, path+patch.BackupSuffix)
}

func TestApplyPatchToolMissingFile(t *testing.T) {
	ws := testWorkspace(t)
	tool := NewApplyPatchTool(ws)

	res, err := tool.Execute(context.Background(), map[string]any{
		"path": "missing.txt",
		"diff": "--- a/missing.txt\n+++ b/missing.txt\n@@ -1,1 +1,1 @@\n-a\n+b\n",
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NoFileExists(t, filepath.Join(ws.Root, "missing.txt"+patch.BackupSuffix),
		"failed backup must not leave a backup file")
}

func TestPreviewChangesTool(t *testing.T) {
	ws := testWorkspace(t)
	seedFile(t, ws, "f.txt", "old\n")
	tool := NewPreviewChangesTool(ws)

	res, err := tool.Execute(context.Background(), map[string]any{
		"path":        "f.txt",
		"new_content": "new\n",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Content, "-old")
	assert.Contains(t, res.Content, "+new")

	// The file itself is untouched.
	data, err := os.ReadFile(filepath.Join(ws.Root, "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(data))
}

func TestBackupToolsRoundTrip(t *testing.T) {
	ws := testWorkspace(t)
	path := seedFile(t, ws, "f.txt", "v1\n")
	ctx := context.Background()

	res, err := NewCreateBackupTool(ws).Execute(ctx, map[string]any{"path": "f.txt"})
	require.NoError(t, err)
	require.True(t, res.Success)

	require.NoError(t, os.WriteFile(path, []byte("v2\n"), 0644))

	res, err = NewRestoreBackupTool(ws).Execute(ctx, map[string]any{"path": "f.txt"})
	require.NoError(t, err)
	require.True(t, res.Success)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v1\n", string(data))
}

func TestRestoreBackupToolWithoutBackup(t *testing.T) {
	ws := testWorkspace(t)
	seedFile(t, ws, "f.txt", "content\n")

	res, err := NewRestoreBackupTool(ws).Execute(context.Background(), map[string]any{"path": "f.txt"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "no backup")
}
