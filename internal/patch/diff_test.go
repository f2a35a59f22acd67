package patch

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIdenticalInputs(t *testing.T) {
	assert.Empty(t, Generate("same\ncontent\n", "same\ncontent\n", "file.go"))
	assert.Empty(t, Generate("", "", "empty.txt"))
}

func TestGenerateHeaders(t *testing.T) {
	diff := Generate("old\n", "new\n", "pkg/main.go")

	assert.True(t, strings.HasPrefix(diff, "--- a/pkg/main.go\n+++ b/pkg/main.go\n"))
	assert.Contains(t, diff, "-old")
	assert.Contains(t, diff, "+new")
}

func TestGenerateApplyRoundTrip(t *testing.T) {
	cases := []struct {
		name               string
		original, modified string
	}{
		{"single line change", "a\nb\nc\n", "a\nx\nc\n"},
		{"append", "a\nb\n", "a\nb\nc\n"},
		{"delete", "a\nb\nc\n", "a\nc\n"},
		{"no trailing newline", "a\nb\nc", "a\nB\nc"},
		{"gain trailing newline", "a\nb", "a\nb\n"},
		{"lose trailing newline", "a\nb\n", "a\nb"},
		{"empty to content", "", "hello\nworld\n"},
		{"content to empty", "hello\nworld\n", ""},
		{"distant hunks", manyLines(1, 40) + "\n", strings.Replace(strings.Replace(manyLines(1, 40), "line5", "LINE5", 1), "line35", "LINE35", 1) + "\n"},
		{"blank lines", "a\n\n\nb\n", "a\n\nb\n"},
		{"repeated lines", "x\nx\nx\n", "x\ny\nx\nx\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			diff := Generate(tc.original, tc.modified, "f.txt")
			got, err := applyToContent(tc.original, diff)
			require.NoError(t, err)
			assert.Equal(t, tc.modified, got, "diff was:\n%s", diff)
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	original := "def auth(user):\n    return False\n"
	modified := "def auth(user):\n    return check(user)\n"

	first := Generate(original, modified, "auth.py")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Generate(original, modified, "auth.py"))
	}
}

func TestGenerateHunkContext(t *testing.T) {
	original := manyLines(1, 20) + "\n"
	modified := strings.Replace(original, "line10", "changed10", 1)

	diff := Generate(original, modified, "f.txt")

	// One hunk, three lines of context on each side of the change.
	assert.Equal(t, 1, strings.Count(diff, "@@ -"), diff)
	assert.Contains(t, diff, " line7\n")
	assert.Contains(t, diff, " line13\n")
	assert.NotContains(t, diff, "line6")
	assert.NotContains(t, diff, "line14")
}

func TestApplyToContentRejectsMismatch(t *testing.T) {
	diff := Generate("a\nb\nc\n", "a\nx\nc\n", "f.txt")

	_, err := applyToContent("completely\ndifferent\n", diff)
	require.ErrorIs(t, err, ErrApply)
}

func TestApplyToContentEmptyDiff(t *testing.T) {
	got, err := applyToContent("untouched\n", "")
	require.NoError(t, err)
	assert.Equal(t, "untouched\n", got)
}

func TestApplyToContentScanFallback(t *testing.T) {
	// The hunk header claims line 2 but the target drifted down by two
	// lines; the pre-image still occurs and must be found by scanning.
	diff := Generate("a\nb\nc\n", "a\nx\nc\n", "f.txt")
	drifted := "zero\none\na\nb\nc\n"

	got, err := applyToContent(drifted, diff)
	require.NoError(t, err)
	assert.Equal(t, "zero\none\na\nx\nc\n", got)
}

func TestApplyToContentZeroContextInsertion(t *testing.T) {
	// Hand-written minimal hunks carry no context; "@@ -N,0 ... @@" means
	// the new lines go after old line N.
	diff := "--- a/f\n+++ b/f\n@@ -2,0 +3,1 @@\n+X\n"

	got, err := applyToContent("a\nb\nc\n", diff)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nX\nc\n", got)
}

func TestApplyToContentZeroContextInsertionAtTop(t *testing.T) {
	diff := "--- a/f\n+++ b/f\n@@ -0,0 +1,1 @@\n+first\n"

	got, err := applyToContent("a\nb\n", diff)
	require.NoError(t, err)
	assert.Equal(t, "first\na\nb\n", got)
}

func TestApplyToContentZeroContextInsertionPastEnd(t *testing.T) {
	// A stated position beyond the file clamps to appending.
	diff := "--- a/f\n+++ b/f\n@@ -99,0 +100,1 @@\n+tail\n"

	got, err := applyToContent("a\nb", diff)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\ntail", got)
}

func TestParseUnifiedMalformedHeader(t *testing.T) {
	_, err := parseUnified("--- a/f\n+++ b/f\n@@ -x,1 +1,1 @@\n-a\n+b\n")
	require.Error(t, err)
}

func TestPreviewEmptyDiff(t *testing.T) {
	assert.Equal(t, "(no changes)", Preview(""))
}

func TestPreviewKeepsAllLines(t *testing.T) {
	diff := Generate("a\nb\n", "a\nc\n", "f.txt")
	rendered := Preview(diff)

	assert.Equal(t, strings.Count(diff, "\n"), strings.Count(rendered, "\n"))
}

func manyLines(from, to int) string {
	var sb strings.Builder
	for i := from; i <= to; i++ {
		if i > from {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "line%d", i)
	}
	return sb.String()
}
