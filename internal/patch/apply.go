package patch

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"coda/internal/fileutil"
	"coda/internal/logging"
)

// ErrApply reports that a diff could not be applied to the file's current
// content. The target file is left untouched.
var ErrApply = errors.New("patch does not apply")

// Apply patches the file at path with a unified diff, transactionally:
// a backup is created first (failure aborts everything), then the patched
// content is written atomically; if patching fails the backup is restored.
// On success the backup stays behind for a later RestoreBackup. An empty
// diff is a no-op that still creates the backup.
func Apply(path, diff string) error {
	backupPath, err := CreateBackup(path)
	if err != nil {
		return err
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrBackup, path, err)
	}

	patched, err := applyToContent(string(original), diff)
	if err != nil {
		// Nothing was written yet, but restore anyway so the file
		// matches the backup even if an external writer raced us.
		if rerr := RestoreBackup(path); rerr != nil {
			logging.Error("patch: restore after failed apply", "path", path, "error", rerr)
		}
		return err
	}

	if err := fileutil.AtomicWrite(path, []byte(patched), 0644); err != nil {
		if rerr := RestoreBackup(path); rerr != nil {
			logging.Error("patch: restore after failed write", "path", path, "error", rerr)
		}
		return fmt.Errorf("writing patched file: %w", err)
	}

	logging.Info("patch applied", "path", path, "backup", backupPath)
	return nil
}

// applyToContent applies a unified diff to content. Pure.
func applyToContent(content, diff string) (string, error) {
	hunks, err := parseUnified(diff)
	if err != nil {
		return "", err
	}
	if len(hunks) == 0 {
		return content, nil
	}

	lines := splitLines(content)
	var out []string
	cursor := 0 // next unconsumed index into lines

	for _, h := range hunks {
		pre, post := h.images()

		want := h.oldStart - 1
		if h.oldCount == 0 {
			// A zero-length old range "@@ -N,0 ... @@" inserts after old
			// line N, not at it.
			want = h.oldStart
		}
		at := locate(lines, pre, want, cursor)
		if at < 0 {
			return "", fmt.Errorf("%w: hunk @@ -%d,%d @@ not found", ErrApply, h.oldStart, h.oldCount)
		}

		out = append(out, lines[cursor:at]...)
		out = append(out, post...)
		cursor = at + len(pre)
	}
	out = append(out, lines[cursor:]...)

	return joinLines(out), nil
}

// images returns the hunk's pre-image (context + deleted lines) and
// post-image (context + inserted lines).
func (h hunk) images() (pre, post []string) {
	for _, line := range h.lines {
		body := line[1:]
		switch line[0] {
		case ' ':
			pre = append(pre, body)
			post = append(post, body)
		case '-':
			pre = append(pre, body)
		case '+':
			post = append(post, body)
		}
	}
	return pre, post
}

// locate finds the pre-image in lines, trying the position the hunk header
// claims first and then scanning forward from the cursor. Returns -1 when
// the pre-image does not occur.
func locate(lines, pre []string, want, cursor int) int {
	if len(pre) == 0 {
		// Pure insertion: trust the stated position, clamped.
		if want < cursor {
			want = cursor
		}
		if want > len(lines) {
			want = len(lines)
		}
		return want
	}
	if want >= cursor && matchAt(lines, pre, want) {
		return want
	}
	for at := cursor; at+len(pre) <= len(lines); at++ {
		if matchAt(lines, pre, at) {
			return at
		}
	}
	return -1
}

func matchAt(lines, pre []string, at int) bool {
	if at < 0 || at+len(pre) > len(lines) {
		return false
	}
	for i, p := range pre {
		if lines[at+i] != p {
			return false
		}
	}
	return true
}

// parseUnified parses a unified diff into hunks. File headers (---/+++) and
// "\ No newline" markers are skipped; a stripped-blank context line is
// normalized back to " ".
func parseUnified(diff string) ([]hunk, error) {
	var hunks []hunk
	var current *hunk
	oldSeen, newSeen := 0, 0

	for _, raw := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(raw, "@@"):
			h, err := parseHunkHeader(raw)
			if err != nil {
				return nil, err
			}
			hunks = append(hunks, h)
			current = &hunks[len(hunks)-1]
			oldSeen, newSeen = 0, 0
		case strings.HasPrefix(raw, "---"), strings.HasPrefix(raw, "+++"):
			// File headers; also guards against treating "---" as a deletion.
		case strings.HasPrefix(raw, `\`):
			// "\ No newline at end of file"
		case current != nil:
			if oldSeen >= current.oldCount && newSeen >= current.newCount {
				// Hunk body is complete; anything between here and the
				// next header (like the diff's trailing newline) is noise.
				current = nil
				continue
			}
			line := raw
			if line == "" {
				line = " "
			}
			switch line[0] {
			case ' ':
				oldSeen++
				newSeen++
			case '-':
				oldSeen++
			case '+':
				newSeen++
			default:
				return nil, fmt.Errorf("%w: unexpected line %q", ErrApply, raw)
			}
			current.lines = append(current.lines, line)
		}
	}

	return hunks, nil
}

var errBadHeader = errors.New("malformed hunk header")

// parseHunkHeader parses "@@ -l[,c] +l[,c] @@".
func parseHunkHeader(line string) (hunk, error) {
	var h hunk
	fields := strings.Fields(line)
	if len(fields) < 3 || fields[0] != "@@" {
		return h, fmt.Errorf("%w: %q", errBadHeader, line)
	}

	var err error
	h.oldStart, h.oldCount, err = parseRange(strings.TrimPrefix(fields[1], "-"))
	if err != nil {
		return h, fmt.Errorf("%w: %q", errBadHeader, line)
	}
	h.newStart, h.newCount, err = parseRange(strings.TrimPrefix(fields[2], "+"))
	if err != nil {
		return h, fmt.Errorf("%w: %q", errBadHeader, line)
	}
	return h, nil
}

func parseRange(s string) (start, count int, err error) {
	count = 1
	if idx := strings.IndexByte(s, ','); idx >= 0 {
		count, err = strconv.Atoi(s[idx+1:])
		if err != nil {
			return 0, 0, err
		}
		s = s[:idx]
	}
	start, err = strconv.Atoi(s)
	return start, count, err
}
