// Package patch generates, previews and applies unified diffs with a
// mandatory backup-then-apply-or-restore discipline.
package patch

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines framing each hunk.
const contextLines = 3

type lineOp int

const (
	opEqual lineOp = iota
	opDelete
	opInsert
)

type lineDiff struct {
	op   lineOp
	line string
}

// Generate produces a unified diff between original and modified, labeled
// a/<label> and b/<label>. Pure: no I/O. Identical inputs yield "".
func Generate(original, modified, label string) string {
	if original == modified {
		return ""
	}

	ops := diffLines(splitLines(original), splitLines(modified))

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", label)
	fmt.Fprintf(&b, "+++ b/%s\n", label)
	for _, h := range buildHunks(ops) {
		b.WriteString(h.render())
	}
	return b.String()
}

// splitLines represents text as newline-separated segments. The split/join
// pair is an exact inverse, so content round-trips byte for byte; a trailing
// newline shows up as a final empty segment.
func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// diffLines runs the diff algorithm over whole lines by encoding each
// distinct line as a rune, diffing the encoded strings, and decoding back.
func diffLines(a, b []string) []lineDiff {
	index := make(map[string]rune)
	var table []string

	encode := func(lines []string) string {
		var sb strings.Builder
		for _, line := range lines {
			r, ok := index[line]
			if !ok {
				r = nextRune(len(table))
				index[line] = r
				table = append(table, line)
			}
			sb.WriteRune(r)
		}
		return sb.String()
	}

	ea, eb := encode(a), encode(b)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(ea, eb, false)

	var ops []lineDiff
	for _, d := range diffs {
		var op lineOp
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = opDelete
		case diffmatchpatch.DiffInsert:
			op = opInsert
		default:
			op = opEqual
		}
		for _, r := range d.Text {
			ops = append(ops, lineDiff{op: op, line: table[runeIndex(r)]})
		}
	}
	return ops
}

// nextRune maps a table index to a rune, skipping the surrogate range.
func nextRune(i int) rune {
	r := rune(i + 1)
	if r >= 0xD800 {
		r += 0x800
	}
	return r
}

func runeIndex(r rune) int {
	if r >= 0xE000 {
		r -= 0x800
	}
	return int(r - 1)
}

// hunk is one contiguous change region with surrounding context.
type hunk struct {
	oldStart, oldCount int // 1-based
	newStart, newCount int
	lines              []string // prefixed with ' ', '-' or '+'
}

func (h hunk) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.oldStart, h.oldCount, h.newStart, h.newCount)
	for _, line := range h.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// buildHunks groups line ops into hunks, merging changes whose context
// regions would overlap.
func buildHunks(ops []lineDiff) []hunk {
	// changed[i] marks ops that are inserts or deletes.
	var hunks []hunk

	i := 0
	oldLine, newLine := 1, 1 // 1-based positions in each file
	for i < len(ops) {
		if ops[i].op == opEqual {
			oldLine++
			newLine++
			i++
			continue
		}

		// Found a change: back up for leading context.
		start := i
		ctx := 0
		for start > 0 && ops[start-1].op == opEqual && ctx < contextLines {
			start--
			ctx++
		}

		h := hunk{
			oldStart: oldLine - ctx,
			newStart: newLine - ctx,
		}

		// Consume ops until contextLines*2 equals in a row follow the
		// last change, or input ends.
		j := start
		equalRun := 0
		end := i
		for j < len(ops) {
			if ops[j].op == opEqual {
				equalRun++
				if equalRun > contextLines*2 {
					break
				}
			} else {
				equalRun = 0
				end = j
			}
			j++
		}
		// Trim trailing context to at most contextLines past the last change.
		stop := end + 1 + contextLines
		if stop > len(ops) {
			stop = len(ops)
		}

		for k := start; k < stop; k++ {
			switch ops[k].op {
			case opEqual:
				h.lines = append(h.lines, " "+ops[k].line)
				h.oldCount++
				h.newCount++
			case opDelete:
				h.lines = append(h.lines, "-"+ops[k].line)
				h.oldCount++
			case opInsert:
				h.lines = append(h.lines, "+"+ops[k].line)
				h.newCount++
			}
		}
		hunks = append(hunks, h)

		// Advance the line counters over the consumed ops.
		for k := i; k < stop; k++ {
			switch ops[k].op {
			case opEqual:
				oldLine++
				newLine++
			case opDelete:
				oldLine++
			case opInsert:
				newLine++
			}
		}
		i = stop
	}
	return hunks
}
