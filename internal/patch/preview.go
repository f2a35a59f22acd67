package patch

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	addStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	delStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hunkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
)

// Preview renders a unified diff for terminal display: additions green,
// removals red, hunk headers cyan, file headers blue. Context lines pass
// through unstyled. Purely presentational; the diff text is not modified.
func Preview(diff string) string {
	if diff == "" {
		return "(no changes)"
	}

	lines := strings.Split(diff, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "@@"):
			out[i] = hunkStyle.Render(line)
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			out[i] = headerStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			out[i] = addStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			out[i] = delStyle.Render(line)
		default:
			out[i] = line
		}
	}
	return strings.Join(out, "\n")
}
