package tools

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"coda/internal/config"
	"coda/internal/workspace"
)

// maxSearchFileSize skips files too large to scan line by line.
const maxSearchFileSize = 1 << 20 // 1MB

// SearchCodeTool searches file contents under the workspace for a regular
// expression, with bounded result count and per-file scan size.
type SearchCodeTool struct {
	ws         workspace.Workspace
	maxResults int
}

// NewSearchCodeTool creates a new SearchCodeTool instance.
func NewSearchCodeTool(ws workspace.Workspace, maxResults int) *SearchCodeTool {
	if maxResults <= 0 {
		maxResults = config.DefaultMaxSearchResults
	}
	return &SearchCodeTool{ws: ws, maxResults: maxResults}
}

func (t *SearchCodeTool) Name() string {
	return "search_code"
}

func (t *SearchCodeTool) Description() string {
	return "Searches file contents for a regular expression and returns matching lines as path:line:text. Result count and per-file scan size are bounded."
}

func (t *SearchCodeTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"query": {
					Type:        genai.TypeString,
					Description: "Regular expression to search for",
				},
				"path": {
					Type:        genai.TypeString,
					Description: "Directory to search, relative to the project root (default: project root)",
				},
			},
			Required: []string{"query"},
		},
	}
}

func (t *SearchCodeTool) Validate(args map[string]any) error {
	query, ok := GetString(args, "query")
	if !ok || query == "" {
		return NewValidationError("query", "is required")
	}
	if _, err := regexp.Compile(query); err != nil {
		return NewValidationError("query", fmt.Sprintf("invalid regular expression: %s", err))
	}
	return nil
}

func (t *SearchCodeTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	query, _ := GetString(args, "query")
	re := regexp.MustCompile(query)
	dir := t.ws.Resolve(GetStringDefault(args, "path", "."))

	var matches []string
	truncated := false

	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && skipListDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if len(matches) >= t.maxResults {
			truncated = true
			return filepath.SkipAll
		}
		if info, err := d.Info(); err != nil || info.Size() > maxSearchFileSize {
			return nil
		}

		t.scanFile(path, dir, re, &matches)
		return nil
	})

	if len(matches) == 0 {
		return NewSuccessResult("No matches found."), nil
	}

	content := strings.Join(matches, "\n")
	if truncated {
		content += fmt.Sprintf("\n... (result capped at %d matches)", t.maxResults)
		return NewTruncatedResult(content), nil
	}
	return NewSuccessResult(content), nil
}

func (t *SearchCodeTool) scanFile(path, dir string, re *regexp.Regexp, matches *[]string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	rel, err := filepath.Rel(dir, path)
	if err != nil {
		rel = path
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if !re.MatchString(line) {
			continue
		}
		if len(line) > 200 {
			line = line[:200] + "..."
		}
		*matches = append(*matches, fmt.Sprintf("%s:%d: %s", filepath.ToSlash(rel), lineNum, strings.TrimSpace(line)))
		if len(*matches) >= t.maxResults {
			return
		}
	}
}
