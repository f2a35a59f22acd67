package tools

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"google.golang.org/genai"

	"coda/internal/config"
	"coda/internal/workspace"
)

// skipListDirs are directories list_files and search_code never descend into.
var skipListDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true,
	"node_modules": true, "__pycache__": true,
	"venv": true, ".venv": true, "vendor": true,
	"build": true, "dist": true, "target": true,
}

// ListFilesTool lists files under a directory matching a glob pattern.
type ListFilesTool struct {
	ws         workspace.Workspace
	maxResults int
}

// NewListFilesTool creates a new ListFilesTool instance.
func NewListFilesTool(ws workspace.Workspace, maxResults int) *ListFilesTool {
	if maxResults <= 0 {
		maxResults = config.DefaultMaxListResults
	}
	return &ListFilesTool{ws: ws, maxResults: maxResults}
}

func (t *ListFilesTool) Name() string {
	return "list_files"
}

func (t *ListFilesTool) Description() string {
	return "Lists files under a directory, optionally filtered by a glob pattern (** matches across directories). Result count is bounded."
}

func (t *ListFilesTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {
					Type:        genai.TypeString,
					Description: "Directory to list, relative to the project root (default: project root)",
				},
				"pattern": {
					Type:        genai.TypeString,
					Description: "Glob pattern matched against relative paths, e.g. **/*.go (default: all files)",
				},
			},
		},
	}
}

func (t *ListFilesTool) Validate(args map[string]any) error {
	if pattern, ok := GetString(args, "pattern"); ok && pattern != "" {
		if !doublestar.ValidatePattern(pattern) {
			return NewValidationError("pattern", "is not a valid glob")
		}
	}
	return nil
}

func (t *ListFilesTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	dir := t.ws.Resolve(GetStringDefault(args, "path", "."))
	pattern := GetStringDefault(args, "pattern", "**/*")

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

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			matches = append(matches, rel)
		}
		return nil
	})

	if len(matches) == 0 {
		return NewSuccessResult("No files matched."), nil
	}

	content := strings.Join(matches, "\n")
	if truncated {
		content += fmt.Sprintf("\n... (result capped at %d files)", t.maxResults)
		return NewTruncatedResult(content), nil
	}
	return NewSuccessResult(content), nil
}
