package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/genai"

	"coda/internal/fileutil"
	"coda/internal/workspace"
)

// WriteFileTool writes content to a file inside the workspace, creating
// parent directories as needed. Writes outside the workspace are rejected.
type WriteFileTool struct {
	ws workspace.Workspace
}

// NewWriteFileTool creates a new WriteFileTool instance.
func NewWriteFileTool(ws workspace.Workspace) *WriteFileTool {
	return &WriteFileTool{ws: ws}
}

func (t *WriteFileTool) Name() string {
	return "write_file"
}

func (t *WriteFileTool) Description() string {
	return "Writes content to a file, creating parent directories as needed. Overwrites existing content. Only paths inside the project root are allowed."
}

func (t *WriteFileTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {
					Type:        genai.TypeString,
					Description: "Path to the file, relative to the project root",
				},
				"content": {
					Type:        genai.TypeString,
					Description: "The full content to write",
				},
			},
			Required: []string{"path", "content"},
		},
	}
}

func (t *WriteFileTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || path == "" {
		return NewValidationError("path", "is required")
	}
	if _, ok := GetString(args, "content"); !ok {
		return NewValidationError("content", "is required")
	}
	return nil
}

func (t *WriteFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")
	content, _ := GetString(args, "content")

	resolved := t.ws.Resolve(path)
	if !t.ws.Contains(resolved) {
		return NewErrorResult(fmt.Sprintf("refusing to write outside the project root: %s", path)), nil
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return NewErrorResult(fmt.Sprintf("error creating directories for %s: %s", path, err)), nil
	}
	if err := fileutil.AtomicWrite(resolved, []byte(content), 0644); err != nil {
		return NewErrorResult(fmt.Sprintf("error writing %s: %s", path, err)), nil
	}

	return NewSuccessResult(fmt.Sprintf("Wrote %d bytes to %s", len(content), path)), nil
}
