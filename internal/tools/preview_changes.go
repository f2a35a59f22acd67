package tools

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"coda/internal/patch"
	"coda/internal/workspace"
)

// PreviewChangesTool computes the unified diff between a file's current
// content and a proposed replacement without touching the file.
type PreviewChangesTool struct {
	ws workspace.Workspace
}

// NewPreviewChangesTool creates a new PreviewChangesTool instance.
func NewPreviewChangesTool(ws workspace.Workspace) *PreviewChangesTool {
	return &PreviewChangesTool{ws: ws}
}

func (t *PreviewChangesTool) Name() string {
	return "preview_changes"
}

func (t *PreviewChangesTool) Description() string {
	return "Shows the unified diff between a file's current content and proposed new content. Read-only; use apply_patch to make the change."
}

func (t *PreviewChangesTool) Declaration() *genai.FunctionDeclaration {
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
				"new_content": {
					Type:        genai.TypeString,
					Description: "The proposed full content of the file",
				},
			},
			Required: []string{"path", "new_content"},
		},
	}
}

func (t *PreviewChangesTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || path == "" {
		return NewValidationError("path", "is required")
	}
	if _, ok := GetString(args, "new_content"); !ok {
		return NewValidationError("new_content", "is required")
	}
	return nil
}

func (t *PreviewChangesTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")
	newContent, _ := GetString(args, "new_content")

	resolved := t.ws.Resolve(path)
	data, err := os.ReadFile(resolved)
	if err != nil && !os.IsNotExist(err) {
		return NewErrorResult(fmt.Sprintf("error reading %s: %s", path, err)), nil
	}

	diff := patch.Generate(string(data), newContent, path)
	if diff == "" {
		return NewSuccessResult("No changes."), nil
	}
	return NewSuccessResult(diff), nil
}
