package tools

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"coda/internal/patch"
	"coda/internal/workspace"
)

// ApplyPatchTool applies a unified diff to a file. A backup is created
// before any mutation; a failed apply restores the original content.
type ApplyPatchTool struct {
	ws workspace.Workspace
}

// NewApplyPatchTool creates a new ApplyPatchTool instance.
func NewApplyPatchTool(ws workspace.Workspace) *ApplyPatchTool {
	return &ApplyPatchTool{ws: ws}
}

func (t *ApplyPatchTool) Name() string {
	return "apply_patch"
}

func (t *ApplyPatchTool) Description() string {
	return "Applies a unified diff to a file. The original content is backed up first; if the diff does not apply, the file is left unchanged. The backup stays available for restore_backup."
}

func (t *ApplyPatchTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {
					Type:        genai.TypeString,
					Description: "Path to the file to patch, relative to the project root",
				},
				"diff": {
					Type:        genai.TypeString,
					Description: "Unified diff to apply",
				},
			},
			Required: []string{"path", "diff"},
		},
	}
}

func (t *ApplyPatchTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || path == "" {
		return NewValidationError("path", "is required")
	}
	if _, ok := GetString(args, "diff"); !ok {
		return NewValidationError("diff", "is required")
	}
	return nil
}

func (t *ApplyPatchTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")
	diff, _ := GetString(args, "diff")

	resolved := t.ws.Resolve(path)
	if !t.ws.Contains(resolved) {
		return NewErrorResult(fmt.Sprintf("refusing to patch outside the project root: %s", path)), nil
	}

	if err := patch.Apply(resolved, diff); err != nil {
		return NewErrorResult(err.Error()), nil
	}
	return NewSuccessResult(fmt.Sprintf("Patched %s (backup at %s)", path, path+patch.BackupSuffix)), nil
}
