package tools

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"coda/internal/patch"
	"coda/internal/workspace"
)

// CreateBackupTool snapshots a file to its sibling backup slot.
type CreateBackupTool struct {
	ws workspace.Workspace
}

// NewCreateBackupTool creates a new CreateBackupTool instance.
func NewCreateBackupTool(ws workspace.Workspace) *CreateBackupTool {
	return &CreateBackupTool{ws: ws}
}

func (t *CreateBackupTool) Name() string {
	return "create_backup"
}

func (t *CreateBackupTool) Description() string {
	return "Copies a file's current content to a sibling backup. Each file has one backup slot; a new backup replaces the previous one."
}

func (t *CreateBackupTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {
					Type:        genai.TypeString,
					Description: "Path to the file to back up, relative to the project root",
				},
			},
			Required: []string{"path"},
		},
	}
}

func (t *CreateBackupTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || path == "" {
		return NewValidationError("path", "is required")
	}
	return nil
}

func (t *CreateBackupTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")

	resolved := t.ws.Resolve(path)
	if !t.ws.Contains(resolved) {
		return NewErrorResult(fmt.Sprintf("refusing to back up outside the project root: %s", path)), nil
	}

	backupPath, err := patch.CreateBackup(resolved)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}
	return NewSuccessResult("Backup created: " + backupPath), nil
}
