package tools

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"coda/internal/patch"
	"coda/internal/workspace"
)

// RestoreBackupTool overwrites a file with its backed-up content.
type RestoreBackupTool struct {
	ws workspace.Workspace
}

// NewRestoreBackupTool creates a new RestoreBackupTool instance.
func NewRestoreBackupTool(ws workspace.Workspace) *RestoreBackupTool {
	return &RestoreBackupTool{ws: ws}
}

func (t *RestoreBackupTool) Name() string {
	return "restore_backup"
}

func (t *RestoreBackupTool) Description() string {
	return "Restores a file from its backup, undoing changes made since the backup was taken. Fails if no backup exists."
}

func (t *RestoreBackupTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {
					Type:        genai.TypeString,
					Description: "Path to the file to restore, relative to the project root",
				},
			},
			Required: []string{"path"},
		},
	}
}

func (t *RestoreBackupTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || path == "" {
		return NewValidationError("path", "is required")
	}
	return nil
}

func (t *RestoreBackupTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")

	resolved := t.ws.Resolve(path)
	if !t.ws.Contains(resolved) {
		return NewErrorResult(fmt.Sprintf("refusing to restore outside the project root: %s", path)), nil
	}

	if err := patch.RestoreBackup(resolved); err != nil {
		return NewErrorResult(err.Error()), nil
	}
	return NewSuccessResult("Restored " + path + " from backup."), nil
}
