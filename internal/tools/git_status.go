package tools

import (
	"context"

	"google.golang.org/genai"

	"coda/internal/git"
	"coda/internal/workspace"
)

// notARepo is the normal (non-error) result when the workspace is not
// version controlled.
const notARepo = "Not a git repository."

// GitStatusTool shows the working tree status.
type GitStatusTool struct {
	ws workspace.Workspace
}

// NewGitStatusTool creates a new GitStatusTool instance.
func NewGitStatusTool(ws workspace.Workspace) *GitStatusTool {
	return &GitStatusTool{ws: ws}
}

func (t *GitStatusTool) Name() string {
	return "git_status"
}

func (t *GitStatusTool) Description() string {
	return "Shows the git working tree status of the project."
}

func (t *GitStatusTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
		},
	}
}

func (t *GitStatusTool) Validate(args map[string]any) error {
	return nil
}

func (t *GitStatusTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	if !git.IsRepo(t.ws.Root) {
		return NewSuccessResult(notARepo), nil
	}

	output, err := git.Run(ctx, t.ws.Root, "status", "--short", "--branch")
	if err != nil {
		return NewErrorResult("git status failed: " + output), nil
	}
	if output == "" {
		output = "Working tree clean."
	}
	return NewSuccessResult(output), nil
}
