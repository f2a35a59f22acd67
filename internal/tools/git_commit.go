package tools

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"coda/internal/git"
	"coda/internal/workspace"
)

// GitCommitTool records staged changes as a commit.
type GitCommitTool struct {
	ws workspace.Workspace
}

// NewGitCommitTool creates a new GitCommitTool instance.
func NewGitCommitTool(ws workspace.Workspace) *GitCommitTool {
	return &GitCommitTool{ws: ws}
}

func (t *GitCommitTool) Name() string {
	return "git_commit"
}

func (t *GitCommitTool) Description() string {
	return "Creates a commit from the currently staged changes."
}

func (t *GitCommitTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"message": {
					Type:        genai.TypeString,
					Description: "The commit message",
				},
			},
			Required: []string{"message"},
		},
	}
}

func (t *GitCommitTool) Validate(args map[string]any) error {
	message, ok := GetString(args, "message")
	if !ok || strings.TrimSpace(message) == "" {
		return NewValidationError("message", "is required")
	}
	return nil
}

func (t *GitCommitTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	if !git.IsRepo(t.ws.Root) {
		return NewErrorResult(notARepo), nil
	}

	message, _ := GetString(args, "message")
	output, err := git.Run(ctx, t.ws.Root, "commit", "-m", message)
	if err != nil {
		return NewErrorResult("git commit failed: " + output), nil
	}
	return NewSuccessResult(output), nil
}
