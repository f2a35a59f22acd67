package tools

import (
	"context"
	"strconv"

	"google.golang.org/genai"

	"coda/internal/git"
	"coda/internal/workspace"
)

// GitLogTool shows recent commit history.
type GitLogTool struct {
	ws workspace.Workspace
}

// NewGitLogTool creates a new GitLogTool instance.
func NewGitLogTool(ws workspace.Workspace) *GitLogTool {
	return &GitLogTool{ws: ws}
}

func (t *GitLogTool) Name() string {
	return "git_log"
}

func (t *GitLogTool) Description() string {
	return "Shows recent commits, one line each."
}

func (t *GitLogTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"count": {
					Type:        genai.TypeInteger,
					Description: "Number of commits to show (default: 10)",
				},
			},
		},
	}
}

func (t *GitLogTool) Validate(args map[string]any) error {
	if count, ok := GetInt(args, "count"); ok && count <= 0 {
		return NewValidationError("count", "must be positive")
	}
	return nil
}

func (t *GitLogTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	if !git.IsRepo(t.ws.Root) {
		return NewSuccessResult(notARepo), nil
	}

	count := GetIntDefault(args, "count", 10)
	output, err := git.Run(ctx, t.ws.Root, "log", "--oneline", "-n", strconv.Itoa(count))
	if err != nil {
		return NewErrorResult("git log failed: " + output), nil
	}
	if output == "" {
		output = "No commits yet."
	}
	return NewSuccessResult(output), nil
}
