package tools

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"coda/internal/git"
	"coda/internal/workspace"
)

// maxGitDiffChars caps git_diff output fed back to the model.
const maxGitDiffChars = 5000

// GitDiffTool shows uncommitted changes.
type GitDiffTool struct {
	ws workspace.Workspace
}

// NewGitDiffTool creates a new GitDiffTool instance.
func NewGitDiffTool(ws workspace.Workspace) *GitDiffTool {
	return &GitDiffTool{ws: ws}
}

func (t *GitDiffTool) Name() string {
	return "git_diff"
}

func (t *GitDiffTool) Description() string {
	return "Shows uncommitted changes in the project. Output is capped; large diffs are truncated."
}

func (t *GitDiffTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"staged": {
					Type:        genai.TypeBoolean,
					Description: "If true, show staged changes instead of unstaged ones",
				},
			},
		},
	}
}

func (t *GitDiffTool) Validate(args map[string]any) error {
	return nil
}

func (t *GitDiffTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	if !git.IsRepo(t.ws.Root) {
		return NewSuccessResult(notARepo), nil
	}

	cmdArgs := []string{"diff"}
	if GetBoolDefault(args, "staged", false) {
		cmdArgs = append(cmdArgs, "--staged")
	}

	output, err := git.Run(ctx, t.ws.Root, cmdArgs...)
	if err != nil {
		return NewErrorResult("git diff failed: " + output), nil
	}
	if output == "" {
		return NewSuccessResult("No changes."), nil
	}
	if len(output) > maxGitDiffChars {
		output = output[:maxGitDiffChars] +
			fmt.Sprintf("\n... (diff truncated at %d characters)", maxGitDiffChars)
		return NewTruncatedResult(output), nil
	}
	return NewSuccessResult(output), nil
}
