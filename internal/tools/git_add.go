package tools

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"coda/internal/git"
	"coda/internal/workspace"
)

// GitAddTool stages files for commit.
type GitAddTool struct {
	ws workspace.Workspace
}

// NewGitAddTool creates a new GitAddTool instance.
func NewGitAddTool(ws workspace.Workspace) *GitAddTool {
	return &GitAddTool{ws: ws}
}

func (t *GitAddTool) Name() string {
	return "git_add"
}

func (t *GitAddTool) Description() string {
	return "Stages the given paths for the next commit."
}

func (t *GitAddTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"paths": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "Paths to stage, relative to the project root",
				},
			},
			Required: []string{"paths"},
		},
	}
}

func (t *GitAddTool) Validate(args map[string]any) error {
	paths := getStringSlice(args, "paths")
	if len(paths) == 0 {
		return NewValidationError("paths", "at least one path is required")
	}
	return nil
}

func (t *GitAddTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	if !git.IsRepo(t.ws.Root) {
		return NewErrorResult(notARepo), nil
	}

	paths := getStringSlice(args, "paths")
	output, err := git.Run(ctx, t.ws.Root, append([]string{"add", "--"}, paths...)...)
	if err != nil {
		return NewErrorResult("git add failed: " + output), nil
	}
	return NewSuccessResult(fmt.Sprintf("Staged: %s", strings.Join(paths, ", "))), nil
}

// getStringSlice extracts a string-array argument. The model delivers
// arrays as []any.
func getStringSlice(args map[string]any, key string) []string {
	val, ok := args[key]
	if !ok {
		return nil
	}
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
