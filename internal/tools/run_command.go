package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"google.golang.org/genai"

	"coda/internal/config"
	"coda/internal/workspace"
)

// RunCommandTool runs a shell command in the workspace with a wall-clock
// timeout. A timeout is reported as a normal result with a marker string,
// never as a hang.
type RunCommandTool struct {
	ws      workspace.Workspace
	timeout time.Duration
}

// NewRunCommandTool creates a new RunCommandTool instance.
func NewRunCommandTool(ws workspace.Workspace, timeout time.Duration) *RunCommandTool {
	if timeout <= 0 {
		timeout = config.DefaultCommandTimeout
	}
	return &RunCommandTool{ws: ws, timeout: timeout}
}

func (t *RunCommandTool) Name() string {
	return "run_command"
}

func (t *RunCommandTool) Description() string {
	return fmt.Sprintf("Runs a shell command in the project root and returns combined stdout and stderr. Commands are killed after %s.", t.timeout)
}

func (t *RunCommandTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"command": {
					Type:        genai.TypeString,
					Description: "The shell command to run",
				},
			},
			Required: []string{"command"},
		},
	}
}

func (t *RunCommandTool) Validate(args map[string]any) error {
	command, ok := GetString(args, "command")
	if !ok || strings.TrimSpace(command) == "" {
		return NewValidationError("command", "is required")
	}
	return nil
}

func (t *RunCommandTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	command, _ := GetString(args, "command")

	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	cmd.Dir = t.ws.Root

	output, err := cmd.CombinedOutput()
	text := strings.TrimSpace(string(output))

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		msg := fmt.Sprintf("command timed out after %s", t.timeout)
		if text != "" {
			msg += "\npartial output:\n" + text
		}
		return NewErrorResult(msg), nil
	}
	if err != nil {
		msg := fmt.Sprintf("command failed: %s", err)
		if text != "" {
			msg += "\n" + text
		}
		return NewErrorResult(msg), nil
	}

	if text == "" {
		text = "(no output)"
	}
	return NewSuccessResult(text), nil
}
