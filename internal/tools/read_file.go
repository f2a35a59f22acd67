package tools

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"coda/internal/config"
	"coda/internal/workspace"
)

// ReadFileTool reads a file and returns its content, capped at a size limit.
type ReadFileTool struct {
	ws      workspace.Workspace
	maxSize int64
}

// NewReadFileTool creates a new ReadFileTool instance.
func NewReadFileTool(ws workspace.Workspace, maxSize int64) *ReadFileTool {
	if maxSize <= 0 {
		maxSize = config.DefaultMaxReadSize
	}
	return &ReadFileTool{ws: ws, maxSize: maxSize}
}

func (t *ReadFileTool) Name() string {
	return "read_file"
}

func (t *ReadFileTool) Description() string {
	return "Reads a file and returns its contents. Paths are relative to the project root unless absolute. Output is capped; oversized files are truncated with a marker."
}

func (t *ReadFileTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {
					Type:        genai.TypeString,
					Description: "Path to the file, relative to the project root or absolute",
				},
			},
			Required: []string{"path"},
		},
	}
}

func (t *ReadFileTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || path == "" {
		return NewValidationError("path", "is required")
	}
	return nil
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")
	resolved := t.ws.Resolve(path)

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return NewErrorResult(fmt.Sprintf("file not found: %s", path)), nil
		}
		return NewErrorResult(fmt.Sprintf("error accessing %s: %s", path, err)), nil
	}
	if info.IsDir() {
		return NewErrorResult(fmt.Sprintf("%s is a directory, not a file", path)), nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("error reading %s: %s", path, err)), nil
	}

	if int64(len(data)) > t.maxSize {
		content := string(data[:t.maxSize]) +
			fmt.Sprintf("\n... (truncated at %d of %d bytes)", t.maxSize, len(data))
		return NewTruncatedResult(content), nil
	}
	return NewSuccessResult(string(data)), nil
}
