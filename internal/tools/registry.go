package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"google.golang.org/genai"

	"coda/internal/config"
	"coda/internal/logging"
	"coda/internal/workspace"
)

// Registry manages the collection of available tools. Registration happens
// once at startup; afterwards the registry is read-mostly.
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry. Duplicate names are rejected.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}

	r.tools[name] = tool
	return nil
}

// MustRegister adds a tool to the registry and logs a warning on error.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		logging.Warn("failed to register tool", "tool", tool.Name(), "error", err)
	}
}

// Get retrieves a tool by name (read-optimized with RLock).
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns the names of all registered tools, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns all registered tools in name order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// Declarations returns all tool declarations in name order.
func (r *Registry) Declarations() []*genai.FunctionDeclaration {
	list := r.List()
	declarations := make([]*genai.FunctionDeclaration, 0, len(list))
	for _, tool := range list {
		declarations = append(declarations, tool.Declaration())
	}
	return declarations
}

// GeminiTools returns the catalog in Gemini format.
func (r *Registry) GeminiTools() []*genai.Tool {
	return []*genai.Tool{
		{
			FunctionDeclarations: r.Declarations(),
		},
	}
}

// Execute runs a named tool. The call never fails past this boundary: an
// unknown tool, invalid arguments, a handler error or even a handler panic
// all come back as an error-carrying ToolResult the model can read.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (result ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("tool panicked", "tool", name, "panic", rec)
			result = NewErrorResult(fmt.Sprintf("tool %s panicked: %v", name, rec))
		}
	}()

	tool, ok := r.Get(name)
	if !ok {
		return NewErrorResult(fmt.Sprintf("unknown tool: %s", name))
	}

	if err := tool.Validate(args); err != nil {
		return NewErrorResult(fmt.Sprintf("invalid arguments for %s: %s", name, err))
	}

	res, err := tool.Execute(ctx, args)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("%s failed: %s", name, err))
	}
	return res
}

// DefaultRegistry creates a registry with all built-in tools bound to the
// workspace.
func DefaultRegistry(ws workspace.Workspace, cfg config.ToolsConfig) *Registry {
	r := NewRegistry()

	// File tools
	r.MustRegister(NewReadFileTool(ws, cfg.MaxReadSize))
	r.MustRegister(NewWriteFileTool(ws))
	r.MustRegister(NewListFilesTool(ws, cfg.MaxListResults))
	r.MustRegister(NewSearchCodeTool(ws, cfg.MaxSearchResults))

	// Shell
	r.MustRegister(NewRunCommandTool(ws, cfg.CommandTimeout))

	// Git tools
	r.MustRegister(NewGitStatusTool(ws))
	r.MustRegister(NewGitDiffTool(ws))
	r.MustRegister(NewGitLogTool(ws))
	r.MustRegister(NewGitAddTool(ws))
	r.MustRegister(NewGitCommitTool(ws))

	// Patch engine
	r.MustRegister(NewApplyPatchTool(ws))
	r.MustRegister(NewPreviewChangesTool(ws))
	r.MustRegister(NewCreateBackupTool(ws))
	r.MustRegister(NewRestoreBackupTool(ws))

	return r
}
