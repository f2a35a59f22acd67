// Package tools implements the catalog of local operations the model may
// request: file access, shell execution, code search, version control and
// the patch engine, each described by a function declaration schema.
package tools

import (
	"context"

	"google.golang.org/genai"
)

// Tool defines the interface for all tools.
type Tool interface {
	// Name returns the unique name of the tool.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Declaration returns the function declaration for this tool.
	Declaration() *genai.FunctionDeclaration

	// Validate validates the arguments before execution.
	Validate(args map[string]any) error

	// Execute runs the tool with the given arguments.
	Execute(ctx context.Context, args map[string]any) (ToolResult, error)
}

// ToolResult represents the result of a tool execution.
type ToolResult struct {
	// Content is the main result content (usually text).
	Content string

	// Error contains an error message if the tool failed.
	Error string

	// Success indicates if the tool executed successfully.
	Success bool

	// Truncated marks content that was cut at a size cap.
	Truncated bool
}

// NewSuccessResult creates a successful tool result.
func NewSuccessResult(content string) ToolResult {
	return ToolResult{Content: content, Success: true}
}

// NewTruncatedResult creates a successful tool result whose content was cut
// at a size cap.
func NewTruncatedResult(content string) ToolResult {
	return ToolResult{Content: content, Success: true, Truncated: true}
}

// NewErrorResult creates a failed tool result.
func NewErrorResult(errMsg string) ToolResult {
	return ToolResult{Error: errMsg, Success: false}
}

// Text serializes the result for the model. Failures carry an error marker
// prefix so the model can distinguish them from ordinary output.
func (r ToolResult) Text() string {
	if !r.Success {
		return "Error: " + r.Error
	}
	return r.Content
}

// ToMap converts the result to a map for a function response part.
func (r ToolResult) ToMap() map[string]any {
	result := map[string]any{"success": r.Success}
	if r.Success {
		if r.Content != "" {
			result["content"] = r.Content
		}
		if r.Truncated {
			result["truncated"] = true
		}
	} else {
		result["error"] = r.Error
	}
	return result
}

// ValidationError represents a tool argument validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// GetString extracts a string argument from the args map.
func GetString(args map[string]any, key string) (string, bool) {
	val, ok := args[key]
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// GetStringDefault extracts a string argument with a default value.
func GetStringDefault(args map[string]any, key, defaultVal string) string {
	if val, ok := GetString(args, key); ok {
		return val
	}
	return defaultVal
}

// GetInt extracts an integer argument from the args map.
func GetInt(args map[string]any, key string) (int, bool) {
	val, ok := args[key]
	if !ok {
		return 0, false
	}
	// The model may return numbers as float64.
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// GetIntDefault extracts an integer argument with a default value.
func GetIntDefault(args map[string]any, key string, defaultVal int) int {
	if val, ok := GetInt(args, key); ok {
		return val
	}
	return defaultVal
}

// GetBool extracts a boolean argument from the args map.
func GetBool(args map[string]any, key string) (bool, bool) {
	val, ok := args[key]
	if !ok {
		return false, false
	}
	b, ok := val.(bool)
	return b, ok
}

// GetBoolDefault extracts a boolean argument with a default value.
func GetBoolDefault(args map[string]any, key string, defaultVal bool) bool {
	if val, ok := GetBool(args, key); ok {
		return val
	}
	return defaultVal
}
