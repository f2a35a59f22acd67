package config

import (
	"errors"
	"time"
)

// ErrMissingAuth is returned by Validate when no usable credentials are
// configured for the active provider.
var ErrMissingAuth = errors.New("no API key configured")

// Config represents the main application configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Model   ModelConfig   `yaml:"model"`
	Tools   ToolsConfig   `yaml:"tools"`
	Context ContextConfig `yaml:"context"`
	Agent   AgentConfig   `yaml:"agent"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`

	// Runtime version information
	Version string `yaml:"-"`
}

// APIConfig holds API-related settings.
type APIConfig struct {
	// GeminiKey is the API key for the Gemini provider.
	GeminiKey string `yaml:"gemini_key,omitempty"`

	// OllamaBaseURL points at a local or remote Ollama server
	// (default: http://localhost:11434).
	OllamaBaseURL string `yaml:"ollama_base_url,omitempty"`

	// ActiveProvider selects the backend: gemini or ollama (default: gemini).
	ActiveProvider string `yaml:"active_provider"`

	// Timeout bounds a single model call.
	Timeout time.Duration `yaml:"timeout"`

	// Retry configuration for API calls.
	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig controls retries of failed model calls. The policy is
// deliberately external: callers supply attempts and delay, nothing is
// inferred.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
}

// GetActiveProvider returns the active provider name.
func (c *APIConfig) GetActiveProvider() string {
	if c.ActiveProvider != "" {
		return c.ActiveProvider
	}
	return "gemini"
}

// ModelConfig holds model selection settings.
type ModelConfig struct {
	Name string `yaml:"name"`
}

// ToolsConfig holds settings for built-in tools.
type ToolsConfig struct {
	// CommandTimeout bounds run_command wall-clock time.
	CommandTimeout time.Duration `yaml:"command_timeout"`

	// MaxReadSize caps read_file in bytes.
	MaxReadSize int64 `yaml:"max_read_size"`

	// MaxSearchResults caps search_code matches.
	MaxSearchResults int `yaml:"max_search_results"`

	// MaxListResults caps list_files entries.
	MaxListResults int `yaml:"max_list_results"`
}

// ContextConfig holds context assembly settings.
type ContextConfig struct {
	// TokenBudget bounds the assembled context block.
	TokenBudget int `yaml:"token_budget"`

	// MaxRelevantFiles bounds the ranked file list.
	MaxRelevantFiles int `yaml:"max_relevant_files"`
}

// AgentConfig holds agentic loop settings.
type AgentConfig struct {
	// MaxIterations is the model/tool round-trip ceiling per user turn.
	MaxIterations int `yaml:"max_iterations"`
}

// SessionConfig holds session persistence settings.
type SessionConfig struct {
	// Persist enables saving conversation history to the session store.
	Persist bool `yaml:"persist"`

	// DBPath overrides the session database location.
	DBPath string `yaml:"db_path,omitempty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	ToFile bool   `yaml:"to_file"`
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.API.GetActiveProvider() {
	case "gemini":
		if c.API.GeminiKey == "" {
			return ErrMissingAuth
		}
	case "ollama":
		// Local Ollama needs no key.
	default:
		return errors.New("unknown provider: " + c.API.ActiveProvider)
	}

	if c.Agent.MaxIterations <= 0 {
		return errors.New("agent.max_iterations must be positive")
	}
	if c.Context.TokenBudget <= 0 {
		return errors.New("context.token_budget must be positive")
	}
	return nil
}
