package config

import "time"

// Default limits. These are behavior contracts, not per-machine tunables.
const (
	DefaultModel            = "gemini-2.5-flash"
	DefaultCommandTimeout   = 30 * time.Second
	DefaultAPITimeout       = 2 * time.Minute
	DefaultMaxReadSize      = 100 * 1024 // 100KB
	DefaultMaxSearchResults = 50
	DefaultMaxListResults   = 200
	DefaultTokenBudget      = 8000
	DefaultMaxRelevantFiles = 10
	DefaultMaxIterations    = 5
)

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			ActiveProvider: "gemini",
			OllamaBaseURL:  "http://localhost:11434",
			Timeout:        DefaultAPITimeout,
			Retry: RetryConfig{
				MaxAttempts: 1,
			},
		},
		Model: ModelConfig{
			Name: DefaultModel,
		},
		Tools: ToolsConfig{
			CommandTimeout:   DefaultCommandTimeout,
			MaxReadSize:      DefaultMaxReadSize,
			MaxSearchResults: DefaultMaxSearchResults,
			MaxListResults:   DefaultMaxListResults,
		},
		Context: ContextConfig{
			TokenBudget:      DefaultTokenBudget,
			MaxRelevantFiles: DefaultMaxRelevantFiles,
		},
		Agent: AgentConfig{
			MaxIterations: DefaultMaxIterations,
		},
		Session: SessionConfig{
			Persist: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			ToFile: true,
		},
	}
}
