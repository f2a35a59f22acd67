package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv points config discovery at an empty directory so tests never
// pick up the developer's real config or environment.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{"GEMINI_API_KEY", "CODA_PROVIDER", "OLLAMA_HOST", "CODA_MODEL", "CODA_LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.API.GetActiveProvider())
	assert.Equal(t, DefaultModel, cfg.Model.Name)
	assert.Equal(t, DefaultCommandTimeout, cfg.Tools.CommandTimeout)
	assert.Equal(t, DefaultTokenBudget, cfg.Context.TokenBudget)
	assert.Equal(t, DefaultMaxIterations, cfg.Agent.MaxIterations)
	assert.Equal(t, 1, cfg.API.Retry.MaxAttempts)
	assert.True(t, cfg.Session.Persist)
}

func TestLoadExplicitFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  active_provider: ollama
  timeout: 45s
model:
  name: llama3.2
agent:
  max_iterations: 8
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.API.ActiveProvider)
	assert.Equal(t, 45*time.Second, cfg.API.Timeout)
	assert.Equal(t, "llama3.2", cfg.Model.Name)
	assert.Equal(t, 8, cfg.Agent.MaxIterations)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultTokenBudget, cfg.Context.TokenBudget)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	isolateEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDefaultFileOptional(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, cfg.Model.Name)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  name: from-file\n"), 0644))
	t.Setenv("CODA_MODEL", "from-env")
	t.Setenv("GEMINI_API_KEY", "k-123")
	t.Setenv("CODA_PROVIDER", "ollama")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Model.Name)
	assert.Equal(t, "k-123", cfg.API.GeminiKey)
	assert.Equal(t, "ollama", cfg.API.ActiveProvider)
}

func TestValidateGeminiRequiresKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.GeminiKey = ""

	assert.ErrorIs(t, cfg.Validate(), ErrMissingAuth)

	cfg.API.GeminiKey = "k"
	assert.NoError(t, cfg.Validate())
}

func TestValidateOllamaNeedsNoKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.ActiveProvider = "ollama"

	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.ActiveProvider = "openai"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.API.GeminiKey = "k"
	cfg.Agent.MaxIterations = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.API.GeminiKey = "k"
	cfg.Context.TokenBudget = 0
	assert.Error(t, cfg.Validate())
}
