package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load loads configuration from file and environment variables.
// Precedence: defaults < config file < .env < process environment.
// path overrides the default config file location; an explicitly given
// file must exist, the default one is optional.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if configPath := getConfigPath(); configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	// A project-local .env is loaded without overriding existing env vars.
	_ = godotenv.Load()

	loadFromEnv(cfg)

	return cfg, nil
}

// ConfigDir returns the directory holding config.yaml and the log file.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "coda"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "coda"), nil
}

func getConfigPath() string {
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.API.GeminiKey = v
	}
	if v := os.Getenv("CODA_PROVIDER"); v != "" {
		cfg.API.ActiveProvider = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.API.OllamaBaseURL = v
	}
	if v := os.Getenv("CODA_MODEL"); v != "" {
		cfg.Model.Name = v
	}
	if v := os.Getenv("CODA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
