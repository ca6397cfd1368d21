// Package config loads and manages daybook configuration.
// Configuration source priority (highest to lowest):
// 1. Environment variables (DAYBOOK_PROVIDER, LLM_API_KEY, LLM_BASE_URL, etc.)
// 2. Config file path specified via --config flag
// 3. ~/.config/daybook/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PersonaConfig names the two sides of the journal.
type PersonaConfig struct {
	// AssistantName is how the assistant refers to itself. Default "Daybook".
	AssistantName string `yaml:"assistant_name"`

	// UserName, when set, lets the assistant address the user by name.
	UserName string `yaml:"user_name"`
}

// SummaryConfig tunes history compaction.
type SummaryConfig struct {
	// Trigger is the count of unsummarized messages that starts a
	// summarization pass. Default 20.
	Trigger int `yaml:"trigger"`

	// KeepRecent is how many recent messages each pass leaves uncovered.
	// Default 6.
	KeepRecent int `yaml:"keep_recent"`
}

// Config is the complete configuration structure for daybook.
type Config struct {
	// Provider selects the model backend: "openai" (any OpenAI-compatible
	// server, including Ollama and LM Studio) or "anthropic".
	Provider string `yaml:"provider"`

	// Model overrides the provider's default model.
	Model string `yaml:"model"`

	// BaseURL points the openai provider at a server. Default is a local
	// Ollama instance.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the provider. Local servers ignore it.
	APIKey string `yaml:"api_key"`

	// DBPath overrides the journal database location.
	// Empty = ~/.local/share/daybook/journal.db.
	DBPath string `yaml:"db_path"`

	// MaxContextBytes caps the composed model input. 0 = default 32768,
	// -1 = no cap.
	MaxContextBytes int `yaml:"max_context_bytes"`

	// MaxTokens caps each assistant reply. 0 = default 1024.
	MaxTokens int `yaml:"max_tokens"`

	// LogLevel: "debug" | "info" | "warn" | "error". Default "warn" so the
	// chat surface stays quiet.
	LogLevel string `yaml:"log_level"`

	Persona PersonaConfig `yaml:"persona"`
	Summary SummaryConfig `yaml:"summary"`
}

// DefaultConfig returns the default configuration: a local Ollama server and
// a quiet log level.
func DefaultConfig() *Config {
	return &Config{
		Provider: "openai",
		BaseURL:  "http://localhost:11434/v1",
		Model:    "llama3",
		LogLevel: "warn",
		Persona: PersonaConfig{
			AssistantName: "Daybook",
		},
		Summary: SummaryConfig{
			Trigger:    20,
			KeepRecent: 6,
		},
	}
}

// DefaultPath returns ~/.config/daybook/config.yaml, or empty when the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "daybook", "config.yaml")
}

// Load reads the config file and merges environment variable overrides.
// A .env file in the working directory is loaded first so keys kept there
// flow through the same override path.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if configPath == "" {
		configPath = DefaultPath()
	}

	// Read config file (use defaults if not found)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Summary.Trigger <= 0 {
		cfg.Summary.Trigger = 20
	}
	if cfg.Summary.KeepRecent <= 0 {
		cfg.Summary.KeepRecent = 6
	}
	if cfg.Persona.AssistantName == "" {
		cfg.Persona.AssistantName = "Daybook"
	}

	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
// Written 0600 since the file may hold an API key.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return fmt.Errorf("cannot determine config path")
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DAYBOOK_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("DAYBOOK_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("DAYBOOK_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DAYBOOK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	// Generic overrides shared with other LLM tooling
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Model = v
	}

	// Anthropic-specific
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && cfg.Provider == "anthropic" {
		cfg.APIKey = v
	}
}
