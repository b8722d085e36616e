// Package config loads client configuration from a YAML file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported completion providers.
const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration values.
type Config struct {
	// Completion service
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	Endpoint    string  `yaml:"endpoint"`
	OllamaHost  string  `yaml:"ollama_host"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`

	// Local state
	DataDir string `yaml:"data_dir"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`

	// Raw log level name from file/env, parsed into LogLevel.
	LogLevelName string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir := ""
	if dir, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(dir, "parley")
	}

	return Config{
		Provider:    ProviderOpenAI,
		Model:       "gpt-3.5-turbo",
		Endpoint:    "https://api.openai.com/v1/chat/completions",
		OllamaHost:  "http://localhost:11434",
		MaxTokens:   500,
		Temperature: 0.7,
		DataDir:     dataDir,
		LogLevel:    slog.LevelInfo,
	}
}

// Path returns the location of the config file.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, "parley", "config.yaml"), nil
}

// Load reads configuration: built-in defaults, overlaid by the config
// file if present, overlaid by environment variables.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	return loadFrom(path)
}

func loadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// no config file, defaults + env only
	case err != nil:
		return Config{}, fmt.Errorf("read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.LogLevelName != "" {
		cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	}
	if cfg.LogFile == "" && cfg.DataDir != "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "parley.log")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Provider = getEnv("PARLEY_PROVIDER", cfg.Provider)
	cfg.Model = getEnv("PARLEY_MODEL", cfg.Model)
	cfg.APIKey = getEnv("PARLEY_API_KEY", cfg.APIKey)
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.Endpoint = getEnv("PARLEY_ENDPOINT", cfg.Endpoint)
	cfg.OllamaHost = getEnv("OLLAMA_HOST", cfg.OllamaHost)
	cfg.DataDir = getEnv("PARLEY_DATA_DIR", cfg.DataDir)
	cfg.LogFile = getEnv("PARLEY_LOG_FILE", cfg.LogFile)
	cfg.LogLevelName = getEnv("PARLEY_LOG_LEVEL", cfg.LogLevelName)

	if v := os.Getenv("PARLEY_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
}

// Save writes cfg to the config file, creating the directory if needed.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// SlotPath returns the location of the persisted chat slot.
func (c Config) SlotPath() string {
	return filepath.Join(c.DataDir, "chats.json")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
