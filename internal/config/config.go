package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	dirName  = "selfish"
	fileName = "config.yaml"

	// DefaultClaudeBinary is the plugin manager executable looked up on PATH
	DefaultClaudeBinary = "claude"
)

// Config holds user settings from config.yaml and the environment
type Config struct {
	ClaudePath    string `yaml:"claude_path"`
	NoUpdateCheck bool   `yaml:"no_update_check"`
	History       bool   `yaml:"history"`
	LogLevel      string `yaml:"log_level"`
}

// Dir returns the selfish config directory (~/.config/selfish)
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", dirName), nil
}

// Path returns the location of config.yaml
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Default returns the settings used when no file or env overrides exist
func Default() Config {
	return Config{
		ClaudePath: DefaultClaudeBinary,
		LogLevel:   "disabled",
	}
}

// Load reads config.yaml (if present) and applies environment overrides
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit file path
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Nothing to read, defaults apply
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	return finish(cfg), nil
}

// FromEnv returns the defaults with only environment overrides applied. It is
// used when config.yaml can't be read.
func FromEnv() Config {
	return finish(Default())
}

func finish(cfg Config) Config {
	applyEnv(&cfg)

	cfg.ClaudePath = strings.TrimSpace(cfg.ClaudePath)
	if cfg.ClaudePath == "" {
		cfg.ClaudePath = DefaultClaudeBinary
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "disabled"
	}
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SELFISH_CLAUDE_BIN"); v != "" {
		cfg.ClaudePath = v
	}
	if os.Getenv("SELFISH_NO_UPDATE_CHECK") != "" {
		cfg.NoUpdateCheck = true
	}
	if os.Getenv("SELFISH_HISTORY") != "" {
		cfg.History = true
	}
	if v := os.Getenv("SELFISH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
