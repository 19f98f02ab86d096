// Package config handles configuration loading and management for Soiree.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for Soiree.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	AWS       AWSConfig       `mapstructure:"aws"`
	Crew      CrewConfig      `mapstructure:"crew"`
	History   HistoryConfig   `mapstructure:"history"`
	Personas  PersonasConfig  `mapstructure:"personas"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// AWSConfig holds AWS Bedrock settings. Bedrock is used instead of the
// direct API when Enabled is true.
type AWSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`
}

// CrewConfig holds expert crew settings.
type CrewConfig struct {
	// Mode is "paired" (sommelier analysis feeds the chef) or "solo".
	Mode string `mapstructure:"mode"`
	// Temperature is passed to every persona call. Zero uses the API default.
	Temperature float64 `mapstructure:"temperature"`
	// Timeout bounds a single expert consultation.
	Timeout time.Duration `mapstructure:"timeout"`
	// CacheTTL is how long identical consultations are answered from cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// HistoryConfig holds menu history storage settings.
type HistoryConfig struct {
	// DBPath is the SQLite database file. Empty uses the XDG data dir.
	DBPath string `mapstructure:"db_path"`
}

// PersonasConfig holds expert persona override settings.
type PersonasConfig struct {
	// OverridePath is an optional YAML file that replaces or extends the
	// built-in persona definitions. Changes are picked up live.
	OverridePath string `mapstructure:"override_path"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.soiree.yaml in current directory or parent)
// 3. User config (~/.config/soiree/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Load user config from XDG path
	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.SetEnvPrefix("")

	// Map specific environment variables
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("aws.enabled", cfg.AWS.Enabled)
	v.Set("aws.region", cfg.AWS.Region)
	v.Set("aws.profile", cfg.AWS.Profile)
	v.Set("crew.mode", cfg.Crew.Mode)
	v.Set("crew.temperature", cfg.Crew.Temperature)
	v.Set("crew.timeout", cfg.Crew.Timeout.String())
	v.Set("crew.cache_ttl", cfg.Crew.CacheTTL.String())
	v.Set("history.db_path", cfg.History.DBPath)
	v.Set("personas.override_path", cfg.Personas.OverridePath)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// DefaultHistoryDBPath returns the default SQLite location under the XDG
// data directory.
func DefaultHistoryDBPath() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "soiree", "history.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".local", "share", "soiree", "history.db")
	}
	return filepath.Join(home, ".local", "share", "soiree", "history.db")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	// Anthropic defaults
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")

	// AWS defaults
	v.SetDefault("aws.enabled", false)
	v.SetDefault("aws.region", "")
	v.SetDefault("aws.profile", "")

	// Crew defaults
	v.SetDefault("crew.mode", "paired")
	v.SetDefault("crew.temperature", 0.7)
	v.SetDefault("crew.timeout", "5m")
	v.SetDefault("crew.cache_ttl", "1h")

	// Storage defaults
	v.SetDefault("history.db_path", "")
	v.SetDefault("personas.override_path", "")
}

// getUserConfigDir returns the XDG config directory for Soiree.
func getUserConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "soiree")
	}

	// Fall back to ~/.config/soiree
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "soiree")
	}
	return filepath.Join(home, ".config", "soiree")
}

// findProjectConfig searches for .soiree.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".soiree.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			APIKey: "",
			Model:  "",
		},
		Crew: CrewConfig{
			Mode:        "paired",
			Temperature: 0.7,
			Timeout:     5 * time.Minute,
			CacheTTL:    time.Hour,
		},
	}
}
