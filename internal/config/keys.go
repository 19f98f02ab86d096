package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoAPIKey means neither the environment nor the config file carries a key.
var ErrNoAPIKey = errors.New("no Anthropic API key configured")

// GetAPIKey resolves the Anthropic API key, preferring ANTHROPIC_API_KEY in
// the environment over the config file.
func GetAPIKey(cfg *Config) (string, error) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key, nil
	}
	if key := configFileKey(cfg); key != "" {
		return key, nil
	}
	return "", ErrNoAPIKey
}

// configFileKey returns the config file's key with env references expanded,
// or empty when the reference did not resolve.
func configFileKey(cfg *Config) string {
	if cfg == nil || cfg.Anthropic.APIKey == "" {
		return ""
	}
	key := os.ExpandEnv(cfg.Anthropic.APIKey)
	if key == "" || strings.HasPrefix(key, "${") {
		return ""
	}
	return key
}

// ValidateAPIKey checks the shape of a key without calling Anthropic.
// Real keys carry the sk-ant- prefix and are well past 20 bytes.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("key does not look like an Anthropic key: want sk-ant- prefix")
	}
	if len(key) < 20 {
		return fmt.Errorf("key looks truncated at %d characters", len(key))
	}
	return nil
}

// MaskAPIKey renders a key for display: the sk-ant- prefix plus the last
// four characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 15 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// KeySource says where GetAPIKey found the key.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

// GetAPIKeySource reports which source GetAPIKey would use.
func GetAPIKeySource(cfg *Config) KeySource {
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		return KeySourceEnv
	}
	if configFileKey(cfg) != "" {
		return KeySourceConfig
	}
	return KeySourceNone
}
