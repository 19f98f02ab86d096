package config

import (
	"errors"
	"testing"
)

func TestGetAPIKey(t *testing.T) {
	t.Run("environment wins over config", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-env")

		cfg := &Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-from-file"}}
		key, err := GetAPIKey(cfg)
		if err != nil {
			t.Fatalf("GetAPIKey() error = %v", err)
		}
		if key != "sk-ant-from-env" {
			t.Errorf("GetAPIKey() = %q, want the environment key", key)
		}
	})

	t.Run("config file fallback", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")

		cfg := &Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-from-file"}}
		key, err := GetAPIKey(cfg)
		if err != nil {
			t.Fatalf("GetAPIKey() error = %v", err)
		}
		if key != "sk-ant-from-file" {
			t.Errorf("GetAPIKey() = %q, want the config key", key)
		}
	})

	t.Run("unresolved reference is no key", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")

		cfg := &Config{Anthropic: AnthropicConfig{APIKey: "${SOIREE_ABSENT_KEY}"}}
		if _, err := GetAPIKey(cfg); !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("GetAPIKey() error = %v, want ErrNoAPIKey", err)
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")

		if _, err := GetAPIKey(&Config{}); !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("GetAPIKey() error = %v, want ErrNoAPIKey", err)
		}
	})
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"plausible key", "sk-ant-REDACTED", false},
		{"empty", "", true},
		{"wrong prefix", "sk-openai-12345678901234567890", true},
		{"truncated", "sk-ant-abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAPIKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"full key", "sk-ant-REDACTED", "sk-ant-...wxyz"},
		{"empty", "", "(not set)"},
		{"too short to mask", "short", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskAPIKey(tt.key); got != tt.want {
				t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestGetAPIKeySource(t *testing.T) {
	t.Run("environment", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant-anything")

		if got := GetAPIKeySource(&Config{}); got != KeySourceEnv {
			t.Errorf("GetAPIKeySource() = %v, want KeySourceEnv", got)
		}
	})

	t.Run("config file", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")

		cfg := &Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-from-file"}}
		if got := GetAPIKeySource(cfg); got != KeySourceConfig {
			t.Errorf("GetAPIKeySource() = %v, want KeySourceConfig", got)
		}
	})

	t.Run("none", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")

		if got := GetAPIKeySource(&Config{}); got != KeySourceNone {
			t.Errorf("GetAPIKeySource() = %v, want KeySourceNone", got)
		}
	})
}
