package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/soireekit/soiree/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify Soiree configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/soiree/config.yaml
Project-specific overrides can be placed in .soiree.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s\n", config.MaskAPIKey(cfg.Anthropic.APIKey))
	fmt.Printf("anthropic.model: %s\n", orUnset(cfg.Anthropic.Model))
	fmt.Printf("aws.enabled: %t\n", cfg.AWS.Enabled)
	fmt.Printf("aws.region: %s\n", orUnset(cfg.AWS.Region))
	fmt.Printf("aws.profile: %s\n", orUnset(cfg.AWS.Profile))
	fmt.Printf("crew.mode: %s\n", cfg.Crew.Mode)
	fmt.Printf("crew.temperature: %g\n", cfg.Crew.Temperature)
	fmt.Printf("crew.timeout: %s\n", cfg.Crew.Timeout)
	fmt.Printf("crew.cache_ttl: %s\n", cfg.Crew.CacheTTL)
	fmt.Printf("history.db_path: %s\n", orUnset(cfg.History.DBPath))
	fmt.Printf("personas.override_path: %s\n", orUnset(cfg.Personas.OverridePath))
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return orUnset(cfg.Anthropic.Model), nil
	case "aws.enabled":
		return strconv.FormatBool(cfg.AWS.Enabled), nil
	case "aws.region":
		return orUnset(cfg.AWS.Region), nil
	case "aws.profile":
		return orUnset(cfg.AWS.Profile), nil
	case "crew.mode":
		return cfg.Crew.Mode, nil
	case "crew.temperature":
		return strconv.FormatFloat(cfg.Crew.Temperature, 'g', -1, 64), nil
	case "crew.timeout":
		return cfg.Crew.Timeout.String(), nil
	case "crew.cache_ttl":
		return cfg.Crew.CacheTTL.String(), nil
	case "history.db_path":
		return orUnset(cfg.History.DBPath), nil
	case "personas.override_path":
		return orUnset(cfg.Personas.OverridePath), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "aws.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for aws.enabled: %w", err)
		}
		cfg.AWS.Enabled = b
	case "aws.region":
		cfg.AWS.Region = value
	case "aws.profile":
		cfg.AWS.Profile = value
	case "crew.mode":
		if value != "paired" && value != "solo" {
			return fmt.Errorf("invalid crew mode %q: want paired or solo", value)
		}
		cfg.Crew.Mode = value
	case "crew.temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for crew.temperature: %w", err)
		}
		cfg.Crew.Temperature = f
	case "crew.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for crew.timeout: %w", err)
		}
		cfg.Crew.Timeout = d
	case "crew.cache_ttl":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for crew.cache_ttl: %w", err)
		}
		cfg.Crew.CacheTTL = d
	case "history.db_path":
		cfg.History.DBPath = value
	case "personas.override_path":
		cfg.Personas.OverridePath = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
