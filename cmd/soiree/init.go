package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/soireekit/soiree/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up Soiree configuration",
	Long: `Set up everything Soiree needs to run:
  - Verifies the Anthropic API key is available
  - Creates the user config file with defaults
  - Creates the menu history directory

Examples:
  soiree init           # Set up with defaults
  soiree init --force   # Rewrite the config file even if it exists`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Rewrite the config file even if it exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	fmt.Println("Setting up Soiree...")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// API key check
	switch config.GetAPIKeySource(cfg) {
	case config.KeySourceEnv:
		printStatus("✓", "ANTHROPIC_API_KEY is set", color.FgGreen)
		warnBadKeyFormat(cfg)
	case config.KeySourceConfig:
		printStatus("✓", "API key found in config file", color.FgGreen)
		warnBadKeyFormat(cfg)
	default:
		if cfg.AWS.Enabled {
			printStatus("✓", "AWS Bedrock enabled, no API key needed", color.FgGreen)
		} else {
			printStatus("⚠", "ANTHROPIC_API_KEY not set (you can set it later)", color.FgYellow)
		}
	}

	// Config file
	configPath := config.GetUserConfigPath()
	if _, err := os.Stat(configPath); err == nil && !initForce {
		printStatus("✓", fmt.Sprintf("Config file exists: %s", configPath), color.FgGreen)
	} else {
		if err := config.Save(config.Default()); err != nil {
			printStatus("✗", "Could not write config file", color.FgRed)
			return err
		}
		printStatus("✓", fmt.Sprintf("Wrote config file: %s", configPath), color.FgGreen)
	}

	// History directory
	dbPath := cfg.History.DBPath
	if dbPath == "" {
		dbPath = config.DefaultHistoryDBPath()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		printStatus("✗", "Could not create history directory", color.FgRed)
		return err
	}
	printStatus("✓", fmt.Sprintf("History location: %s", dbPath), color.FgGreen)

	fmt.Printf("\n%s Soiree is ready!\n\n", color.GreenString("✓"))
	fmt.Println("Next steps:")
	if config.GetAPIKeySource(cfg) == config.KeySourceNone && !cfg.AWS.Enabled {
		fmt.Println("  1. Set your API key:")
		fmt.Println("     export ANTHROPIC_API_KEY=your-key-here")
		fmt.Println()
	}
	fmt.Println("  2. Plan a dinner:")
	fmt.Println("     soiree")
	fmt.Println()
	fmt.Println("  3. Learn more:")
	fmt.Println("     soiree --help")

	return nil
}

// warnBadKeyFormat flags a configured key that Anthropic will reject anyway.
func warnBadKeyFormat(cfg *config.Config) {
	key, err := config.GetAPIKey(cfg)
	if err != nil {
		return
	}
	if err := config.ValidateAPIKey(key); err != nil {
		printStatus("⚠", fmt.Sprintf("API key may be invalid: %v", err), color.FgYellow)
	}
}

// printStatus prints a status line with color.
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}
