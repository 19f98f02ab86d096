package main

import (
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/soireekit/soiree/internal/api"
	"github.com/soireekit/soiree/internal/config"
	"github.com/soireekit/soiree/internal/expert"
	"github.com/soireekit/soiree/internal/history"
	"github.com/soireekit/soiree/internal/planner"
	"github.com/soireekit/soiree/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "soiree",
	Short: "Dinner menu planner driven by expert personas",
	Long: `Soiree plans a complete dinner menu around a beverage you name.

A sommelier persona analyzes your beverage, a chef persona suggests
courses that pair with it, and you pick one course at a time: main
course, then starter, then final course. Once the menu is complete the
sommelier delivers a harmony analysis of the whole meal.

With no arguments, launches the interactive planner.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlanner()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// runPlanner wires the full planning stack and hands it to the TUI.
func runPlanner() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if !cfg.AWS.Enabled {
		if _, err := config.GetAPIKey(cfg); err != nil {
			return fmt.Errorf("%w\n\nSet it with:\n  export ANTHROPIC_API_KEY=your-key-here\nor run: soiree init", err)
		}
	}

	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.AWS.Enabled,
		AWSRegion:     cfg.AWS.Region,
		AWSProfile:    cfg.AWS.Profile,
	})
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	registry, err := expert.NewRegistry()
	if err != nil {
		return fmt.Errorf("loading personas: %w", err)
	}
	if cfg.Personas.OverridePath != "" {
		if err := registry.LoadOverrides(cfg.Personas.OverridePath); err != nil {
			return err
		}
		if err := registry.Watch(); err != nil {
			return err
		}
		defer registry.Close()
	}

	crew := expert.NewCrew(api.NewRunner(client), registry)
	crew.SetTemperature(cfg.Crew.Temperature)
	gateway := expert.NewGateway(crew, cfg.Crew.Timeout)
	cache := expert.NewCache(gateway, cfg.Crew.CacheTTL)

	builder := planner.NewRequestBuilder(planner.CrewMode(cfg.Crew.Mode))
	session := planner.NewSession(builder, cache)

	dbPath := cfg.History.DBPath
	if dbPath == "" {
		dbPath = config.DefaultHistoryDBPath()
	}
	store, err := history.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrating history: %w", err)
	}

	app := tui.NewPlannerApp(session, store.Save, client.Tracker().Cost)
	program := tui.NewPlannerProgram(app)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running planner: %w", err)
	}
	return nil
}
