package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/soireekit/soiree/internal/config"
	"github.com/soireekit/soiree/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved menus",
	Long: `Browse the menus saved from past planning sessions.

Examples:
  soiree history            # List saved menus
  soiree history show <id>  # Print one menu as YAML
  soiree history rm <id>    # Delete a saved menu`,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved menu as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a saved menu",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRm,
}

func init() {
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRmCmd)
}

// openStore opens the configured history database.
func openStore() (*history.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	dbPath := cfg.History.DBPath
	if dbPath == "" {
		dbPath = config.DefaultHistoryDBPath()
	}
	store, err := history.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrating history: %w", err)
	}
	return store, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	menus, err := store.List()
	if err != nil {
		return err
	}
	if len(menus) == 0 {
		fmt.Println("No saved menus yet. Plan one with: soiree")
		return nil
	}

	idStyle := color.New(color.FgCyan)
	dateStyle := color.New(color.Faint)
	for _, m := range menus {
		fmt.Printf("%s  %s\n", idStyle.Sprint(m.ID), dateStyle.Sprint(m.CreatedAt.Local().Format("2006-01-02 15:04")))
		fmt.Printf("    %s with %s, %s, %s\n",
			m.Beverage.Name, m.Starter.Name, m.MainCourse.Name, m.FinalCourse.Name)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	menu, err := store.Get(args[0])
	if err != nil {
		return err
	}
	out, err := history.ExportYAML(menu)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func runHistoryRm(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
