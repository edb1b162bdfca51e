// Package cli implements the command-line interface for sokodle.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/sokodle/internal/config"
	"github.com/SeamusWaldron/sokodle/internal/logging"
)

const version = "0.1.0"

var (
	// Global flags
	configPath string
	dbPath     string
	verbose    bool

	// Loaded in PersistentPreRunE
	cfg    config.Config
	logger *slog.Logger
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "sokodle",
	Short: "Daily Sokoban puzzles",
	Long: `Sokodle - a daily Sokoban puzzle game.

Play the daily level or a user-submitted level in the terminal, manage the
level schedule, and serve the level API and server-side play sessions.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.sokodle/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file path (default: ~/.sokodle/sokodle.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	path, explicit := configPath, configPath != ""
	if !explicit {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	loaded, err := config.Load(path, explicit)
	if err != nil {
		return err
	}
	cfg = loaded

	// Flags win over file and environment
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger = logging.New(level, cfg.LogFormat)
	return nil
}

// getDBPath returns the database path from flag, config or default.
func getDBPath() string {
	return cfg.DBPath // Empty means default
}
