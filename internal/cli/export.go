package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	sokoban "github.com/SeamusWaldron/sokodle"
	"github.com/SeamusWaldron/sokodle/internal/storage"
)

var (
	exportFormat string
	exportOutput string
	exportLimit  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export level data",
	Long:  `Export levels and the daily schedule in various formats.`,
}

var exportScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Export the daily schedule as YAML",
	Long: `Export the most recent daily levels as a YAML schedule that
'sokodle daily import' reads back.

Examples:
  sokodle export schedule
  sokodle export schedule --limit 30 -o schedule.yaml`,
	RunE: runExportSchedule,
}

var exportLevelCmd = &cobra.Command{
	Use:   "level <id>",
	Short: "Export a user-submitted level",
	Long: `Export a user-submitted level as its JSON layout or as a text board.

Examples:
  sokodle export level 12
  sokodle export level 12 --format txt -o level.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runExportLevel,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.AddCommand(exportScheduleCmd)
	exportScheduleCmd.Flags().IntVar(&exportLimit, "limit", 365, "Maximum number of days to export")
	exportScheduleCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")

	exportCmd.AddCommand(exportLevelCmd)
	exportLevelCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format (json, txt)")
	exportLevelCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
}

func runExportSchedule(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	levels, err := storage.NewDailyLevelRepository(db).List(cmd.Context(), exportLimit)
	if err != nil {
		return err
	}

	// Oldest first, the order a schedule is written in
	schedule := make([]storage.ScheduledLevel, 0, len(levels))
	for i := len(levels) - 1; i >= 0; i-- {
		schedule = append(schedule, storage.ScheduledLevel{Date: levels[i].DateOfLevel, Layout: levels[i].Layout})
	}

	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(schedule); err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}

	return writeOutput(b.String(), fmt.Sprintf("%d daily levels", len(schedule)))
}

func runExportLevel(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid level id %q", args[0])
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	level, err := storage.NewUserLevelRepository(db).Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	if level == nil {
		return fmt.Errorf("level %d not found", id)
	}

	var output string
	switch exportFormat {
	case "json":
		data, err := json.Marshal(level.Layout)
		if err != nil {
			return fmt.Errorf("failed to marshal layout: %w", err)
		}
		output = string(data) + "\n"
	case "txt", "text":
		output = sokoban.NewGame(level.Layout).String()
	default:
		return fmt.Errorf("unknown format: %s (use txt or json)", exportFormat)
	}

	return writeOutput(output, fmt.Sprintf("level %d", id))
}

// writeOutput prints to stdout, or to the --output file.
func writeOutput(output, what string) error {
	if exportOutput == "" {
		fmt.Print(output)
		return nil
	}

	// Ensure directory exists
	dir := filepath.Dir(exportOutput)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(exportOutput, []byte(output), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	fmt.Printf("Exported %s to %s\n", what, exportOutput)
	return nil
}
