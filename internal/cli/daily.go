package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	sokoban "github.com/SeamusWaldron/sokodle"
	"github.com/SeamusWaldron/sokodle/internal/storage"
)

var dailyDate string

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Manage the daily level schedule",
	Long:  `Commands for scheduling and inspecting the one-level-per-day puzzle.`,
}

var dailySetCmd = &cobra.Command{
	Use:   "set <file>",
	Short: "Schedule a level for a date",
	Args:  cobra.ExactArgs(1),
	RunE:  runDailySet,
}

var dailyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the level scheduled for a date",
	RunE:  runDailyShow,
}

var dailyImportCmd = &cobra.Command{
	Use:   "import <schedule.yaml>",
	Short: "Schedule many levels from a YAML file",
	Long: `Schedule levels from a YAML list. Either every level is stored or none are.

  - date: "2026-10-18"
    layout:
      - [1, 1, 1, 1, 1]
      - [1, 4, 2, 3, 1]
      - [1, 1, 1, 1, 1]`,
	Args: cobra.ExactArgs(1),
	RunE: runDailyImport,
}

func init() {
	rootCmd.AddCommand(dailyCmd)

	dailyCmd.AddCommand(dailySetCmd)
	dailySetCmd.Flags().StringVar(&dailyDate, "date", "", "Level date, YYYY-MM-DD (default: today)")

	dailyCmd.AddCommand(dailyShowCmd)
	dailyShowCmd.Flags().StringVar(&dailyDate, "date", "", "Level date, YYYY-MM-DD (default: today)")

	dailyCmd.AddCommand(dailyImportCmd)
}

func dateOrToday() string {
	if dailyDate != "" {
		return dailyDate
	}
	return today()
}

func runDailySet(cmd *cobra.Command, args []string) error {
	grid, err := readValidGrid(args[0])
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	level, err := storage.NewDailyLevelRepository(db).Create(cmd.Context(), dateOrToday(), grid)
	if err != nil {
		return err
	}

	fmt.Printf("Scheduled daily level %d for %s\n", level.DailyID, level.DateOfLevel)
	return nil
}

func runDailyShow(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := storage.NewDailyLevelRepository(db)
	date := dateOrToday()
	level, err := repo.GetByDate(cmd.Context(), date)
	if err != nil {
		return err
	}
	if level == nil {
		return fmt.Errorf("no level scheduled for %s", date)
	}

	number, err := repo.Number(cmd.Context(), level)
	if err != nil {
		return err
	}
	stats, err := storage.NewAttemptRepository(db).Stats(cmd.Context(), level.DailyID)
	if err != nil {
		return err
	}

	fmt.Printf("Sokodle #%d (%s), id %d\n\n", number, level.DateOfLevel, level.DailyID)
	fmt.Print(sokoban.NewGame(level.Layout).String())
	fmt.Println()
	printStats(stats)
	return nil
}

func runDailyImport(cmd *cobra.Command, args []string) error {
	schedule, err := readSchedule(args[0])
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	levels, err := storage.NewDailyLevelRepository(db).CreateBatch(cmd.Context(), schedule)
	if err != nil {
		return err
	}

	for _, l := range levels {
		fmt.Printf("Scheduled daily level %d for %s\n", l.DailyID, l.DateOfLevel)
	}
	logger.Info("schedule imported", "file", args[0], "levels", len(levels))
	return nil
}
