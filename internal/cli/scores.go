package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/sokodle/internal/storage"
)

var (
	scoresLevel int64
	scoresLimit int
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the best attempts on a daily level",
	Long:  `Display the best recorded attempts on a daily level, fewest moves first, with summary statistics.`,
	RunE:  runScores,
}

func init() {
	rootCmd.AddCommand(scoresCmd)
	scoresCmd.Flags().Int64Var(&scoresLevel, "level", 0, "Daily level id")
	scoresCmd.Flags().IntVar(&scoresLimit, "limit", 20, "Maximum number of attempts to display")
	scoresCmd.MarkFlagRequired("level")
}

func runScores(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	level, err := storage.NewDailyLevelRepository(db).Get(cmd.Context(), scoresLevel)
	if err != nil {
		return err
	}
	if level == nil {
		return fmt.Errorf("daily level %d not found", scoresLevel)
	}

	repo := storage.NewAttemptRepository(db)
	stats, err := repo.Stats(cmd.Context(), level.DailyID)
	if err != nil {
		return err
	}
	attempts, err := repo.ListByLevel(cmd.Context(), level.DailyID, scoresLimit)
	if err != nil {
		return err
	}

	fmt.Printf("Daily level %d (%s)\n\n", level.DailyID, level.DateOfLevel)
	printStats(stats)
	if len(attempts) == 0 {
		return nil
	}

	fmt.Println()
	fmt.Printf("%-4s %-6s %-10s %s\n", "#", "Moves", "Time", "When")
	fmt.Println("--------------------------------------------")
	for i, a := range attempts {
		fmt.Printf("%-4d %-6d %-10s %s\n",
			i+1,
			a.Moves,
			formatDuration(time.Duration(a.TimeMs)*time.Millisecond),
			a.CreatedAt.Local().Format(time.DateTime),
		)
	}
	return nil
}

func printStats(stats storage.AttemptStats) {
	if stats.Count == 0 {
		fmt.Println("No attempts yet")
		return
	}
	fmt.Printf("Attempts:   %d\n", stats.Count)
	fmt.Printf("Best moves: %d\n", stats.BestMoves)
	fmt.Printf("Best time:  %s\n", formatDuration(time.Duration(stats.BestTimeMs)*time.Millisecond))
	fmt.Printf("Avg time:   %s\n", formatDuration(time.Duration(stats.AvgTimeMs)*time.Millisecond))
}
