package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/sokodle/internal/recorder"
	"github.com/SeamusWaldron/sokodle/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and database information",
	Long:  `Display the active configuration, the database path and contents, today's level, and any unfinished game.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	fmt.Println("Sokodle Status")
	fmt.Println("==============")
	fmt.Println()

	fmt.Printf("Log level: %s\n", cfg.LogLevel)
	fmt.Printf("Server:    %s\n", cfg.Server.Addr)
	if cfg.Session.RedisAddr != "" {
		fmt.Printf("Sessions:  redis at %s (ttl %s)\n", cfg.Session.RedisAddr, cfg.Session.TTL)
	} else {
		fmt.Println("Sessions:  in memory")
	}
	fmt.Println()

	// Database info
	path := getDBPath()
	if path == "" {
		defaultPath, _ := storage.DefaultDBPath()
		path = defaultPath
	}
	fmt.Printf("Database: %s\n", path)

	db, err := openDB()
	if err != nil {
		fmt.Printf("  unavailable: %v\n", err)
	} else {
		defer db.Close()

		version, _ := db.CurrentVersion()
		fmt.Printf("Schema version: %d\n", version)

		dailyRepo := storage.NewDailyLevelRepository(db)
		if n, err := dailyRepo.Count(ctx); err == nil {
			fmt.Printf("Daily levels: %d\n", n)
		}
		if n, err := storage.NewUserLevelRepository(db).Count(ctx); err == nil {
			fmt.Printf("User levels:  %d\n", n)
		}

		if level, err := dailyRepo.GetByDate(ctx, today()); err == nil && level != nil {
			fmt.Printf("Today's level: id %d\n", level.DailyID)
		} else {
			fmt.Println("No level scheduled for today")
		}
	}

	fmt.Println()

	// Unfinished game
	stateFile, err := recorder.NewDefaultStateFile()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	if play := stateFile.ActivePlay(); play != nil {
		fmt.Printf("Unfinished game: %s level", play.Level.Kind)
		if play.Level.ID != 0 {
			fmt.Printf(" %d", play.Level.ID)
		}
		fmt.Printf(", %d moves\n", play.Snapshot.Step)
		fmt.Println("  (Use 'sokodle play --resume' to continue)")
	} else {
		fmt.Println("No unfinished game")
	}

	return nil
}
