package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	sokoban "github.com/SeamusWaldron/sokodle"
	"github.com/SeamusWaldron/sokodle/internal/storage"
)

var (
	levelName   string
	levelOffset int
	levelLimit  int
)

var levelCmd = &cobra.Command{
	Use:   "level",
	Short: "Manage user-submitted levels",
	Long:  `Commands for importing, listing, showing and validating user-submitted levels.`,
}

var levelImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a level file",
	Long: `Import a level from a JSON (or YAML) file holding a 2D array of cell codes:

  0 = floor, 1 = wall, 2 = box, 3 = goal, 4 = player start

The level must have exactly one player and at least as many boxes as goals.`,
	Args: cobra.ExactArgs(1),
	RunE: runLevelImport,
}

var levelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submitted levels, newest first",
	RunE:  runLevelList,
}

var levelShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a submitted level",
	Args:  cobra.ExactArgs(1),
	RunE:  runLevelShow,
}

var levelValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check that a level file is playable",
	Args:  cobra.ExactArgs(1),
	RunE:  runLevelValidate,
}

func init() {
	rootCmd.AddCommand(levelCmd)

	levelCmd.AddCommand(levelImportCmd)
	levelImportCmd.Flags().StringVar(&levelName, "name", "", "Author name stored with the level")
	levelImportCmd.MarkFlagRequired("name")

	levelCmd.AddCommand(levelListCmd)
	levelListCmd.Flags().IntVar(&levelOffset, "offset", 0, "Number of levels to skip")
	levelListCmd.Flags().IntVar(&levelLimit, "limit", 10, "Maximum number of levels to display")

	levelCmd.AddCommand(levelShowCmd)
	levelCmd.AddCommand(levelValidateCmd)
}

func runLevelImport(cmd *cobra.Command, args []string) error {
	grid, err := readValidGrid(args[0])
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	level, err := storage.NewUserLevelRepository(db).Create(cmd.Context(), levelName, grid, "local")
	if err != nil {
		return err
	}

	fmt.Printf("Imported level %d by %s\n", level.UserLevelID, level.UserName)
	return nil
}

func runLevelList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	levels, err := storage.NewUserLevelRepository(db).List(cmd.Context(), levelOffset, levelLimit)
	if err != nil {
		return err
	}

	if len(levels) == 0 {
		fmt.Println("No levels found")
		return nil
	}

	fmt.Printf("%-6s %-20s %-7s %-5s %s\n", "ID", "Author", "Size", "Boxes", "Uploaded")
	fmt.Println("------------------------------------------------------------")
	for _, l := range levels {
		size := fmt.Sprintf("%dx%d", l.Layout.Cols(), l.Layout.Rows())
		fmt.Printf("%-6d %-20s %-7s %-5d %s\n",
			l.UserLevelID,
			truncate(l.UserName, 20),
			size,
			l.Layout.Count(sokoban.Box),
			l.UploadedAt.Local().Format(time.DateTime),
		)
	}

	return nil
}

func runLevelShow(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("Level %d by %s\n", level.UserLevelID, level.UserName)
	fmt.Printf("Uploaded: %s\n\n", level.UploadedAt.Local().Format(time.DateTime))
	fmt.Print(sokoban.NewGame(level.Layout).String())
	return nil
}

func runLevelValidate(cmd *cobra.Command, args []string) error {
	grid, err := readValidGrid(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s is a valid level (%dx%d, %d boxes, %d goals)\n",
		args[0], grid.Cols(), grid.Rows(), grid.Count(sokoban.Box), grid.Count(sokoban.Goal))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
