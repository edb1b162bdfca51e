package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	sokoban "github.com/SeamusWaldron/sokodle"
	"github.com/SeamusWaldron/sokodle/internal/storage"
)

func openDB() (*storage.DB, error) {
	path := getDBPath()
	var db *storage.DB
	var err error

	if path == "" {
		db, err = storage.OpenDefault()
	} else {
		db, err = storage.Open(path)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	mins := int(d.Minutes())
	secs := d.Seconds() - float64(mins*60)
	return fmt.Sprintf("%dm%.1fs", mins, secs)
}

// readGrid loads a level layout from a JSON file, or a YAML file when the
// extension is .yaml or .yml. It does not validate the level.
func readGrid(path string) (sokoban.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var grid sokoban.Grid
		if err := yaml.Unmarshal(data, &grid); err != nil {
			return nil, fmt.Errorf("%w: %v", sokoban.ErrInvalidGrid, err)
		}
		return grid, nil
	default:
		return sokoban.ParseGrid(data)
	}
}

// readValidGrid loads a level and rejects unplayable ones, listing every
// problem found.
func readValidGrid(path string) (sokoban.Grid, error) {
	grid, err := readGrid(path)
	if err != nil {
		return nil, err
	}
	if err := sokoban.ValidateGrid(grid); err != nil {
		return nil, fmt.Errorf("invalid level %s:\n  - %s", path, strings.Join(sokoban.Problems(err), "\n  - "))
	}
	return grid, nil
}

// readSchedule loads a YAML list of {date, layout} entries.
func readSchedule(path string) ([]storage.ScheduledLevel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule: %w", err)
	}

	var schedule []storage.ScheduledLevel
	if err := yaml.Unmarshal(data, &schedule); err != nil {
		return nil, fmt.Errorf("failed to parse schedule: %w", err)
	}
	for _, s := range schedule {
		if err := sokoban.ValidateGrid(s.Layout); err != nil {
			return nil, fmt.Errorf("invalid level for %s: %s", s.Date, strings.Join(sokoban.Problems(err), "; "))
		}
	}
	return schedule, nil
}

func today() string {
	return time.Now().Format(storage.DateLayout)
}
