package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sokoban "github.com/SeamusWaldron/sokodle"
)

// DateLayout is the format of a daily level's calendar date.
const DateLayout = "2006-01-02"

// DailyLevel is the level scheduled for one calendar day.
type DailyLevel struct {
	DailyID     int64
	DateOfLevel string
	Layout      sokoban.Grid
	CreatedAt   time.Time
}

// ScheduledLevel is one entry of a batch schedule.
type ScheduledLevel struct {
	Date   string       `yaml:"date"`
	Layout sokoban.Grid `yaml:"layout"`
}

// DailyLevelRepository provides CRUD operations for daily levels.
type DailyLevelRepository struct {
	db *DB
}

// NewDailyLevelRepository creates a new daily level repository.
func NewDailyLevelRepository(db *DB) *DailyLevelRepository {
	return &DailyLevelRepository{db: db}
}

// Create schedules a level for the given date (YYYY-MM-DD).
func (r *DailyLevelRepository) Create(ctx context.Context, date string, layout sokoban.Grid) (*DailyLevel, error) {
	var level *DailyLevel
	err := r.db.Transaction(ctx, func(tx *sql.Tx) error {
		var err error
		level, err = insertDailyLevel(ctx, tx, date, layout)
		return err
	})
	if err != nil {
		return nil, err
	}
	return level, nil
}

// CreateBatch schedules several levels at once. Either every level is
// stored or none are.
func (r *DailyLevelRepository) CreateBatch(ctx context.Context, schedule []ScheduledLevel) ([]DailyLevel, error) {
	levels := make([]DailyLevel, 0, len(schedule))
	err := r.db.Transaction(ctx, func(tx *sql.Tx) error {
		for _, s := range schedule {
			level, err := insertDailyLevel(ctx, tx, s.Date, s.Layout)
			if err != nil {
				return err
			}
			levels = append(levels, *level)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return levels, nil
}

func insertDailyLevel(ctx context.Context, tx *sql.Tx, date string, layout sokoban.Grid) (*DailyLevel, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid level date %q: %w", date, err)
	}

	data, err := json.Marshal(layout)
	if err != nil {
		return nil, fmt.Errorf("failed to encode layout: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	result, err := tx.ExecContext(ctx, `
		INSERT INTO daily_levels (date_of_level, layout, created_at)
		VALUES (?, ?, ?)
	`, date, string(data), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to create daily level for %s: %w", date, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get daily level id: %w", err)
	}

	return &DailyLevel{
		DailyID:     id,
		DateOfLevel: date,
		Layout:      layout.Clone(),
		CreatedAt:   now,
	}, nil
}

// GetByDate retrieves the level scheduled for date. It returns nil if no
// level is scheduled.
func (r *DailyLevelRepository) GetByDate(ctx context.Context, date string) (*DailyLevel, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT daily_id, date_of_level, layout, created_at
		FROM daily_levels WHERE date_of_level = ?
	`, date)
	return scanDailyLevel(row)
}

// Get retrieves a daily level by id. It returns nil if there is none.
func (r *DailyLevelRepository) Get(ctx context.Context, dailyID int64) (*DailyLevel, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT daily_id, date_of_level, layout, created_at
		FROM daily_levels WHERE daily_id = ?
	`, dailyID)
	return scanDailyLevel(row)
}

// List returns the most recent daily levels, newest date first.
func (r *DailyLevelRepository) List(ctx context.Context, limit int) ([]DailyLevel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT daily_id, date_of_level, layout, created_at
		FROM daily_levels
		ORDER BY date_of_level DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily levels: %w", err)
	}
	defer rows.Close()

	var levels []DailyLevel
	for rows.Next() {
		level, err := scanDailyLevel(rows)
		if err != nil {
			return nil, err
		}
		levels = append(levels, *level)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list daily levels: %w", err)
	}

	return levels, nil
}

// Number returns the 1-based position of the level in the schedule, used
// as the "Sokodle #N" in share text.
func (r *DailyLevelRepository) Number(ctx context.Context, level *DailyLevel) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM daily_levels WHERE date_of_level <= ?
	`, level.DateOfLevel).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to number daily level: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDailyLevel(s scanner) (*DailyLevel, error) {
	var level DailyLevel
	var layout, createdAt string
	err := s.Scan(&level.DailyID, &level.DateOfLevel, &layout, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan daily level: %w", err)
	}

	level.Layout, err = sokoban.ParseGrid([]byte(layout))
	if err != nil {
		return nil, fmt.Errorf("daily level %d: %w", level.DailyID, err)
	}
	level.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &level, nil
}

// Count returns the number of scheduled daily levels.
func (r *DailyLevelRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM daily_levels").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count daily levels: %w", err)
	}
	return n, nil
}
