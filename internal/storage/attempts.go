package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Attempt is one completed play of a daily level.
type Attempt struct {
	AttemptID string
	DailyID   int64
	Moves     int
	TimeMs    int64
	IPAddress string
	CreatedAt time.Time
}

// AttemptStats summarizes the attempts on a daily level.
type AttemptStats struct {
	Count      int
	BestMoves  int
	BestTimeMs int64
	AvgTimeMs  int64
}

// AttemptRepository provides CRUD operations for daily level attempts.
type AttemptRepository struct {
	db *DB
}

// NewAttemptRepository creates a new attempt repository.
func NewAttemptRepository(db *DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Create records a completed attempt. It returns ErrNotFound when the
// daily level does not exist.
func (r *AttemptRepository) Create(ctx context.Context, dailyID int64, moves int, timeMs int64, ip string) (*Attempt, error) {
	if moves < 0 || timeMs < 0 {
		return nil, fmt.Errorf("invalid attempt: moves=%d time_ms=%d", moves, timeMs)
	}

	var exists int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM daily_levels WHERE daily_id = ?", dailyID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check daily level: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("daily level %d: %w", dailyID, ErrNotFound)
	}

	a := &Attempt{
		AttemptID: uuid.New().String(),
		DailyID:   dailyID,
		Moves:     moves,
		TimeMs:    timeMs,
		IPAddress: ip,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO daily_level_attempts (attempt_id, daily_id, moves, time_ms, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.AttemptID, a.DailyID, a.Moves, a.TimeMs, a.IPAddress, a.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	return a, nil
}

// ListByLevel returns the attempts on a daily level, best first (fewest
// moves, then fastest).
func (r *AttemptRepository) ListByLevel(ctx context.Context, dailyID int64, limit int) ([]Attempt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT attempt_id, daily_id, moves, time_ms, ip_address, created_at
		FROM daily_level_attempts
		WHERE daily_id = ?
		ORDER BY moves, time_ms, created_at
		LIMIT ?
	`, dailyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var createdAt string
		if err := rows.Scan(&a.AttemptID, &a.DailyID, &a.Moves, &a.TimeMs, &a.IPAddress, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	return attempts, nil
}

// Stats summarizes the attempts on a daily level. A level with no
// attempts has a zero Count and zero bests.
func (r *AttemptRepository) Stats(ctx context.Context, dailyID int64) (AttemptStats, error) {
	var s AttemptStats
	var bestMoves, bestTime sql.NullInt64
	var avgTime sql.NullFloat64

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(moves), MIN(time_ms), AVG(time_ms)
		FROM daily_level_attempts
		WHERE daily_id = ?
	`, dailyID).Scan(&s.Count, &bestMoves, &bestTime, &avgTime)
	if err != nil {
		return s, fmt.Errorf("failed to get attempt stats: %w", err)
	}

	s.BestMoves = int(bestMoves.Int64)
	s.BestTimeMs = bestTime.Int64
	s.AvgTimeMs = int64(avgTime.Float64)
	return s, nil
}
