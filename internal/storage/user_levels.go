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

// UserLevel is a level uploaded by a player.
type UserLevel struct {
	UserLevelID int64
	UserName    string
	Layout      sokoban.Grid
	IPAddress   string
	UploadedAt  time.Time
}

// UserLevelRepository provides CRUD operations for user-submitted levels.
type UserLevelRepository struct {
	db *DB
}

// NewUserLevelRepository creates a new user level repository.
func NewUserLevelRepository(db *DB) *UserLevelRepository {
	return &UserLevelRepository{db: db}
}

// Create stores a submitted level. The layout is expected to have passed
// sokoban.ValidateGrid.
func (r *UserLevelRepository) Create(ctx context.Context, userName string, layout sokoban.Grid, ip string) (*UserLevel, error) {
	data, err := json.Marshal(layout)
	if err != nil {
		return nil, fmt.Errorf("failed to encode layout: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO user_submitted_levels (user_name, layout, ip_address, uploaded_at)
		VALUES (?, ?, ?, ?)
	`, userName, string(data), ip, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to create user level: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user level id: %w", err)
	}

	return &UserLevel{
		UserLevelID: id,
		UserName:    userName,
		Layout:      layout.Clone(),
		IPAddress:   ip,
		UploadedAt:  now,
	}, nil
}

// Get retrieves a user level by id. It returns nil if there is none.
func (r *UserLevelRepository) Get(ctx context.Context, id int64) (*UserLevel, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_level_id, user_name, layout, ip_address, uploaded_at
		FROM user_submitted_levels WHERE user_level_id = ?
	`, id)

	level, err := scanUserLevel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return level, err
}

// List returns a page of user levels, newest first.
func (r *UserLevelRepository) List(ctx context.Context, offset, limit int) ([]UserLevel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_level_id, user_name, layout, ip_address, uploaded_at
		FROM user_submitted_levels
		ORDER BY uploaded_at DESC, user_level_id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list user levels: %w", err)
	}
	defer rows.Close()

	var levels []UserLevel
	for rows.Next() {
		level, err := scanUserLevel(rows)
		if err != nil {
			return nil, err
		}
		levels = append(levels, *level)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list user levels: %w", err)
	}

	return levels, nil
}

func scanUserLevel(s scanner) (*UserLevel, error) {
	var level UserLevel
	var layout, uploadedAt string
	err := s.Scan(&level.UserLevelID, &level.UserName, &layout, &level.IPAddress, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user level: %w", err)
	}

	level.Layout, err = sokoban.ParseGrid([]byte(layout))
	if err != nil {
		return nil, fmt.Errorf("user level %d: %w", level.UserLevelID, err)
	}
	level.UploadedAt, _ = time.Parse(time.RFC3339, uploadedAt)

	return &level, nil
}

// Count returns the number of submitted levels.
func (r *UserLevelRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_submitted_levels").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count user levels: %w", err)
	}
	return n, nil
}
