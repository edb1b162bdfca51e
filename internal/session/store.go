// Package session persists in-progress games for the HTTP server so a
// play can span many requests.
package session

import (
	"context"
	"errors"
	"time"

	sokoban "github.com/SeamusWaldron/sokodle"
)

// ErrNotFound is returned by Load for an unknown or expired session.
var ErrNotFound = errors.New("session: not found")

// Level kinds a session can be playing.
const (
	KindDaily  = "daily"
	KindUser   = "user"
	KindCustom = "custom"
)

// LevelRef identifies the level a session plays. ID is zero for custom
// layouts.
type LevelRef struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id,omitempty"`
}

// State is everything needed to rebuild a game: the level and the engine
// snapshot.
type State struct {
	ID        string           `json:"id"`
	Level     LevelRef         `json:"level"`
	Grid      sokoban.Grid     `json:"grid"`
	Snapshot  sokoban.Snapshot `json:"snapshot"`
	Recorded  bool             `json:"recorded,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Store saves and loads session state.
type Store interface {
	Save(ctx context.Context, state *State) error
	Load(ctx context.Context, id string) (*State, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}
