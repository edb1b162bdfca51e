package sokoban

import (
	"fmt"
	"time"
)

// Snapshot is the serializable state of a Game. Together with the level
// grid it is enough to rebuild the game with Restore.
type Snapshot struct {
	History   []Frame    `json:"history"`
	Step      int        `json:"step"`
	Phase     Phase      `json:"phase"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	WonAt     *time.Time `json:"won_at,omitempty"`
}

// Snapshot captures the current state of the game.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		History: g.History(),
		Step:    g.step,
		Phase:   g.phase,
	}
	if g.phase >= PhasePlaying {
		started := g.startedAt
		s.StartedAt = &started
	}
	if g.phase == PhaseWon {
		won := g.wonAt
		s.WonAt = &won
	}
	return s
}

// Restore rebuilds a game from its grid and a snapshot taken with
// Game.Snapshot. Callbacks in opts only fire for transitions after the
// restore.
//
// Restore returns ErrCorruptSnapshot when the snapshot breaks a game
// invariant: the step outside the history, a frame that does not start
// from the grid, a box count that changed, two boxes on one cell, a box or
// the player on a wall, or a phase that does not match the board.
func Restore(grid Grid, snap Snapshot, opts ...Option) (*Game, error) {
	g := NewGame(grid, opts...)

	if len(snap.History) == 0 {
		return nil, fmt.Errorf("%w: empty history", ErrCorruptSnapshot)
	}
	if snap.Step < 0 || snap.Step >= len(snap.History) {
		return nil, fmt.Errorf("%w: step %d outside history of %d", ErrCorruptSnapshot, snap.Step, len(snap.History))
	}
	if !sameFrame(snap.History[0], g.history[0]) {
		return nil, fmt.Errorf("%w: first frame does not match the level", ErrCorruptSnapshot)
	}

	history := make([]Frame, len(snap.History))
	for i, f := range snap.History {
		if i == 0 {
			history[i] = f.clone()
			continue
		}
		if err := g.checkFrame(f); err != nil {
			return nil, fmt.Errorf("%w: frame %d: %v", ErrCorruptSnapshot, i, err)
		}
		history[i] = f.clone()
	}

	current := history[snap.Step]
	covered := g.scene.Covered(current.Boxes)

	switch snap.Phase {
	case PhaseNotPlaying:
		if snap.Step != 0 {
			return nil, fmt.Errorf("%w: moves recorded before play started", ErrCorruptSnapshot)
		}
	case PhasePlaying:
		if snap.StartedAt == nil {
			return nil, fmt.Errorf("%w: playing without a start time", ErrCorruptSnapshot)
		}
		if covered && snap.Step > 0 {
			return nil, fmt.Errorf("%w: solved board still marked playing", ErrCorruptSnapshot)
		}
		g.startedAt = *snap.StartedAt
	case PhaseWon:
		if snap.StartedAt == nil || snap.WonAt == nil {
			return nil, fmt.Errorf("%w: won without timestamps", ErrCorruptSnapshot)
		}
		if !covered {
			return nil, fmt.Errorf("%w: won with uncovered goals", ErrCorruptSnapshot)
		}
		g.startedAt = *snap.StartedAt
		g.wonAt = *snap.WonAt
		g.score = &Score{Elapsed: g.wonAt.Sub(g.startedAt), Moves: snap.Step}
	default:
		return nil, fmt.Errorf("%w: unknown phase %d", ErrCorruptSnapshot, int(snap.Phase))
	}

	g.history = history
	g.step = snap.Step
	g.phase = snap.Phase
	g.player = current.Player
	g.boxes = current.Boxes
	return g, nil
}

func (g *Game) checkFrame(f Frame) error {
	if len(f.Boxes) != len(g.history[0].Boxes) {
		return fmt.Errorf("%d boxes, want %d", len(f.Boxes), len(g.history[0].Boxes))
	}
	if g.scene.Blocked(f.Player) {
		return fmt.Errorf("player on blocked cell %s", f.Player)
	}

	seen := make(map[Position]struct{}, len(f.Boxes))
	for _, b := range f.Boxes {
		if g.scene.Blocked(b) {
			return fmt.Errorf("box on blocked cell %s", b)
		}
		if _, dup := seen[b]; dup {
			return fmt.Errorf("two boxes at %s", b)
		}
		if b == f.Player {
			return fmt.Errorf("player and box share %s", b)
		}
		seen[b] = struct{}{}
	}
	return nil
}

func sameFrame(a, b Frame) bool {
	if a.Player != b.Player || len(a.Boxes) != len(b.Boxes) {
		return false
	}
	for i := range a.Boxes {
		if a.Boxes[i] != b.Boxes[i] {
			return false
		}
	}
	return true
}
