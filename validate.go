package sokoban

import (
	"errors"
	"fmt"
)

// ValidateGrid checks that grid is a playable level, the way the level
// editor does before a level can be played or submitted:
//
//   - the grid is non-empty and rectangular, with known cell codes
//   - there is exactly one player cell
//   - there are at least as many boxes as goals
//
// All problems are reported together (see Problems).
func ValidateGrid(grid Grid) error {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return ErrEmptyGrid
	}

	var errs []error
	width := len(grid[0])
	players, boxes, goals := 0, 0, 0

	for y, row := range grid {
		if len(row) != width {
			errs = append(errs, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidGrid, y, len(row), width))
		}
		for x, cell := range row {
			switch cell {
			case Player:
				players++
			case Box:
				boxes++
			case Goal:
				goals++
			case Floor, Wall:
			default:
				errs = append(errs, fmt.Errorf("%w: %d at (%d,%d)", ErrInvalidCell, int(cell), x, y))
			}
		}
	}

	if players != 1 {
		errs = append(errs, fmt.Errorf("%w: found %d", ErrPlayerCount, players))
	}
	if boxes < goals {
		errs = append(errs, fmt.Errorf("%w: %d boxes, %d goals", ErrNotEnoughBoxes, boxes, goals))
	}

	return errors.Join(errs...)
}

// Problems flattens an error returned by ValidateGrid into one message per
// problem. It returns nil for a nil error.
func Problems(err error) []string {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []string{err.Error()}
	}
	var msgs []string
	for _, e := range joined.Unwrap() {
		msgs = append(msgs, Problems(e)...)
	}
	return msgs
}
