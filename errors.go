package sokoban

import "errors"

// Sentinel errors for the sokoban package.
var (
	// Grid errors
	ErrInvalidGrid    = errors.New("sokoban: invalid grid")
	ErrEmptyGrid      = errors.New("sokoban: grid has no cells")
	ErrInvalidCell    = errors.New("sokoban: unknown cell code")
	ErrPlayerCount    = errors.New("sokoban: level must have exactly one player")
	ErrNotEnoughBoxes = errors.New("sokoban: level has fewer boxes than goals")

	// Input errors
	ErrInvalidDirection = errors.New("sokoban: invalid direction")

	// State errors
	ErrCorruptSnapshot = errors.New("sokoban: corrupt snapshot")
)
