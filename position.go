package sokoban

import (
	"fmt"
	"strings"
)

// Position is a grid coordinate. X is the column and Y the row, with the
// origin in the top-left corner.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position one step away in direction d.
func (p Position) Add(d Direction) Position {
	return Position{X: p.X + d.DX, Y: p.Y + d.DY}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is a unit step along one axis.
type Direction struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// The four cardinal directions.
var (
	Up    = Direction{DX: 0, DY: -1}
	Down  = Direction{DX: 0, DY: 1}
	Left  = Direction{DX: -1, DY: 0}
	Right = Direction{DX: 1, DY: 0}
)

// Directions lists the cardinal directions in Up, Down, Left, Right order.
var Directions = []Direction{Up, Down, Left, Right}

// Valid reports whether d has exactly one non-zero component of magnitude 1.
func (d Direction) Valid() bool {
	return abs(d.DX)+abs(d.DY) == 1
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return Direction{DX: -d.DX, DY: -d.DY}
}

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("(%d,%d)", d.DX, d.DY)
	}
}

// ParseDirection parses a direction name. It accepts the names returned by
// String, arrow key names (ArrowUp, ...) and the WASD keys.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "arrowup", "w":
		return Up, nil
	case "down", "arrowdown", "s":
		return Down, nil
	case "left", "arrowleft", "a":
		return Left, nil
	case "right", "arrowright", "d":
		return Right, nil
	default:
		return Direction{}, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// DirectionBetween returns the direction leading from one position to an
// adjacent one. It is how a tap on a neighbouring cell becomes a move.
// ok is false when the positions are not orthogonally adjacent.
func DirectionBetween(from, to Position) (d Direction, ok bool) {
	d = Direction{DX: to.X - from.X, DY: to.Y - from.Y}
	return d, d.Valid()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
