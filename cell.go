package sokoban

import (
	"encoding/json"
	"fmt"
)

// Cell is the integer tag stored for each grid position.
type Cell int

const (
	Floor  Cell = 0
	Wall   Cell = 1
	Box    Cell = 2
	Goal   Cell = 3
	Player Cell = 4 // Player start
)

// Valid reports whether c is one of the known cell codes.
func (c Cell) Valid() bool {
	return c >= Floor && c <= Player
}

func (c Cell) String() string {
	switch c {
	case Floor:
		return "floor"
	case Wall:
		return "wall"
	case Box:
		return "box"
	case Goal:
		return "goal"
	case Player:
		return "player"
	default:
		return "unknown"
	}
}

// Grid is a level layout: a row-major 2D array of cell codes. Its JSON form
// is the array of small integers used to store and share levels.
type Grid [][]Cell

// ParseGrid decodes the JSON form of a level. It only checks that the
// input is an array of integer arrays; use ValidateGrid to check that the
// level is playable.
func ParseGrid(data []byte) (Grid, error) {
	var g Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGrid, err)
	}
	if g == nil {
		return nil, fmt.Errorf("%w: null layout", ErrInvalidGrid)
	}
	return g, nil
}

// GridFromInts converts a plain integer layout into a Grid.
func GridFromInts(rows [][]int) Grid {
	g := make(Grid, len(rows))
	for y, row := range rows {
		g[y] = make([]Cell, len(row))
		for x, v := range row {
			g[y][x] = Cell(v)
		}
	}
	return g
}

// Rows returns the number of rows.
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the width of the widest row.
func (g Grid) Cols() int {
	cols := 0
	for _, row := range g {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	clone := make(Grid, len(g))
	for y, row := range g {
		clone[y] = append([]Cell(nil), row...)
	}
	return clone
}

// Count returns how many cells hold code c.
func (g Grid) Count(c Cell) int {
	n := 0
	for _, row := range g {
		for _, cell := range row {
			if cell == c {
				n++
			}
		}
	}
	return n
}
