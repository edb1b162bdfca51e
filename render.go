package sokoban

import "strings"

// Board symbols used by String. They follow the common Sokoban text
// notation.
const (
	SymbolWall         = '#'
	SymbolFloor        = ' '
	SymbolGoal         = '.'
	SymbolBox          = '$'
	SymbolBoxOnGoal    = '*'
	SymbolPlayer       = '@'
	SymbolPlayerOnGoal = '+'
)

// Symbol returns the board symbol for position p in the current state.
func (g *Game) Symbol(p Position) rune {
	goal := g.scene.IsGoal(p)
	switch {
	case g.scene.IsWall(p):
		return SymbolWall
	case p == g.player:
		if goal {
			return SymbolPlayerOnGoal
		}
		return SymbolPlayer
	case g.boxAt(p) >= 0:
		if goal {
			return SymbolBoxOnGoal
		}
		return SymbolBox
	case goal:
		return SymbolGoal
	default:
		return SymbolFloor
	}
}

// String returns the board as text, one line per row.
func (g *Game) String() string {
	var b strings.Builder
	for y := 0; y < g.scene.Rows(); y++ {
		for x := 0; x < g.scene.Cols(); x++ {
			b.WriteRune(g.Symbol(Position{X: x, Y: y}))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
