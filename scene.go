package sokoban

// Scene is the static part of a level: walls, goals and dimensions. It is
// derived once when a level loads and never changes during play.
type Scene struct {
	rows   int
	cols   int
	widths []int // cells per row; rows may be ragged

	walls map[Position]struct{}
	goals map[Position]struct{}

	// Row-major copies for rendering and iteration
	wallList []Position
	goalList []Position
}

// LoadScene scans every cell of grid once, in row-major order. It returns
// the scene, the initial box positions and the player start.
//
// The order of the returned boxes defines box identity for the session.
// The player start is the first player cell found; a grid without one
// starts the player at (0,0). LoadScene never rejects a grid: checking that
// a level is playable is ValidateGrid's job.
func LoadScene(grid Grid) (*Scene, []Position, Position) {
	s := &Scene{
		rows:   grid.Rows(),
		cols:   grid.Cols(),
		widths: make([]int, len(grid)),
		walls:  make(map[Position]struct{}),
		goals:  make(map[Position]struct{}),
	}

	var boxes []Position
	start := Position{}
	foundPlayer := false

	for y, row := range grid {
		s.widths[y] = len(row)
		for x, cell := range row {
			p := Position{X: x, Y: y}
			switch cell {
			case Wall:
				s.walls[p] = struct{}{}
				s.wallList = append(s.wallList, p)
			case Goal:
				s.goals[p] = struct{}{}
				s.goalList = append(s.goalList, p)
			case Box:
				boxes = append(boxes, p)
			case Player:
				if !foundPlayer {
					start = p
					foundPlayer = true
				}
			}
		}
	}

	return s, boxes, start
}

// Rows returns the number of grid rows.
func (s *Scene) Rows() int { return s.rows }

// Cols returns the width of the widest grid row.
func (s *Scene) Cols() int { return s.cols }

// IsWall reports whether p is a wall cell.
func (s *Scene) IsWall(p Position) bool {
	_, ok := s.walls[p]
	return ok
}

// IsGoal reports whether p is a goal cell.
func (s *Scene) IsGoal(p Position) bool {
	_, ok := s.goals[p]
	return ok
}

// InBounds reports whether p lies on the grid.
func (s *Scene) InBounds(p Position) bool {
	return p.Y >= 0 && p.Y < s.rows && p.X >= 0 && p.X < s.widths[p.Y]
}

// Blocked reports whether nothing may ever stand on p: a wall, or a cell
// off the grid.
func (s *Scene) Blocked(p Position) bool {
	return s.IsWall(p) || !s.InBounds(p)
}

// Walls returns the wall positions in row-major order.
func (s *Scene) Walls() []Position {
	return append([]Position(nil), s.wallList...)
}

// Goals returns the goal positions in row-major order.
func (s *Scene) Goals() []Position {
	return append([]Position(nil), s.goalList...)
}

// Covered reports whether every goal holds a box. Extra boxes off the goals
// do not matter.
func (s *Scene) Covered(boxes []Position) bool {
	return s.CoveredCount(boxes) == len(s.goals)
}

// CoveredCount returns how many goals currently hold a box.
func (s *Scene) CoveredCount(boxes []Position) int {
	n := 0
	seen := make(map[Position]struct{}, len(boxes))
	for _, b := range boxes {
		if _, dup := seen[b]; dup {
			continue
		}
		seen[b] = struct{}{}
		if s.IsGoal(b) {
			n++
		}
	}
	return n
}
