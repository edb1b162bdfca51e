package sokoban

import (
	"slices"
	"time"
)

// Frame is one entry of the undo history: where the player and every box
// stood after a committed move.
type Frame struct {
	Player Position   `json:"player"`
	Boxes  []Position `json:"boxes"`
}

func (f Frame) clone() Frame {
	return Frame{Player: f.Player, Boxes: slices.Clone(f.Boxes)}
}

// Game is the mutable state of one play session of one level.
//
// Boxes keep their index for the whole session; a push only changes
// coordinates. The history holds one frame per committed move plus the
// initial frame, and history[Step()] always matches the current board.
//
// A Game is not safe for concurrent use. Callers serialize input the way a
// UI event loop does.
type Game struct {
	cfg   *config
	grid  Grid
	scene *Scene

	player  Position
	boxes   []Position
	history []Frame
	step    int
	phase   Phase

	startedAt time.Time
	wonAt     time.Time
	score     *Score
}

// NewGame loads grid and returns a game in PhaseNotPlaying.
func NewGame(grid Grid, opts ...Option) *Game {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	grid = grid.Clone()
	scene, boxes, start := LoadScene(grid)
	if boxes == nil {
		boxes = []Position{}
	}

	return &Game{
		cfg:     cfg,
		grid:    grid,
		scene:   scene,
		player:  start,
		boxes:   boxes,
		history: []Frame{{Player: start, Boxes: boxes}},
		phase:   PhaseNotPlaying,
	}
}

// Move attempts to step the player in direction d, pushing the chain of
// boxes in front of it if there is one. It reports whether the move was
// committed. Rejected moves leave the game untouched.
func (g *Game) Move(d Direction) bool {
	if g.phase == PhaseWon || !d.Valid() {
		return false
	}

	target := g.player.Add(d)
	if g.scene.Blocked(target) {
		return false
	}

	boxes := g.boxes
	if g.boxAt(target) >= 0 {
		chain := g.chain(target, d)

		// The cell past the last box must be free
		landing := g.boxes[chain[len(chain)-1]].Add(d)
		if g.scene.Blocked(landing) || g.occupiedOutside(landing, chain) {
			return false
		}

		// Farthest box first so no box lands on a chain box that has not
		// moved yet.
		boxes = slices.Clone(g.boxes)
		for i := len(chain) - 1; i >= 0; i-- {
			idx := chain[i]
			boxes[idx] = boxes[idx].Add(d)
		}
	}

	g.commit(target, boxes)
	return true
}

// Undo steps back one move and discards the undone frame. There is no
// redo. Undo is ignored before the first move, after a win, and at the
// initial frame; it reports whether anything changed.
func (g *Game) Undo() bool {
	if g.phase != PhasePlaying || g.step == 0 {
		return false
	}

	g.step--
	prev := g.history[g.step]
	g.player = prev.Player
	g.boxes = prev.Boxes
	g.history = g.history[:g.step+1]
	return true
}

// commit records a legal move. Any frames past the current step are
// dropped before the new frame is appended.
func (g *Game) commit(player Position, boxes []Position) {
	if g.phase == PhaseNotPlaying {
		g.startedAt = g.cfg.clock()
		g.setPhase(PhasePlaying)
	}

	g.history = append(g.history[:g.step+1], Frame{Player: player, Boxes: boxes})
	g.step++
	g.player = player
	g.boxes = boxes

	if g.scene.Covered(g.boxes) {
		g.win()
	}
}

func (g *Game) win() {
	g.wonAt = g.cfg.clock()
	g.score = &Score{
		Elapsed: g.wonAt.Sub(g.startedAt),
		Moves:   g.step,
	}
	g.setPhase(PhaseWon)

	if g.cfg.onWin != nil {
		g.cfg.onWin(*g.score)
	}
}

func (g *Game) setPhase(p Phase) {
	from := g.phase
	g.phase = p
	if g.cfg.onPhase != nil && from != p {
		g.cfg.onPhase(from, p)
	}
}

// chain collects the indices of consecutive boxes starting at start and
// running along d, nearest to the player first.
func (g *Game) chain(start Position, d Direction) []int {
	var chain []int
	for p := start; ; p = p.Add(d) {
		idx := g.boxAt(p)
		if idx < 0 {
			return chain
		}
		chain = append(chain, idx)
	}
}

// boxAt returns the index of the box at p, or -1.
func (g *Game) boxAt(p Position) int {
	return slices.Index(g.boxes, p)
}

// occupiedOutside reports whether a box that is not part of chain sits at p.
func (g *Game) occupiedOutside(p Position, chain []int) bool {
	for i, b := range g.boxes {
		if b == p && !slices.Contains(chain, i) {
			return true
		}
	}
	return false
}

// Scene returns the static layout of the level.
func (g *Game) Scene() *Scene {
	return g.scene
}

// Grid returns a copy of the level grid the game was built from.
func (g *Game) Grid() Grid {
	return g.grid.Clone()
}

// Player returns the current player position.
func (g *Game) Player() Position {
	return g.player
}

// Boxes returns the current box positions, indexed by box identity.
func (g *Game) Boxes() []Position {
	return slices.Clone(g.boxes)
}

// Phase returns the current phase.
func (g *Game) Phase() Phase {
	return g.phase
}

// Step returns the index of the current frame in the history.
func (g *Game) Step() int {
	return g.step
}

// Moves returns the number of committed moves still on the history.
func (g *Game) Moves() int {
	return g.step
}

// History returns a copy of the undo history, initial frame first.
func (g *Game) History() []Frame {
	history := make([]Frame, len(g.history))
	for i, f := range g.history {
		history[i] = f.clone()
	}
	return history
}

// IsWon returns true once the level is solved.
func (g *Game) IsWon() bool {
	return g.phase == PhaseWon
}

// Score returns the final score. ok is false until the level is solved.
func (g *Game) Score() (s Score, ok bool) {
	if g.score == nil {
		return Score{}, false
	}
	return *g.score, true
}

// Elapsed returns the play time so far: zero before the first move, the
// running time while playing, and the final time once won.
func (g *Game) Elapsed() time.Duration {
	switch g.phase {
	case PhasePlaying:
		return g.cfg.clock().Sub(g.startedAt)
	case PhaseWon:
		return g.score.Elapsed
	default:
		return 0
	}
}

// GoalsCovered returns how many goals hold a box and how many goals there
// are.
func (g *Game) GoalsCovered() (covered, total int) {
	return g.scene.CoveredCount(g.boxes), len(g.scene.goals)
}
