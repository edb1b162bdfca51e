package sokoban

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestLoadSceneBoxedIn(t *testing.T) {
	scene, boxes, start := LoadScene(GridFromInts(boxedIn))

	if start != (Position{X: 1, Y: 1}) {
		t.Errorf("start = %s, want (1,1)", start)
	}
	wantWalls := []Position{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0},
		{X: 0, Y: 1}, {X: 2, Y: 1},
		{X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2},
	}
	if !slices.Equal(scene.Walls(), wantWalls) {
		t.Errorf("walls = %v, want %v", scene.Walls(), wantWalls)
	}
	if len(boxes) != 0 {
		t.Errorf("boxes = %v, want none", boxes)
	}
	if len(scene.Goals()) != 0 {
		t.Errorf("goals = %v, want none", scene.Goals())
	}
	if scene.Rows() != 3 || scene.Cols() != 3 {
		t.Errorf("size = %dx%d, want 3x3", scene.Rows(), scene.Cols())
	}
}

func TestLoadSceneBoxOrderIsRowMajor(t *testing.T) {
	grid := [][]int{
		{0, 0, 2},
		{2, 4, 0},
		{0, 2, 3},
	}
	scene, boxes, _ := LoadScene(GridFromInts(grid))

	want := []Position{{X: 2, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 2}}
	if !slices.Equal(boxes, want) {
		t.Errorf("boxes = %v, want %v", boxes, want)
	}
	if !scene.IsGoal(Position{X: 2, Y: 2}) {
		t.Error("(2,2) should be a goal")
	}
}

func TestLoadScenePlayerDefaults(t *testing.T) {
	_, _, start := LoadScene(GridFromInts([][]int{{0, 0}, {0, 0}}))
	if start != (Position{}) {
		t.Errorf("start without player = %s, want (0,0)", start)
	}

	_, _, start = LoadScene(GridFromInts([][]int{{0, 4}, {4, 0}}))
	if start != (Position{X: 1, Y: 0}) {
		t.Errorf("start with two players = %s, want the first, (1,0)", start)
	}
}

func TestLoadSceneRaggedGrid(t *testing.T) {
	scene, _, _ := LoadScene(GridFromInts([][]int{{4, 0, 0}, {0}}))

	if scene.Cols() != 3 {
		t.Errorf("cols = %d, want 3", scene.Cols())
	}
	if scene.InBounds(Position{X: 1, Y: 1}) {
		t.Error("(1,1) is past the end of a short row")
	}
	if !scene.Blocked(Position{X: 0, Y: 2}) {
		t.Error("cells below the grid should be blocked")
	}
}

func TestCovered(t *testing.T) {
	scene, _, _ := LoadScene(GridFromInts([][]int{{3, 3, 0}}))

	tests := []struct {
		boxes []Position
		want  bool
	}{
		{nil, false},
		{[]Position{{X: 0, Y: 0}}, false},
		{[]Position{{X: 0, Y: 0}, {X: 1, Y: 0}}, true},
		{[]Position{{X: 2, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 0}}, true},
		{[]Position{{X: 0, Y: 0}, {X: 0, Y: 0}}, false},
	}
	for _, tt := range tests {
		if got := scene.Covered(tt.boxes); got != tt.want {
			t.Errorf("Covered(%v) = %v, want %v", tt.boxes, got, tt.want)
		}
	}
}

func TestParseGrid(t *testing.T) {
	g, err := ParseGrid([]byte(`[[1,1,1],[1,4,1],[1,1,1]]`))
	if err != nil {
		t.Fatalf("ParseGrid: %v", err)
	}
	if g.Rows() != 3 || g.Cols() != 3 || g[1][1] != Player {
		t.Errorf("unexpected grid %v", g)
	}

	for _, bad := range []string{`{}`, `[[1,"x"]]`, `null`, `[[1,2]`} {
		if _, err := ParseGrid([]byte(bad)); !errors.Is(err, ErrInvalidGrid) {
			t.Errorf("ParseGrid(%s) err = %v, want ErrInvalidGrid", bad, err)
		}
	}
}

func TestValidateGrid(t *testing.T) {
	if err := ValidateGrid(GridFromInts(openRoom)); err != nil {
		t.Errorf("openRoom should be valid: %v", err)
	}

	tests := []struct {
		name string
		grid [][]int
		want []error
	}{
		{"empty", [][]int{}, []error{ErrEmptyGrid}},
		{"empty row", [][]int{{}}, []error{ErrEmptyGrid}},
		{"no player", [][]int{{0, 2, 3}}, []error{ErrPlayerCount}},
		{"two players", [][]int{{4, 4, 2, 3}}, []error{ErrPlayerCount}},
		{"fewer boxes than goals", [][]int{{4, 2, 3, 3}}, []error{ErrNotEnoughBoxes}},
		{"ragged", [][]int{{4, 0}, {0}}, []error{ErrInvalidGrid}},
		{"unknown code", [][]int{{4, 7}}, []error{ErrInvalidCell}},
		{"several problems", [][]int{{0, 3}, {9}}, []error{ErrInvalidGrid, ErrInvalidCell, ErrPlayerCount, ErrNotEnoughBoxes}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGrid(GridFromInts(tt.grid))
			for _, want := range tt.want {
				if !errors.Is(err, want) {
					t.Errorf("err = %v, want %v", err, want)
				}
			}
			if got := len(Problems(err)); got != len(tt.want) {
				t.Errorf("%d problems, want %d: %v", got, len(tt.want), Problems(err))
			}
		})
	}
}

func TestProblemsMessages(t *testing.T) {
	err := ValidateGrid(GridFromInts([][]int{{4, 4, 3}}))
	problems := Problems(err)
	if len(problems) != 2 {
		t.Fatalf("problems = %v, want 2", problems)
	}
	if !strings.Contains(problems[0], "found 2") {
		t.Errorf("player problem = %q", problems[0])
	}
	if Problems(nil) != nil {
		t.Error("Problems(nil) should be nil")
	}
}
