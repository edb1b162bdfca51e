// Package sokoban implements the move-resolution engine behind Sokodle, a
// daily Sokoban puzzle game.
//
// # Features
//
//   - Level grids in the persisted integer encoding (0 floor, 1 wall, 2 box,
//     3 goal, 4 player start)
//   - Move legality and box-chain pushing
//   - Linear undo history
//   - Win detection with a single, final score record
//   - Phase-change and win callbacks for timers and scoring
//
// # Quick Start
//
//	grid, err := sokoban.ParseGrid([]byte(`[[1,1,1,1],[1,4,2,1],[1,0,3,1],[1,1,1,1]]`))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	game := sokoban.NewGame(grid,
//	    sokoban.WithWinCallback(func(s sokoban.Score) {
//	        fmt.Println("Solved in", s.Moves, "moves")
//	    }),
//	)
//
//	game.Move(sokoban.Down)
//	game.Undo()
//	fmt.Println(game)
//
// # Phases
//
// A game starts in PhaseNotPlaying, enters PhasePlaying on the first
// accepted move and ends in PhaseWon once every goal holds a box. PhaseWon is
// terminal: later moves and undos are ignored. Starting over means building a
// new Game from the same grid.
//
// Rejected moves (into a wall, or pushing a blocked chain) are not errors.
// Move and Undo simply report whether anything changed.
package sokoban
