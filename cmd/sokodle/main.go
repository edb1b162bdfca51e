// Sokodle - daily Sokoban puzzles in the terminal and over HTTP.
package main

import (
	"github.com/SeamusWaldron/sokodle/internal/cli"
)

func main() {
	cli.Execute()
}
