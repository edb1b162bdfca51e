package sokoban

import (
	"fmt"
	"strings"
	"time"
)

// Score is the final, immutable result of a solved game.
type Score struct {
	Elapsed time.Duration // From the first accepted move to the winning move
	Moves   int           // Committed moves on the history when the level was won
}

// TimeMs returns the elapsed time in whole milliseconds.
func (s Score) TimeMs() int64 {
	return s.Elapsed.Milliseconds()
}

// FormatTime returns the elapsed time as m:ss.
func (s Score) FormatTime() string {
	secs := int(s.Elapsed / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// ShareText returns the text players paste to share a result. levelNumber
// is the daily level number, or 0 for other levels; url is omitted when
// empty.
//
//	Sokodle #12 📦
//	Time: 1:05
//	Moves: 37
func (s Score) ShareText(levelNumber int, url string) string {
	var b strings.Builder

	if levelNumber > 0 {
		fmt.Fprintf(&b, "Sokodle #%d 📦\n", levelNumber)
	} else {
		b.WriteString("Sokoban 📦\n")
	}
	fmt.Fprintf(&b, "Time: %s\n", s.FormatTime())
	fmt.Fprintf(&b, "Moves: %d", s.Moves)

	if url != "" {
		fmt.Fprintf(&b, "\n\n📦 Play at: %s", url)
	}
	return b.String()
}
