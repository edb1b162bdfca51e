package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	sokoban "github.com/SeamusWaldron/sokodle"
	"github.com/SeamusWaldron/sokodle/internal/recorder"
	"github.com/SeamusWaldron/sokodle/internal/session"
)

func newTestModel() *playModel {
	grid := sokoban.GridFromInts([][]int{
		{1, 1, 1, 1, 1, 1},
		{1, 4, 0, 2, 3, 1},
		{1, 1, 1, 1, 1, 1},
	})
	sess := recorder.New(session.LevelRef{Kind: session.KindCustom}, grid)
	return newPlayModel(context.Background(), sess, "Test", 7, "")
}

func press(m *playModel, keys ...tea.KeyMsg) {
	for _, k := range keys {
		m.Update(k)
	}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestPlayModelMovesAndUndo(t *testing.T) {
	m := newTestModel()

	press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.sess.Game().Step())
	assert.Equal(t, sokoban.PhasePlaying, m.sess.Game().Phase())

	press(m, runeKey('z'))
	assert.Equal(t, 0, m.sess.Game().Step())

	press(m, runeKey('x'), tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.sess.Game().Step(), "unknown keys and blocked moves change nothing")
}

func TestPlayModelWinShowsShareText(t *testing.T) {
	m := newTestModel()

	press(m, runeKey('d'), runeKey('d'))
	assert.True(t, m.sess.Game().IsWon())

	view := m.View()
	assert.Contains(t, view, "Solved!")
	assert.Contains(t, view, "Sokodle #7")
	assert.Contains(t, view, "Moves: 2")
}

func TestPlayModelRestartAndQuit(t *testing.T) {
	m := newTestModel()

	press(m, runeKey('d'), runeKey('r'))
	assert.Equal(t, sokoban.PhaseNotPlaying, m.sess.Game().Phase())
	assert.True(t, strings.Contains(m.View(), "Make a move"))

	press(m, runeKey('d'))
	_, cmd := m.Update(runeKey('q'))
	assert.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Contains(t, m.View(), "--resume")
}
