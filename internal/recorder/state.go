package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SeamusWaldron/sokodle/internal/session"
)

// AppState represents the persistent state of the terminal player.
type AppState struct {
	// ActivePlay is the unfinished game left when the player quit.
	ActivePlay *session.State `json:"active_play,omitempty"`
	// LastDailyDate is the date of the last daily level played.
	LastDailyDate string `json:"last_daily_date,omitempty"`
}

// StateFile manages the application state file.
type StateFile struct {
	path  string
	state AppState
}

// DefaultStatePath returns the default state file path.
func DefaultStatePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, ".sokodle")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(dir, "state.json"), nil
}

// NewStateFile creates a new state file manager.
func NewStateFile(path string) (*StateFile, error) {
	sf := &StateFile{path: path}

	// Try to load existing state
	if err := sf.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return sf, nil
}

// NewDefaultStateFile creates a state file manager with the default path.
func NewDefaultStateFile() (*StateFile, error) {
	path, err := DefaultStatePath()
	if err != nil {
		return nil, err
	}
	return NewStateFile(path)
}

// Load loads the state from disk.
func (sf *StateFile) Load() error {
	data, err := os.ReadFile(sf.path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, &sf.state); err != nil {
		return fmt.Errorf("failed to parse state file: %w", err)
	}
	return nil
}

// Save saves the state to disk.
func (sf *StateFile) Save() error {
	data, err := json.MarshalIndent(sf.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(sf.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// State returns the current state.
func (sf *StateFile) State() AppState {
	return sf.state
}

// SetActivePlay stores an unfinished game.
func (sf *StateFile) SetActivePlay(state *session.State) error {
	sf.state.ActivePlay = state
	return sf.Save()
}

// ClearActivePlay forgets the unfinished game.
func (sf *StateFile) ClearActivePlay() error {
	sf.state.ActivePlay = nil
	return sf.Save()
}

// ActivePlay returns the unfinished game, or nil.
func (sf *StateFile) ActivePlay() *session.State {
	return sf.state.ActivePlay
}

// SetLastDailyDate records the date of the daily level last played.
func (sf *StateFile) SetLastDailyDate(date string) error {
	sf.state.LastDailyDate = date
	return sf.Save()
}
