package sokoban

import "fmt"

// Phase is the lifecycle of a play session. Phases only move forward, so
// they can be compared with < and >.
type Phase int

const (
	// PhaseNotPlaying is the initial phase, before any accepted move.
	PhaseNotPlaying Phase = iota

	// PhasePlaying starts with the first accepted move. Undo is only
	// allowed in this phase.
	PhasePlaying

	// PhaseWon is entered when every goal holds a box. It is terminal.
	PhaseWon
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseNotPlaying:
		return "notPlaying"
	case PhasePlaying:
		return "playing"
	case PhaseWon:
		return "won"
	default:
		return "unknown"
	}
}

// DisplayName returns a human-readable name for the phase.
func (p Phase) DisplayName() string {
	switch p {
	case PhaseNotPlaying:
		return "Not Started"
	case PhasePlaying:
		return "Playing"
	case PhaseWon:
		return "Solved"
	default:
		return "Unknown"
	}
}

// IsComplete returns true if the level is solved.
func (p Phase) IsComplete() bool {
	return p == PhaseWon
}

// MarshalText encodes the phase as its wire name.
func (p Phase) MarshalText() ([]byte, error) {
	if p < PhaseNotPlaying || p > PhaseWon {
		return nil, fmt.Errorf("sokoban: unknown phase %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a wire name produced by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "notPlaying":
		*p = PhaseNotPlaying
	case "playing":
		*p = PhasePlaying
	case "won":
		*p = PhaseWon
	default:
		return fmt.Errorf("sokoban: unknown phase %q", string(text))
	}
	return nil
}
