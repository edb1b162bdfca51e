// Package recorder manages play sessions: one game of one level, with the
// score recorded when a daily level is solved.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	sokoban "github.com/SeamusWaldron/sokodle"
	"github.com/SeamusWaldron/sokodle/internal/logging"
	"github.com/SeamusWaldron/sokodle/internal/metrics"
	"github.com/SeamusWaldron/sokodle/internal/session"
	"github.com/SeamusWaldron/sokodle/internal/storage"
)

// AttemptRecorder stores the score of a solved daily level.
// *storage.AttemptRepository satisfies it.
type AttemptRecorder interface {
	Create(ctx context.Context, dailyID int64, moves int, timeMs int64, ip string) (*storage.Attempt, error)
}

// Option configures a Session.
type Option func(*Session)

// WithAttempts records daily-level wins with r.
func WithAttempts(r AttemptRecorder) Option {
	return func(s *Session) {
		s.attempts = r
	}
}

// WithMetrics reports moves, undos and wins to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithClientIP sets the address stored with a recorded attempt.
func WithClientIP(ip string) Option {
	return func(s *Session) {
		s.clientIP = ip
	}
}

// WithClock sets the game clock.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.clock = now
	}
}

// Session manages one play of one level.
type Session struct {
	mu sync.Mutex

	id        string
	level     session.LevelRef
	grid      sokoban.Grid
	game      *sokoban.Game
	createdAt time.Time

	// won is set by the engine's win callback and consumed after the move
	// that caused it.
	won      *sokoban.Score
	recorded bool

	attempts AttemptRecorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	clientIP string
	clock    func() time.Time

	onPhase func(from, to sokoban.Phase)
}

func newSession(opts []Option) *Session {
	s := &Session{
		logger:   logging.NewNop(),
		clientIP: "0.0.0.0",
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New starts a session on grid.
func New(level session.LevelRef, grid sokoban.Grid, opts ...Option) *Session {
	s := newSession(opts)
	s.id = uuid.New().String()
	s.level = level
	s.grid = grid.Clone()
	s.createdAt = s.clock().UTC()
	s.game = sokoban.NewGame(s.grid, s.gameOptions()...)
	return s
}

// Resume rebuilds a session from stored state.
func Resume(state *session.State, opts ...Option) (*Session, error) {
	s := newSession(opts)
	game, err := sokoban.Restore(state.Grid, state.Snapshot, s.gameOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", state.ID, err)
	}

	s.id = state.ID
	s.level = state.Level
	s.grid = state.Grid.Clone()
	s.game = game
	s.recorded = state.Recorded
	s.createdAt = state.CreatedAt
	return s, nil
}

func (s *Session) gameOptions() []sokoban.Option {
	return []sokoban.Option{
		sokoban.WithClock(s.clock),
		sokoban.WithPhaseCallback(s.handlePhase),
		sokoban.WithWinCallback(func(score sokoban.Score) {
			s.won = &score
		}),
	}
}

func (s *Session) handlePhase(from, to sokoban.Phase) {
	s.logger.Debug("phase changed", "session", s.id, "from", from, "to", to)
	if s.metrics != nil && from == sokoban.PhaseNotPlaying && to == sokoban.PhasePlaying {
		s.metrics.GameStarted()
	}
	if s.onPhase != nil {
		s.onPhase(from, to)
	}
}

// SetPhaseCallback sets the callback for phase changes.
func (s *Session) SetPhaseCallback(cb func(from, to sokoban.Phase)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPhase = cb
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Level returns the level being played.
func (s *Session) Level() session.LevelRef {
	return s.level
}

// Game returns the underlying game. Callers must not move it directly or
// wins will not be recorded.
func (s *Session) Game() *sokoban.Game {
	return s.game
}

// Recorded reports whether the win has been stored.
func (s *Session) Recorded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorded
}

// Move applies a move and, if it solves the level, records the score.
// A recording failure is returned with accepted still true: the move
// stands either way.
func (s *Session) Move(ctx context.Context, d sokoban.Direction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accepted := s.game.Move(d)
	if s.metrics != nil {
		s.metrics.Move(accepted)
	}
	if !accepted {
		return false, nil
	}

	if s.won == nil {
		return true, nil
	}
	score := *s.won
	s.won = nil
	return true, s.finish(ctx, score)
}

// Undo reverts the last move.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := s.game.Undo()
	if s.metrics != nil {
		s.metrics.Undo(applied)
	}
	return applied
}

// Restart replaces the game with a fresh one on the same level. The new
// game may record its own score.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.metrics != nil && s.game.Phase() == sokoban.PhasePlaying {
		s.metrics.GameEnded()
	}
	s.game = sokoban.NewGame(s.grid, s.gameOptions()...)
	s.won = nil
	s.recorded = false
}

// Close marks an unfinished game as abandoned.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.metrics != nil && s.game.Phase() == sokoban.PhasePlaying {
		s.metrics.GameEnded()
	}
}

func (s *Session) finish(ctx context.Context, score sokoban.Score) error {
	s.logger.Info("level solved",
		"session", s.id,
		"level_kind", s.level.Kind,
		"level_id", s.level.ID,
		"moves", score.Moves,
		"time_ms", score.TimeMs(),
	)
	if s.metrics != nil {
		s.metrics.GameEnded()
		s.metrics.Win(s.level.Kind, score.Moves)
	}

	if s.level.Kind != session.KindDaily || s.attempts == nil || s.recorded {
		return nil
	}

	attempt, err := s.attempts.Create(ctx, s.level.ID, score.Moves, score.TimeMs(), s.clientIP)
	if err != nil {
		s.logger.Error("failed to record attempt", "session", s.id, "error", err)
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	s.recorded = true
	s.logger.Info("attempt recorded", "session", s.id, "attempt", attempt.AttemptID)
	return nil
}

// State returns the session in its storable form.
func (s *Session) State() *session.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &session.State{
		ID:        s.id,
		Level:     s.level,
		Grid:      s.grid.Clone(),
		Snapshot:  s.game.Snapshot(),
		Recorded:  s.recorded,
		CreatedAt: s.createdAt,
		UpdatedAt: s.clock().UTC(),
	}
}
