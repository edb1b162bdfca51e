package sokoban

import "time"

// Option configures Game behavior.
type Option func(*config)

type config struct {
	clock   func() time.Time
	onPhase func(from, to Phase)
	onWin   func(Score)
}

func defaultConfig() *config {
	return &config{
		clock: time.Now,
	}
}

// WithClock sets the time source used to time a session. The default is
// time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithPhaseCallback sets a callback fired on every phase transition:
// NotPlaying to Playing on the first accepted move, and Playing to Won when
// the level is solved.
func WithPhaseCallback(cb func(from, to Phase)) Option {
	return func(c *config) {
		c.onPhase = cb
	}
}

// WithWinCallback sets a callback that receives the final score. It fires
// once per game, right after the Playing to Won phase callback.
func WithWinCallback(cb func(Score)) Option {
	return func(c *config) {
		c.onWin = cb
	}
}
