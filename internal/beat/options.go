package beat

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		s.log = l
	}
}

// WithClock replaces time.Now as the scheduler clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithTimer replaces time.AfterFunc for re-arming the check loop.
func WithTimer(after AfterFunc) Option {
	return func(s *Scheduler) {
		s.after = after
	}
}

// WithLookahead sets how far ahead beats are committed.
func WithLookahead(d time.Duration) Option {
	return func(s *Scheduler) {
		s.lookahead = d
	}
}

// WithPollInterval sets the check loop period.
func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.poll = d
	}
}

// WithOnBeat registers a listener called once per committed beat, including
// beats too late to be heard. It runs with the scheduler locked and must not
// block or call back into the scheduler.
func WithOnBeat(fn func(Beat)) Option {
	return func(s *Scheduler) {
		s.onBeat = fn
	}
}
