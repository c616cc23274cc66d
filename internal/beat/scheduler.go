package beat

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type clearer interface {
	Clear()
}

// Scheduler is the look-ahead beat scheduler. It is either stopped or running
// one generation of the check loop; every Start and Stop begins a new
// generation so callbacks armed by an older one exit without emitting.
type Scheduler struct {
	params Params
	pulse  Emitter
	voice  Announcer

	log       *zap.Logger
	now       func() time.Time
	after     AfterFunc
	lookahead time.Duration
	poll      time.Duration
	onBeat    func(Beat)

	mu       sync.Mutex
	gen      uint64
	running  bool
	meter    int
	next     int
	deadline time.Time
	timer    Timer

	current atomic.Int64
}

// NewScheduler creates a stopped scheduler reading live values from params
// and emitting through pulse and voice.
func NewScheduler(params Params, pulse Emitter, voice Announcer, opts ...Option) (*Scheduler, error) {
	if params == nil || pulse == nil || voice == nil {
		return nil, errors.New("beat: params, emitter and announcer are required")
	}
	s := &Scheduler{
		params:    params,
		pulse:     pulse,
		voice:     voice,
		log:       zap.NewNop(),
		now:       time.Now,
		after:     realAfterFunc,
		lookahead: Lookahead,
		poll:      PollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.poll <= 0 {
		return nil, errors.Errorf("beat: poll interval %v must be positive", s.poll)
	}
	if s.lookahead <= s.poll {
		return nil, errors.Errorf("beat: lookahead %v must exceed poll interval %v", s.lookahead, s.poll)
	}
	return s, nil
}

// Start resets the cursor to beat 0 due now and starts the check loop. When
// already running it restarts: pending announcements are dropped and the old
// loop generation is retired.
func (s *Scheduler) Start(meter int) error {
	if meter < 1 {
		return errors.Errorf("beat: invalid meter %d", meter)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.halt()
		s.log.Info("scheduler restarted", zap.Int("meter", meter), zap.Float64("tempo", s.params.Tempo()))
	} else {
		s.gen++
		s.log.Info("scheduler started", zap.Int("meter", meter), zap.Float64("tempo", s.params.Tempo()))
	}

	s.running = true
	s.meter = meter
	s.next = 0
	s.deadline = s.now()
	s.check(s.gen)
	return nil
}

// Stop halts the loop, drops pending announcements and resets the published
// beat index to 0. Stopping a stopped scheduler does nothing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.halt()
	s.log.Info("scheduler stopped")
}

// Running reports whether the check loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Meter returns the beats per measure of the current or last run.
func (s *Scheduler) Meter() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meter
}

// Current returns the index of the most recently committed beat, or 0 when
// stopped.
func (s *Scheduler) Current() int {
	return int(s.current.Load())
}

// halt retires the running generation. Must be called with mu held.
func (s *Scheduler) halt() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.running = false
	s.gen++
	s.voice.Cancel()
	if c, ok := s.pulse.(clearer); ok {
		c.Clear()
	}
	s.current.Store(0)
}

func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || gen != s.gen {
		return
	}
	s.check(gen)
}

// check commits every beat due before now+lookahead, then re-arms the loop.
// Must be called with mu held.
func (s *Scheduler) check(gen uint64) {
	now := s.now()
	horizon := now.Add(s.lookahead)

	for !s.deadline.After(horizon) {
		interval := Interval(s.params.Tempo())
		if interval <= 0 {
			s.log.Warn("non-positive tempo, holding cursor", zap.Float64("tempo", s.params.Tempo()))
			break
		}
		s.fire(Beat{Index: s.next, Accented: s.next == 0, At: s.deadline}, now)
		s.next = (s.next + 1) % s.meter
		s.deadline = s.deadline.Add(interval)
	}

	s.timer = s.after(s.poll, func() { s.tick(gen) })
}

// fire emits b unless it is already more than lookahead late. The index is
// published either way so numbering stays continuous.
func (s *Scheduler) fire(b Beat, now time.Time) {
	if late := now.Sub(b.At); late > s.lookahead {
		s.log.Debug("skipping late beat", zap.Int("index", b.Index), zap.Duration("late", late))
	} else {
		delay := b.At.Sub(now)
		if delay < 0 {
			delay = 0
		}
		volume := s.params.Volume()
		s.pulse.Emit(b.Accented, volume, delay)
		s.voice.Announce(b.Index, b.Accented, volume, s.params.VoiceEnabled())
	}

	s.current.Store(int64(b.Index))
	if s.onBeat != nil {
		s.onBeat(b)
	}
}
