// Package control holds the metronome parameters set by the user and turns
// their changes into scheduler starts, stops and restarts.
package control

import (
	"math"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	MinTempo = 40.0
	MaxTempo = 240.0

	DefaultTempo  = 120.0
	DefaultMeter  = 4
	DefaultVolume = 0.8
)

// Meters lists the accepted beats per measure.
var Meters = []int{2, 3, 4, 5, 6}

// ErrInvalidMeter is returned for a meter outside Meters.
var ErrInvalidMeter = errors.New("control: meter must be one of 2, 3, 4, 5, 6")

// ErrNoEngine is returned when starting a surface with no attached engine.
var ErrNoEngine = errors.New("control: no engine attached")

// Engine is the scheduler driven by the surface.
type Engine interface {
	Start(meter int) error
	Stop()
	Current() int
}

// State is a snapshot of the surface for rendering.
type State struct {
	Tempo   float64
	Meter   int
	Volume  float64
	Voice   bool
	Running bool
	Beat    int
}

// Option configures a Surface.
type Option func(*Surface)

// WithLogger sets the surface logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Surface) {
		s.log = l
	}
}

// Surface owns tempo, meter, volume, the voice flag and the running state.
// The scheduler reads tempo, volume and voice through the Params methods on
// every beat, so those edits need no restart.
type Surface struct {
	log *zap.Logger

	// ctl serializes setters that may call into the engine. It is never
	// taken by the Params readers.
	ctl    sync.Mutex
	engine Engine

	mu      sync.RWMutex
	tempo   float64
	meter   int
	volume  float64
	voice   bool
	running bool
}

// NewSurface returns a stopped surface with default parameters.
func NewSurface(opts ...Option) *Surface {
	s := &Surface{
		log:    zap.NewNop(),
		tempo:  DefaultTempo,
		meter:  DefaultMeter,
		volume: DefaultVolume,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach connects the engine. It must be called before SetRunning(true).
func (s *Surface) Attach(e Engine) {
	s.ctl.Lock()
	s.engine = e
	s.ctl.Unlock()
}

// ValidMeter reports whether n is an accepted meter.
func ValidMeter(n int) bool {
	for _, m := range Meters {
		if m == n {
			return true
		}
	}
	return false
}

// ClampTempo limits bpm to [MinTempo, MaxTempo].
func ClampTempo(bpm float64) float64 {
	return math.Min(MaxTempo, math.Max(MinTempo, bpm))
}

// ClampVolume limits v to [0, 1].
func ClampVolume(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// Tempo returns the current tempo in beats per minute.
func (s *Surface) Tempo() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tempo
}

// Volume returns the current volume in [0, 1].
func (s *Surface) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// VoiceEnabled reports whether beat numbers are spoken.
func (s *Surface) VoiceEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voice
}

// Meter returns the beats per measure.
func (s *Surface) Meter() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meter
}

// Running reports whether the metronome is on.
func (s *Surface) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// State returns a snapshot including the engine's current beat.
func (s *Surface) State() State {
	s.mu.RLock()
	st := State{
		Tempo:   s.tempo,
		Meter:   s.meter,
		Volume:  s.volume,
		Voice:   s.voice,
		Running: s.running,
	}
	s.mu.RUnlock()

	s.ctl.Lock()
	e := s.engine
	s.ctl.Unlock()
	if st.Running && e != nil {
		st.Beat = e.Current()
	}
	return st
}

// SetTempo sets the tempo, clamped to [MinTempo, MaxTempo]. A running
// metronome keeps its phase; the new tempo spaces the beats after the next
// one. NaN is ignored.
func (s *Surface) SetTempo(bpm float64) {
	if math.IsNaN(bpm) {
		return
	}
	s.mu.Lock()
	s.tempo = ClampTempo(bpm)
	s.mu.Unlock()
}

// NudgeTempo adds delta to the tempo and returns the clamped result.
func (s *Surface) NudgeTempo(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tempo = ClampTempo(s.tempo + delta)
	return s.tempo
}

// SetVolume sets the volume, clamped to [0, 1]. NaN is ignored.
func (s *Surface) SetVolume(v float64) {
	if math.IsNaN(v) {
		return
	}
	s.mu.Lock()
	s.volume = ClampVolume(v)
	s.mu.Unlock()
}

// NudgeVolume adds delta to the volume and returns the clamped result.
func (s *Surface) NudgeVolume(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = ClampVolume(s.volume + delta)
	return s.volume
}

// SetVoiceEnabled turns spoken beat numbers on or off from the next beat.
func (s *Surface) SetVoiceEnabled(on bool) {
	s.mu.Lock()
	s.voice = on
	s.mu.Unlock()
}

// ToggleVoice flips the voice flag and returns the new value.
func (s *Surface) ToggleVoice() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice = !s.voice
	return s.voice
}

// SetMeter changes the beats per measure. A running metronome restarts at
// beat 0.
func (s *Surface) SetMeter(n int) error {
	if !ValidMeter(n) {
		return errors.Wrapf(ErrInvalidMeter, "got %d", n)
	}

	s.ctl.Lock()
	defer s.ctl.Unlock()

	s.mu.Lock()
	changed := s.meter != n
	s.meter = n
	running := s.running
	s.mu.Unlock()

	if !changed || !running {
		return nil
	}
	s.log.Debug("meter changed, restarting", zap.Int("meter", n))
	return s.start(n)
}

// SetRunning starts or stops the metronome. Starting always begins at
// beat 0 with the current tempo and meter.
func (s *Surface) SetRunning(on bool) error {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	return s.setRunning(on)
}

// ToggleRunning flips the running state.
func (s *Surface) ToggleRunning() error {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	return s.setRunning(!s.Running())
}

// setRunning must be called with ctl held.
func (s *Surface) setRunning(on bool) error {
	if on && s.engine == nil {
		return ErrNoEngine
	}

	s.mu.Lock()
	was := s.running
	meter := s.meter
	s.running = on
	s.mu.Unlock()

	if was == on || s.engine == nil {
		return nil
	}
	if on {
		return s.start(meter)
	}
	s.engine.Stop()
	return nil
}

// start must be called with ctl held.
func (s *Surface) start(meter int) error {
	if err := s.engine.Start(meter); err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return errors.Wrap(err, "starting scheduler")
	}
	return nil
}
