// Package pulse plays the metronome click: a short tone, higher for the
// accented beat, rendered through the beep speaker.
package pulse

import (
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	FreqAccent = 1000.0
	FreqPlain  = 800.0
	Duration   = 50 * time.Millisecond

	SampleRate = beep.SampleRate(44100)
)

// ErrUnavailable is reported when the audio device cannot be opened.
var ErrUnavailable = errors.New("pulse: audio output unavailable")

// Output is the audio sink. The default is the beep speaker.
type Output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Clear()
	Close()
}

type speakerOutput struct{}

func (speakerOutput) Init(sr beep.SampleRate, bufferSize int) error {
	return speaker.Init(sr, bufferSize)
}

func (speakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (speakerOutput) Clear()                  { speaker.Clear() }
func (speakerOutput) Close()                  { speaker.Close() }

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the player logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Player) {
		p.log = l
	}
}

// WithOutput replaces the beep speaker.
func WithOutput(out Output) Option {
	return func(p *Player) {
		p.out = out
	}
}

// WithBufferLatency sets the speaker buffer length.
func WithBufferLatency(d time.Duration) Option {
	return func(p *Player) {
		p.latency = d
	}
}

// Player emits pre-rendered accent and plain tones.
type Player struct {
	log     *zap.Logger
	out     Output
	latency time.Duration
	format  beep.Format
	err     error

	accent *beep.Buffer
	plain  *beep.Buffer
}

// NewPlayer renders both tones and opens the output. When the output cannot
// be opened the player stays usable and every Emit is a no-op; Err reports
// why.
func NewPlayer(opts ...Option) *Player {
	p := &Player{
		log:     zap.NewNop(),
		out:     speakerOutput{},
		latency: time.Second / 10,
		format:  beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2},
	}
	for _, opt := range opts {
		opt(p)
	}

	p.accent = render(p.format, FreqAccent, Duration)
	p.plain = render(p.format, FreqPlain, Duration)

	if err := p.out.Init(p.format.SampleRate, p.format.SampleRate.N(p.latency)); err != nil {
		p.err = errors.Wrapf(ErrUnavailable, "initializing speaker: %v", err)
		p.log.Warn("audio output unavailable, clicks disabled", zap.Error(err))
	}
	return p
}

// Err returns the reason output is disabled, or nil.
func (p *Player) Err() error {
	return p.err
}

// Emit plays one pulse after delay at the given volume in [0,1].
func (p *Player) Emit(accented bool, volume float64, delay time.Duration) {
	if p.err != nil {
		return
	}

	buffer := p.plain
	if accented {
		buffer = p.accent
	}

	var s beep.Streamer = &effects.Gain{
		Streamer: buffer.Streamer(0, buffer.Len()),
		Gain:     clamp01(volume) - 1,
	}
	if n := p.format.SampleRate.N(delay); n > 0 {
		s = beep.Seq(beep.Silence(n), s)
	}
	p.out.Play(s)
}

// Clear drops every pulse queued on the output, including ones still
// waiting out their delay.
func (p *Player) Clear() {
	if p.err != nil {
		return
	}
	p.out.Clear()
}

// Close releases the output device.
func (p *Player) Close() {
	if p.err != nil {
		return
	}
	p.out.Clear()
	p.out.Close()
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
