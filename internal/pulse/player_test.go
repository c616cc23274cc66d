package pulse

import (
	"math"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/pkg/errors"
	"go.uber.org/zap/zaptest"
)

type fakeOutput struct {
	initErr error
	played  []beep.Streamer
	clears  int
	closed  bool
}

func (o *fakeOutput) Init(beep.SampleRate, int) error { return o.initErr }
func (o *fakeOutput) Play(s ...beep.Streamer)         { o.played = append(o.played, s...) }
func (o *fakeOutput) Clear()                          { o.clears++ }
func (o *fakeOutput) Close()                          { o.closed = true }

func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok || n == 0 {
			return out
		}
	}
}

func peak(samples [][2]float64) float64 {
	m := 0.0
	for _, s := range samples {
		m = math.Max(m, math.Abs(s[0]))
	}
	return m
}

func crossings(samples [][2]float64) int {
	n := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i-1][0] < 0) != (samples[i][0] < 0) {
			n++
		}
	}
	return n
}

func TestEmitPlaysShortTone(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayer(WithOutput(out), WithLogger(zaptest.NewLogger(t)))
	if p.Err() != nil {
		t.Fatalf("Err = %v", p.Err())
	}

	p.Emit(true, 1, 0)
	if len(out.played) != 1 {
		t.Fatalf("played = %d, want 1", len(out.played))
	}
	samples := drain(out.played[0])
	if want := SampleRate.N(Duration); len(samples) != want {
		t.Errorf("tone length = %d samples, want %d", len(samples), want)
	}
	if peak(samples) == 0 {
		t.Error("tone is silent")
	}
}

func TestAccentIsHigherThanPlain(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayer(WithOutput(out))

	p.Emit(true, 1, 0)
	p.Emit(false, 1, 0)
	accent := crossings(drain(out.played[0]))
	plain := crossings(drain(out.played[1]))
	if accent <= plain {
		t.Errorf("accent crossings = %d, plain = %d, want accent higher", accent, plain)
	}
}

func TestEmitScalesVolume(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayer(WithOutput(out))

	p.Emit(false, 1, 0)
	p.Emit(false, 0.5, 0)
	p.Emit(false, 0, 0)
	full := peak(drain(out.played[0]))
	half := peak(drain(out.played[1]))
	mute := peak(drain(out.played[2]))

	if math.Abs(half-full/2) > 0.01 {
		t.Errorf("half volume peak = %v, want about %v", half, full/2)
	}
	if mute != 0 {
		t.Errorf("zero volume peak = %v, want 0", mute)
	}
}

func TestEmitDelaysWithSilence(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayer(WithOutput(out))

	delay := 20 * time.Millisecond
	p.Emit(true, 1, delay)
	samples := drain(out.played[0])

	lead := SampleRate.N(delay)
	if len(samples) != lead+SampleRate.N(Duration) {
		t.Fatalf("length = %d, want %d", len(samples), lead+SampleRate.N(Duration))
	}
	if peak(samples[:lead]) != 0 {
		t.Error("expected silence before the tone")
	}
	if peak(samples[lead:]) == 0 {
		t.Error("expected tone after the delay")
	}
}

func TestUnavailableOutputIsNoop(t *testing.T) {
	out := &fakeOutput{initErr: errors.New("no device")}
	p := NewPlayer(WithOutput(out))

	if !errors.Is(p.Err(), ErrUnavailable) {
		t.Errorf("Err = %v, want ErrUnavailable", p.Err())
	}
	p.Emit(true, 1, 0)
	p.Clear()
	p.Close()
	if len(out.played) != 0 || out.clears != 0 || out.closed {
		t.Errorf("unavailable output was used: played=%d clears=%d closed=%v", len(out.played), out.clears, out.closed)
	}
}

func TestClearAndClose(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayer(WithOutput(out))

	p.Clear()
	p.Close()
	if out.clears != 2 || !out.closed {
		t.Errorf("clears = %d closed = %v, want 2 true", out.clears, out.closed)
	}
}
