package control

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eiannone/keyboard"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		st       State
		cells    string
		contains []string
	}{
		{
			name:     "running on third beat",
			st:       State{Tempo: 120, Meter: 4, Volume: 0.8, Running: true, Beat: 2},
			cells:    "( )[ ][●][ ]",
			contains: []string{"120 BPM", "meter 4", "vol 80%", "voice off", "running"},
		},
		{
			name:     "accent highlighted",
			st:       State{Tempo: 97.5, Meter: 3, Volume: 1, Voice: true, Running: true, Beat: 0},
			cells:    "(●)[ ][ ]",
			contains: []string{"97.5 BPM", "meter 3", "vol 100%", "voice on"},
		},
		{
			name:     "stopped shows no active cell",
			st:       State{Tempo: 60, Meter: 2, Volume: 0},
			cells:    "( )[ ]",
			contains: []string{"60 BPM", "stopped"},
		},
	}
	for _, tt := range tests {
		got := Render(tt.st)
		if !strings.HasPrefix(got, tt.cells+"  ") {
			t.Errorf("%s: Render = %q, want prefix %q", tt.name, got, tt.cells)
		}
		for _, c := range tt.contains {
			if !strings.Contains(got, c) {
				t.Errorf("%s: Render = %q, missing %q", tt.name, got, c)
			}
		}
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDisplayRedrawsOnRefresh(t *testing.T) {
	s, _ := newTestSurface(t)
	out := &syncBuffer{}
	d := NewDisplay(s, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	s.SetTempo(150)
	d.Refresh()
	d.Refresh()

	deadline := time.Now().Add(time.Second)
	for !strings.Contains(out.String(), "150 BPM") {
		if time.Now().After(deadline) {
			t.Fatalf("display never showed the new tempo: %q", out.String())
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestHandleKey(t *testing.T) {
	s, e := newTestSurface(t)

	press := func(ev keyboard.KeyEvent) Command {
		t.Helper()
		cmd, err := s.HandleKey(ev)
		if err != nil {
			t.Fatalf("HandleKey(%+v): %v", ev, err)
		}
		return cmd
	}

	press(keyboard.KeyEvent{Key: keyboard.KeySpace})
	if !s.Running() || len(e.starts) != 1 {
		t.Fatalf("space did not start: running=%v starts=%v", s.Running(), e.starts)
	}

	press(keyboard.KeyEvent{Key: keyboard.KeyArrowUp})
	press(keyboard.KeyEvent{Key: keyboard.KeyPgup})
	press(keyboard.KeyEvent{Rune: '-'})
	if s.Tempo() != DefaultTempo+10 {
		t.Errorf("Tempo = %v, want %v", s.Tempo(), DefaultTempo+10)
	}

	press(keyboard.KeyEvent{Key: keyboard.KeyArrowLeft})
	if v := s.Volume(); v < 0.69 || v > 0.71 {
		t.Errorf("Volume = %v, want 0.7", v)
	}

	press(keyboard.KeyEvent{Rune: '3'})
	if s.Meter() != 3 || len(e.starts) != 2 {
		t.Errorf("meter key: meter=%d starts=%v", s.Meter(), e.starts)
	}

	press(keyboard.KeyEvent{Rune: 'v'})
	if !s.VoiceEnabled() {
		t.Error("v did not enable voice")
	}

	if cmd := press(keyboard.KeyEvent{Rune: 'p'}); cmd != CmdNextPreset {
		t.Errorf("p = %v, want CmdNextPreset", cmd)
	}
	if cmd := press(keyboard.KeyEvent{Rune: 'q'}); cmd != CmdQuit {
		t.Errorf("q = %v, want CmdQuit", cmd)
	}
	if cmd := press(keyboard.KeyEvent{Key: keyboard.KeyEsc}); cmd != CmdQuit {
		t.Errorf("esc = %v, want CmdQuit", cmd)
	}

	press(keyboard.KeyEvent{Key: keyboard.KeySpace})
	if s.Running() || e.stops != 1 {
		t.Errorf("space did not stop: running=%v stops=%d", s.Running(), e.stops)
	}
}
