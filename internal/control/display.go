package control

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dimfu/tempo/internal/beat"
	"github.com/gosuri/uilive"
)

const help = "space start/stop  ↑/↓ tempo ±1  pgup/pgdn ±10  ←/→ volume  2-6 meter  v voice  p preset  q quit"

// Render draws one frame of the beat indicator: a cell per beat of the
// measure, the accent cell in parentheses, the active cell filled.
func Render(st State) string {
	var b strings.Builder
	for i := 0; i < st.Meter; i++ {
		mark := " "
		if st.Running && i == st.Beat {
			mark = "●"
		}
		if i == 0 {
			fmt.Fprintf(&b, "(%s)", mark)
		} else {
			fmt.Fprintf(&b, "[%s]", mark)
		}
	}

	voice := "off"
	if st.Voice {
		voice = "on"
	}
	state := "stopped"
	if st.Running {
		state = "running"
	}
	fmt.Fprintf(&b, "  %s BPM  meter %d  vol %d%%  voice %s  %s\n",
		formatTempo(st.Tempo), st.Meter, int(math.Round(st.Volume*100)), voice, state)
	b.WriteString(help)
	b.WriteString("\n")
	return b.String()
}

func formatTempo(bpm float64) string {
	if bpm == math.Trunc(bpm) {
		return fmt.Sprintf("%.0f", bpm)
	}
	return fmt.Sprintf("%.1f", bpm)
}

// Display redraws the indicator in place on every beat and every Refresh.
type Display struct {
	surface *Surface
	w       *uilive.Writer
	redraw  chan struct{}
}

// NewDisplay returns a display writing to out.
func NewDisplay(s *Surface, out io.Writer) *Display {
	w := uilive.New()
	w.Out = out
	return &Display{
		surface: s,
		w:       w,
		redraw:  make(chan struct{}, 1),
	}
}

// OnBeat is a beat.Scheduler listener. It never blocks.
func (d *Display) OnBeat(beat.Beat) {
	d.Refresh()
}

// Refresh requests a redraw. It never blocks.
func (d *Display) Refresh() {
	select {
	case d.redraw <- struct{}{}:
	default:
	}
}

// Run draws until ctx is cancelled.
func (d *Display) Run(ctx context.Context) {
	d.w.Start()
	defer d.w.Stop()

	d.draw()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.redraw:
			d.draw()
		}
	}
}

func (d *Display) draw() {
	fmt.Fprint(d.w, Render(d.surface.State()))
	d.w.Flush()
}
