package pulse

import (
	"math"
	"time"

	"github.com/faiface/beep"
)

const (
	attack = 2 * time.Millisecond
	decay  = 6.0 // envelope falls to e^-decay by the end of the tone
	level  = 0.8
)

// Tone returns a stereo sine at freq lasting d, with a short linear attack
// and an exponential decay so the pulse does not click.
func Tone(sr beep.SampleRate, freq float64, d time.Duration) beep.Streamer {
	n := sr.N(d)
	rise := sr.N(attack)
	i := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if i >= n {
			return 0, false
		}
		k := 0
		for ; k < len(samples) && i < n; k++ {
			env := math.Exp(-decay * float64(i) / float64(n))
			if i < rise {
				env *= float64(i) / float64(rise)
			}
			v := math.Sin(2*math.Pi*freq*float64(i)/float64(sr)) * env * level
			samples[k][0], samples[k][1] = v, v
			i++
		}
		return k, true
	})
}

func render(format beep.Format, freq float64, d time.Duration) *beep.Buffer {
	buffer := beep.NewBuffer(format)
	buffer.Append(Tone(format.SampleRate, freq, d))
	return buffer
}
