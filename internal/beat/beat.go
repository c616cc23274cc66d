// Package beat turns a tempo and a meter into a stream of timed beats.
//
// The Scheduler keeps a cursor (next beat index, next deadline) and checks it
// every PollInterval, committing every beat whose deadline falls inside the
// Lookahead window. Tempo, volume and the voice flag are read from Params at
// the moment they are needed, so live edits land on the next beat.
package beat

import "time"

const (
	// Lookahead is how far past now the scheduler commits beats on each check.
	Lookahead = 100 * time.Millisecond
	// PollInterval is the period of the re-arming check loop.
	PollInterval = 25 * time.Millisecond
)

// Beat is one committed metronome beat.
type Beat struct {
	Index    int
	Accented bool
	At       time.Time // deadline on the scheduler clock
}

// Params is the live parameter set owned by the control surface.
type Params interface {
	Tempo() float64
	Volume() float64
	VoiceEnabled() bool
}

// Emitter plays one short tone. delay is the time left until the beat's
// deadline; implementations should render the tone that far in the future.
type Emitter interface {
	Emit(accented bool, volume float64, delay time.Duration)
}

// Announcer speaks beat numbers. Cancel drops every request not yet spoken.
type Announcer interface {
	Announce(index int, accented bool, volume float64, enabled bool)
	Cancel()
}

// Timer is the part of *time.Timer the scheduler keeps.
type Timer interface {
	Stop() bool
}

// AfterFunc arms a one-shot timer that calls f after d.
type AfterFunc func(d time.Duration, f func()) Timer

// Interval returns the time between two beats at bpm beats per minute.
// It returns 0 for a non-positive tempo.
func Interval(bpm float64) time.Duration {
	if bpm <= 0 {
		return 0
	}
	return time.Duration(60.0 / bpm * float64(time.Second))
}

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
