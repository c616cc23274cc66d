// Package announce speaks beat numbers through a queued speech backend.
package announce

import (
	"context"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	PitchAccent = 1.2
	PitchPlain  = 1.0

	defaultQueueSize = 8
)

// ErrUnavailable is returned by a Speaker that has no usable backend.
var ErrUnavailable = errors.New("announce: speech output unavailable")

// Request is one utterance.
type Request struct {
	Text   string
	Volume float64 // 0..1
	Pitch  float64 // relative, 1 is the voice default
}

// Speaker speaks one request and returns when it is done.
type Speaker interface {
	Speak(ctx context.Context, r Request) error
}

// Option configures an Announcer.
type Option func(*Announcer)

// WithLogger sets the announcer logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Announcer) {
		a.log = l
	}
}

// WithQueueSize sets how many requests may wait behind the one being spoken.
func WithQueueSize(n int) Option {
	return func(a *Announcer) {
		if n > 0 {
			a.size = n
		}
	}
}

// Announcer queues spoken beat numbers for a single speech worker. Announce
// never blocks; when the queue is full the request is dropped.
type Announcer struct {
	log     *zap.Logger
	speaker Speaker
	size    int
	queue   chan Request

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	warn   sync.Once
}

// New starts the speech worker.
func New(sp Speaker, opts ...Option) *Announcer {
	a := &Announcer{
		log:     zap.NewNop(),
		speaker: sp,
		size:    defaultQueueSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.queue = make(chan Request, a.size)
	a.ctx, a.cancel = context.WithCancel(context.Background())

	a.wg.Add(1)
	go a.run()
	return a
}

// Announce queues the 1-based number of beat index. It does nothing when
// enabled is false.
func (a *Announcer) Announce(index int, accented bool, volume float64, enabled bool) {
	if !enabled {
		return
	}

	r := Request{Text: strconv.Itoa(index + 1), Volume: volume, Pitch: PitchPlain}
	if accented {
		r.Pitch = PitchAccent
	}

	select {
	case a.queue <- r:
	default:
		a.log.Debug("announce queue full, dropping", zap.String("text", r.Text))
	}
}

// Cancel drops every queued request. The one being spoken, if any, finishes.
func (a *Announcer) Cancel() {
	for {
		select {
		case <-a.queue:
		default:
			return
		}
	}
}

// Close stops the worker and interrupts the current utterance.
func (a *Announcer) Close() {
	a.cancel()
	a.wg.Wait()
}

func (a *Announcer) run() {
	defer a.wg.Done()
	for {
		select {
		case <-a.ctx.Done():
			return
		case r := <-a.queue:
			err := a.speaker.Speak(a.ctx, r)
			switch {
			case err == nil:
			case errors.Is(err, ErrUnavailable):
				a.warn.Do(func() {
					a.log.Warn("speech output unavailable, announcements disabled", zap.Error(err))
				})
			case a.ctx.Err() != nil:
				return
			default:
				a.log.Debug("speech failed", zap.String("text", r.Text), zap.Error(err))
			}
		}
	}
}
