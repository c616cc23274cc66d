package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dimfu/tempo/internal/announce"
	"github.com/dimfu/tempo/internal/beat"
	"github.com/dimfu/tempo/internal/control"
	"github.com/dimfu/tempo/internal/pulse"
	"github.com/eiannone/keyboard"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// flags
	tempo    = flag.Float64("tempo", control.DefaultTempo, "beats per minute, clamped to 40..240")
	timesig  = flag.String("timesig", "4/4", "time signature; the top number sets beats per measure (2-6)")
	volume   = flag.Float64("volume", control.DefaultVolume, "click and voice volume from 0 to 1")
	voice    = flag.Bool("voice", false, "speak beat numbers")
	preset   = flag.String("preset", "", "start from a named preset instead of -tempo and -timesig")
	presets  = flag.String("presets", "", "JSON preset file to read (default ~/.tempo.json if present)")
	headless = flag.Bool("headless", false, "run without keyboard control or live display")
	logLevel = flag.String("log-level", "warn", "log level: debug, info, warn or error")
	logFile  = flag.String("log-file", "stderr", "log destination: stderr, stdout or a file path")
)

func main() {
	flag.Parse()

	logger, err := newLogger(*logLevel, *logFile)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer logger.Sync()

	book, err := loadPresets(*presets)
	if err != nil {
		logger.Fatal("presets unavailable", zap.Error(err))
	}

	surface := control.NewSurface(control.WithLogger(logger.Named("control")))
	if err := configure(surface, book, logger); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	player := pulse.NewPlayer(pulse.WithLogger(logger.Named("pulse")))
	defer player.Close()

	announcer := announce.New(announce.NewCommand(), announce.WithLogger(logger.Named("announce")))
	defer announcer.Close()

	interactive := !*headless && isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
	display := control.NewDisplay(surface, os.Stdout)

	opts := []beat.Option{beat.WithLogger(logger.Named("beat"))}
	if interactive {
		opts = append(opts, beat.WithOnBeat(display.OnBeat))
	}
	sched, err := beat.NewScheduler(surface, player, announcer, opts...)
	if err != nil {
		logger.Fatal("creating scheduler", zap.Error(err))
	}
	surface.Attach(sched)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := surface.SetRunning(true); err != nil {
		logger.Fatal("starting metronome", zap.Error(err))
	}
	defer surface.SetRunning(false)

	if !interactive {
		logger.Info("running headless", zap.Float64("tempo", surface.Tempo()), zap.Int("meter", surface.Meter()))
		<-ctx.Done()
		return
	}

	if err := runInteractive(ctx, surface, display, book, logger); err != nil {
		logger.Error("keyboard control stopped", zap.Error(err))
	}
}

func loadPresets(path string) (*PresetBook, error) {
	book := NewPresetBook()
	if path != "" {
		return book, book.LoadFile(path)
	}

	def := DefaultPresetsPath()
	if def == "" {
		return book, nil
	}
	if err := book.LoadFile(def); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return book, nil
}

// configure applies the startup flags to the surface.
func configure(s *control.Surface, book *PresetBook, logger *zap.Logger) error {
	s.SetVolume(*volume)
	s.SetVoiceEnabled(*voice)

	if *preset != "" {
		p, err := book.Select(*preset)
		if err != nil {
			return err
		}
		return p.Apply(s)
	}

	if !ValidTempo(*tempo) {
		logger.Warn("tempo out of range, clamping", zap.Float64("tempo", *tempo),
			zap.Float64("min", control.MinTempo), zap.Float64("max", control.MaxTempo))
	}
	ts, err := ValidTimeSig(*timesig)
	if err != nil {
		return err
	}
	s.SetTempo(*tempo)
	return s.SetMeter(int(ts.Beats))
}

func runInteractive(ctx context.Context, surface *control.Surface, display *control.Display, book *PresetBook, logger *zap.Logger) error {
	keys, err := keyboard.GetKeys(10)
	if err != nil {
		return errors.Wrap(err, "opening keyboard")
	}
	defer keyboard.Close()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		display.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-keys:
			if ev.Err != nil {
				return errors.Wrap(ev.Err, "reading keyboard")
			}

			cmd, err := surface.HandleKey(ev)
			if err != nil {
				logger.Warn("key ignored", zap.Error(err))
			}

			switch cmd {
			case control.CmdQuit:
				return nil
			case control.CmdNextPreset:
				p := book.Next()
				if err := p.Apply(surface); err != nil {
					logger.Warn("preset not applied", zap.String("preset", p.Key), zap.Error(err))
				} else {
					logger.Info("preset applied", zap.String("preset", p.Key))
				}
			}
			display.Refresh()
		}
	}
}
