package announce

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/pkg/errors"
)

// Command speaks by running the platform speech program: say on darwin,
// PowerShell with System.Speech on windows, espeak everywhere else.
type Command struct {
	goos string
	path string
	err  error
}

// NewCommand resolves the speech program for the running OS. A missing
// program is not an error here; Speak then returns ErrUnavailable.
func NewCommand() *Command {
	return newCommand(runtime.GOOS, exec.LookPath)
}

func newCommand(goos string, lookPath func(string) (string, error)) *Command {
	name, _ := Args(goos, Request{})
	path, err := lookPath(name)
	if err != nil {
		err = errors.Wrapf(ErrUnavailable, "%s not found: %v", name, err)
	}
	return &Command{goos: goos, path: path, err: err}
}

// Speak runs the speech program for r and waits for it to exit.
func (c *Command) Speak(ctx context.Context, r Request) error {
	if c.err != nil {
		return c.err
	}
	name, args := Args(c.goos, r)
	if err := exec.CommandContext(ctx, c.path, args...).Run(); err != nil {
		return errors.Wrapf(err, "running %s", name)
	}
	return nil
}

// Args returns the program and arguments that speak r on goos.
func Args(goos string, r Request) (string, []string) {
	switch goos {
	case "darwin":
		text := fmt.Sprintf("[[volm %.2f]] [[pbas %+d]] %s", r.Volume, semitones(r.Pitch), r.Text)
		return "say", []string{"-r", "280", text}
	case "windows":
		ssml := fmt.Sprintf(
			"<speak version='1.0' xml:lang='en-US'><prosody pitch='%+d%%'>%s</prosody></speak>",
			int(math.Round((r.Pitch-1)*100)), r.Text)
		script := fmt.Sprintf(
			"Add-Type -AssemblyName System.Speech; $s = New-Object System.Speech.Synthesis.SpeechSynthesizer; $s.Volume = %d; $s.Rate = 4; $s.SpeakSsml(\"%s\")",
			int(math.Round(r.Volume*100)), ssml)
		return "powershell", []string{"-NoProfile", "-Command", script}
	default:
		return "espeak", []string{
			"-a", strconv.Itoa(int(math.Round(r.Volume * 100))),
			"-p", strconv.Itoa(clampPitch(int(math.Round(r.Pitch * 50)))),
			"-s", "260",
			r.Text,
		}
	}
}

func semitones(pitch float64) int {
	if pitch <= 0 {
		return 0
	}
	return int(math.Round(12 * math.Log2(pitch)))
}

func clampPitch(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 99:
		return 99
	}
	return p
}
