package control

import (
	"github.com/eiannone/keyboard"
	"go.uber.org/zap"
)

// Command is what the caller must do after a key press.
type Command int

const (
	CmdNone Command = iota
	CmdQuit
	CmdNextPreset
)

const (
	tempoStep    = 1.0
	tempoBigStep = 10.0
	volumeStep   = 0.1
)

// HandleKey applies one key press to the surface.
func (s *Surface) HandleKey(ev keyboard.KeyEvent) (Command, error) {
	switch ev.Key {
	case keyboard.KeySpace:
		return CmdNone, s.ToggleRunning()
	case keyboard.KeyArrowUp:
		s.NudgeTempo(tempoStep)
	case keyboard.KeyArrowDown:
		s.NudgeTempo(-tempoStep)
	case keyboard.KeyPgup:
		s.NudgeTempo(tempoBigStep)
	case keyboard.KeyPgdn:
		s.NudgeTempo(-tempoBigStep)
	case keyboard.KeyArrowRight:
		s.NudgeVolume(volumeStep)
	case keyboard.KeyArrowLeft:
		s.NudgeVolume(-volumeStep)
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return CmdQuit, nil
	}

	switch r := ev.Rune; {
	case r >= '2' && r <= '6':
		return CmdNone, s.SetMeter(int(r - '0'))
	case r == '+' || r == '=':
		s.NudgeTempo(tempoStep)
	case r == '-':
		s.NudgeTempo(-tempoStep)
	case r == 'v' || r == 'V':
		s.log.Debug("voice toggled", zap.Bool("voice", s.ToggleVoice()))
	case r == 'p' || r == 'P':
		return CmdNextPreset, nil
	case r == 'q' || r == 'Q':
		return CmdQuit, nil
	}
	return CmdNone, nil
}
