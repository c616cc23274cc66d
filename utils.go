package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dimfu/tempo/internal/control"
	"github.com/pkg/errors"
)

func ValidTempo(input float64) bool {
	return input >= control.MinTempo && input <= control.MaxTempo
}

func ValidTimeSig(input string) (TimeSignature, error) {
	parts := strings.Split(input, "/")
	if len(parts) != 2 {
		return TimeSignature{}, errors.Errorf("invalid time signature format %q", input)
	}

	beats, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return TimeSignature{}, errors.Wrapf(err, "invalid beats in time signature %q", input)
	}
	noteValue, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return TimeSignature{}, errors.Wrapf(err, "invalid note value in time signature %q", input)
	}

	for _, ts := range TIME_SIGNATURES {
		if ts.Beats == beats && ts.NoteValue == noteValue {
			return ts, nil
		}
	}

	return TimeSignature{}, errors.Errorf("time signature %q not supported", input)
}

// DefaultPresetsPath is the optional preset file in the user's home.
func DefaultPresetsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tempo.json")
}
