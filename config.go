package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/dimfu/tempo/internal/control"
	"github.com/pkg/errors"
)

type Preset struct {
	Key     string  `json:"key"`
	Tempo   float64 `json:"tempo"`
	Timesig string  `json:"timesig"`
}

// Validate checks the preset without clamping it.
func (p Preset) Validate() error {
	if p.Key == "" {
		return errors.New("preset key is empty")
	}
	if !ValidTempo(p.Tempo) {
		return errors.Errorf("preset %q: tempo %v outside %v..%v", p.Key, p.Tempo, control.MinTempo, control.MaxTempo)
	}
	if _, err := ValidTimeSig(p.Timesig); err != nil {
		return errors.Wrapf(err, "preset %q", p.Key)
	}
	return nil
}

// Apply sets the preset's tempo and meter on the surface. A running
// metronome restarts when the meter changes.
func (p Preset) Apply(s *control.Surface) error {
	ts, err := ValidTimeSig(p.Timesig)
	if err != nil {
		return errors.Wrapf(err, "preset %q", p.Key)
	}
	s.SetTempo(p.Tempo)
	return s.SetMeter(int(ts.Beats))
}

// PresetBook is the in-memory preset list. Files are only ever read.
type PresetBook struct {
	Presets []Preset
	pos     int
}

func NewPresetBook() *PresetBook {
	return &PresetBook{
		Presets: append([]Preset(nil), DEFAULT_PRESETS...),
		pos:     -1,
	}
}

// Load decodes a JSON array of presets; entries replace built-in presets
// with the same key and the rest are appended.
func (pb *PresetBook) Load(r io.Reader) error {
	var presets []Preset
	if err := json.NewDecoder(r).Decode(&presets); err != nil {
		return errors.Wrap(err, "decoding presets")
	}

	for _, p := range presets {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	for _, p := range presets {
		if existing := pb.GetPresetByKey(p.Key); existing != nil {
			*existing = p
			continue
		}
		pb.Presets = append(pb.Presets, p)
	}
	return nil
}

// LoadFile reads presets from path. An empty file adds nothing.
func (pb *PresetBook) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening presets")
	}
	defer f.Close()

	fileInfo, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, "reading presets")
	}
	if fileInfo.Size() == 0 {
		return nil
	}
	return errors.Wrapf(pb.Load(f), "loading %s", path)
}

func (pb *PresetBook) GetPresetByKey(key string) *Preset {
	for i := range pb.Presets {
		if pb.Presets[i].Key == key {
			return &pb.Presets[i]
		}
	}
	return nil
}

// Select makes key the current preset so Next continues after it.
func (pb *PresetBook) Select(key string) (Preset, error) {
	for i, p := range pb.Presets {
		if p.Key == key {
			pb.pos = i
			return p, nil
		}
	}
	return Preset{}, errors.Errorf("`%v` preset not found", key)
}

// Next returns the preset after the last one returned, wrapping around.
func (pb *PresetBook) Next() Preset {
	pb.pos = (pb.pos + 1) % len(pb.Presets)
	return pb.Presets[pb.pos]
}
