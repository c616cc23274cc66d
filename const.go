package main

type TimeSignature struct {
	Beats     int64 // number of beats per measure
	NoteValue int64 // note that represent that one beat
}

// Beats must stay within control.Meters.
var TIME_SIGNATURES = []TimeSignature{
	{4, 4},
	{3, 4},
	{2, 4},
	{2, 2},
	{3, 8},
	{6, 8},
	{5, 4},
	{6, 4},
	{5, 8},
}

var DEFAULT_PRESETS = []Preset{
	{Key: "largo", Tempo: 50, Timesig: "4/4"},
	{Key: "andante", Tempo: 76, Timesig: "4/4"},
	{Key: "waltz", Tempo: 90, Timesig: "3/4"},
	{Key: "jig", Tempo: 116, Timesig: "6/8"},
	{Key: "march", Tempo: 120, Timesig: "2/4"},
	{Key: "allegro", Tempo: 132, Timesig: "4/4"},
	{Key: "five", Tempo: 172, Timesig: "5/4"},
	{Key: "presto", Tempo: 184, Timesig: "4/4"},
}
