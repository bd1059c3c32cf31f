package sequencer

import (
	"fmt"
	"sort"
	"time"
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the name+octave of a MIDI note (C-1 .. G9), "" outside 0-127
func NoteName(n int) string {
	if n < 0 || n > 127 {
		return ""
	}
	return fmt.Sprintf("%s%d", noteNames[n%12], n/12-1)
}

// Scales are intervals from root (semitones), octave included
var Scales = map[string][]int{
	"Major penta":     {0, 2, 4, 7, 9, 12},
	"Minor penta":     {0, 3, 5, 7, 10, 12},
	"Major":           {0, 2, 4, 5, 7, 9, 11, 12},
	"Natural minor":   {0, 2, 3, 5, 7, 8, 10, 12},
	"Harmonic minor":  {0, 2, 3, 5, 7, 8, 11, 12},
	"Jazz minor":      {0, 2, 3, 5, 7, 9, 11, 12},
	"Hungarian minor": {0, 2, 3, 6, 7, 8, 11, 12},
	"Dorian":          {0, 2, 3, 5, 7, 9, 10, 12},
	"Phrygian":        {0, 1, 3, 5, 7, 8, 10, 12},
	"Lydian":          {0, 2, 4, 6, 7, 9, 11, 12},
	"Mixolydian":      {0, 2, 4, 5, 7, 9, 10, 12},
	"Locrian":         {0, 1, 3, 5, 6, 8, 10, 12},
	"Major blues":     {0, 2, 3, 4, 7, 9, 12},
	"Minor blues":     {0, 3, 5, 6, 7, 10, 12},
}

// ScaleNames returns the scale names sorted
func ScaleNames() []string {
	names := make([]string, 0, len(Scales))
	for name := range Scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScaleNotes returns a scale as a note sequence (nil if unknown)
func ScaleNotes(name string) []Note {
	intervals, ok := Scales[name]
	if !ok {
		return nil
	}
	return Notes(intervals...)
}

// Note lengths as fractions of a whole note
var (
	Dividends    = []int{1, 2, 3, 4, 6, 8, 10, 12}
	Denominators = []int{1, 2, 4, 8, 16, 32}
)

// StepDuration is the length of dividend/denominator of a whole note (4 beats) at bpm
func StepDuration(bpm, dividend, denominator int) time.Duration {
	if bpm <= 0 || dividend <= 0 || denominator <= 0 {
		return 0
	}
	whole := 4 * time.Minute / time.Duration(bpm)
	return whole * time.Duration(dividend) / time.Duration(denominator)
}
