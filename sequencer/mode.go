package sequencer

import "strings"

// Mode is the traversal algorithm of a Step
type Mode string

const (
	ModeDown   Mode = "DOWN"
	ModeUp     Mode = "UP"
	ModeBoth   Mode = "BOTH"
	ModeRandom Mode = "RANDOM"
	ModeDrunk  Mode = "DRUNK"
	ModeOne    Mode = "ONE"
	ModeMimic  Mode = "MIMIC"
	ModeSkip   Mode = "SKIP"
	ModeMute   Mode = "MUTE"
)

// Modes lists every valid mode
var Modes = []Mode{
	ModeDown, ModeUp, ModeBoth, ModeRandom, ModeDrunk,
	ModeOne, ModeMimic, ModeSkip, ModeMute,
}

// RepeatModes are the rotation modes cycled by the UI
var RepeatModes = []Mode{ModeDown, ModeUp, ModeBoth, ModeRandom, ModeDrunk}

func (m Mode) Valid() bool {
	for _, v := range Modes {
		if m == v {
			return true
		}
	}
	return false
}

// ParseMode is case-insensitive
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToUpper(strings.TrimSpace(s)))
	return m, m.Valid()
}

// NextRepeatMode returns the rotation mode after m. Non-rotation modes go to the first one.
func NextRepeatMode(m Mode) Mode {
	for i, v := range RepeatModes {
		if v == m {
			return RepeatModes[(i+1)%len(RepeatModes)]
		}
	}
	return RepeatModes[0]
}

// ModeSpecific is the per-step mode configuration.
//
// Direction is the BOTH oscillation state and survives mode switches.
// MimicStep and Transpose are read by the pattern layer, not by Step.
// Repeat is how many ticks a note holds. Wrap lets DRUNK cross the ends.
type ModeSpecific struct {
	Direction int
	MimicStep int
	Transpose int
	Repeat    int
	Wrap      bool
}

// DefaultModeSpecific returns {direction:1, mimicStep:0, transpose:0, repeat:1, wrap:true}
func DefaultModeSpecific() ModeSpecific {
	return ModeSpecific{
		Direction: 1,
		Repeat:    1,
		Wrap:      true,
	}
}

// Options holds optional overrides; nil fields keep the base value.
type Options struct {
	Direction *int
	MimicStep *int
	Transpose *int
	Repeat    *int
	Wrap      *bool
}

// Merge overlays the set fields of o onto base
func (o Options) Merge(base ModeSpecific) ModeSpecific {
	out := base
	if o.Direction != nil {
		out.Direction = *o.Direction
	}
	if o.MimicStep != nil {
		out.MimicStep = *o.MimicStep
	}
	if o.Transpose != nil {
		out.Transpose = *o.Transpose
	}
	if o.Repeat != nil {
		out.Repeat = *o.Repeat
	}
	if o.Wrap != nil {
		out.Wrap = *o.Wrap
	}

	if out.Direction < 0 {
		out.Direction = -1
	} else {
		out.Direction = 1
	}
	if out.Repeat < 1 {
		out.Repeat = 1
	}
	return out
}

// Int and Bool are helpers for building Options literals
func Int(v int) *int    { return &v }
func Bool(v bool) *bool { return &v }
