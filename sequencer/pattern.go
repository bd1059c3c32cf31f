package sequencer

import "fmt"

// StepSpec describes one lane of a pattern
type StepSpec struct {
	Notes   []Note
	Mode    Mode
	Options Options
}

// Pattern is a set of steps advanced together, one per lane.
//
// MIMIC, SKIP and MUTE carry no cross-lane behaviour here: Step treats them
// like ONE and Tick reports the lane's own note.
type Pattern struct {
	Lanes []*Step
}

// NewPattern builds one Step per StepSpec
func NewPattern(specs []StepSpec, options ...StepOption) *Pattern {
	p := &Pattern{}
	for _, sp := range specs {
		p.Lanes = append(p.Lanes, NewStep(sp.Notes, sp.Mode, sp.Options, options...))
	}
	return p
}

// DemoPattern is the built-in example: an arpeggio, a repeating bass line and two mimic lanes
func DemoPattern(options ...StepOption) *Pattern {
	return NewPattern([]StepSpec{
		{Notes: Notes(0, 3, 7, -5, -4), Mode: ModeBoth},
		{Notes: Notes(12, 10, 8, 8), Mode: ModeDown, Options: Options{Repeat: Int(4)}},
		{Notes: Notes(0), Mode: ModeMimic, Options: Options{MimicStep: Int(0), Transpose: Int(12)}},
		{Notes: Notes(0), Mode: ModeMimic, Options: Options{MimicStep: Int(1), Transpose: Int(-5)}},
	}, options...)
}

// Tick advances every lane once and returns each lane's note with its transpose applied
func (p *Pattern) Tick() ([]Note, error) {
	out := make([]Note, len(p.Lanes))
	for i, s := range p.Lanes {
		n, err := s.Advance()
		if err != nil {
			return nil, fmt.Errorf("lane %d: %w", i, err)
		}
		out[i] = n.Transpose(s.ModeSpecific().Transpose)
	}
	return out, nil
}

// Reset rewinds every lane
func (p *Pattern) Reset() {
	for _, s := range p.Lanes {
		s.Reset()
	}
}

// Lane returns the step at i, or nil
func (p *Pattern) Lane(i int) *Step {
	if i < 0 || i >= len(p.Lanes) {
		return nil
	}
	return p.Lanes[i]
}
