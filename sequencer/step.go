package sequencer

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	// ErrInvalidState is returned when a Step is advanced with no notes.
	ErrInvalidState = errors.New("invalid state")
	// ErrIndexOutOfRange is returned when editing a note position that doesn't exist
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Note is one slot in a step's sequence: a note number, or a rest when OK is false.
type Note struct {
	Num int
	OK  bool
}

// Rest is the silent slot
var Rest = Note{}

// N returns a sounding note
func N(num int) Note {
	return Note{Num: num, OK: true}
}

// Notes builds a sounding sequence from plain note numbers
func Notes(nums ...int) []Note {
	out := make([]Note, len(nums))
	for i, n := range nums {
		out[i] = N(n)
	}
	return out
}

// Transpose shifts a sounding note, rests stay rests
func (n Note) Transpose(semitones int) Note {
	if !n.OK {
		return n
	}
	return N(n.Num + semitones)
}

func (n Note) String() string {
	if !n.OK {
		return "--"
	}
	return fmt.Sprintf("%d", n.Num)
}

// Rand is the randomness source for RANDOM and DRUNK.
// *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// StepOption configures a Step at construction
type StepOption func(*Step)

// WithRand injects the randomness provider
func WithRand(r Rand) StepOption {
	return func(s *Step) {
		s.rng = r
	}
}

// Step selects the next note of a sequence on every Advance.
// It isn't safe for concurrent use; the owner serializes access.
type Step struct {
	notes   []Note
	mode    Mode
	ms      ModeSpecific
	index   int  // -1 until the first advance
	current Note // cached for repeat holds
	counter int  // ticks spent on the current note, 1..repeat
	queued  int  // -1 = nothing queued
	rng     Rand
}

// NewStep creates a step over notes. opts overlay DefaultModeSpecific.
func NewStep(notes []Note, mode Mode, opts Options, options ...StepOption) *Step {
	if notes == nil {
		notes = []Note{N(0)}
	}
	s := &Step{
		notes:   append([]Note(nil), notes...),
		mode:    ModeDown,
		ms:      opts.Merge(DefaultModeSpecific()),
		index:   -1,
		counter: 1,
		queued:  -1,
	}
	s.SetMode(mode)
	for _, o := range options {
		o(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Reset clears playback position (transport restart)
func (s *Step) Reset() {
	s.index = -1
	s.counter = 1
	s.current = Rest
}

// SetMode switches traversal mode. Unknown modes are ignored.
func (s *Step) SetMode(m Mode) {
	if m.Valid() {
		s.mode = m
	}
}

func (s *Step) Mode() Mode {
	return s.mode
}

// SetNote overwrites the note at idx
func (s *Step) SetNote(idx int, n Note) error {
	if idx < 0 || idx >= len(s.notes) {
		return fmt.Errorf("set note %d of %d: %w", idx, len(s.notes), ErrIndexOutOfRange)
	}
	s.notes[idx] = n
	return nil
}

// AddNote appends a default note (0)
func (s *Step) AddNote() {
	s.notes = append(s.notes, N(0))
}

// DeleteNote removes the note at idx. The current index is re-validated on the next Advance.
func (s *Step) DeleteNote(idx int) error {
	if idx < 0 || idx >= len(s.notes) {
		return fmt.Errorf("delete note %d of %d: %w", idx, len(s.notes), ErrIndexOutOfRange)
	}
	s.notes = append(s.notes[:idx:idx], s.notes[idx+1:]...)
	return nil
}

// SetNotes replaces the whole sequence
func (s *Step) SetNotes(notes []Note) {
	s.notes = append([]Note(nil), notes...)
}

// Notes returns a copy of the sequence
func (s *Step) Notes() []Note {
	return append([]Note(nil), s.notes...)
}

func (s *Step) Len() int {
	return len(s.notes)
}

// Queue plays idx on the next Advance regardless of mode and repeat.
func (s *Step) Queue(idx int) {
	if idx < 0 {
		idx = 0
	}
	s.queued = idx
}

// Queued returns the pending override index, or -1
func (s *Step) Queued() int {
	return s.queued
}

// Index returns the current position (-1 before the first advance)
func (s *Step) Index() int {
	return s.index
}

// Current returns the last produced note
func (s *Step) Current() Note {
	return s.current
}

// ModeSpecific returns a copy of the mode configuration
func (s *Step) ModeSpecific() ModeSpecific {
	return s.ms
}

func (s *Step) SetRepeat(n int) {
	if n < 1 {
		n = 1
	}
	s.ms.Repeat = n
	if s.counter > n {
		s.counter = n
	}
}

func (s *Step) SetWrap(wrap bool) {
	s.ms.Wrap = wrap
}

func (s *Step) SetTranspose(semitones int) {
	s.ms.Transpose = semitones
}

func (s *Step) SetMimicStep(lane int) {
	s.ms.MimicStep = lane
}

// Advance produces the note for this tick.
func (s *Step) Advance() (Note, error) {
	n := len(s.notes)
	if n == 0 {
		return Rest, fmt.Errorf("advance %s step with no notes: %w", s.mode, ErrInvalidState)
	}

	// Manual override wins over mode and repeat
	if s.queued >= 0 {
		s.index = min(s.queued, n-1)
		s.current = s.notes[s.index]
		s.queued = -1
		if s.counter < s.ms.Repeat {
			s.counter++
		}
		return s.current, nil
	}

	if s.counter < s.ms.Repeat {
		s.counter++
		if s.index >= 0 && s.index < n {
			return s.current, nil
		}
	}
	s.counter = 1

	switch s.mode {
	case ModeDown:
		s.index = mod(s.index+1, n)

	case ModeUp:
		if s.index < 0 {
			s.index = n - 1
		} else {
			s.index = mod(s.index-1, n)
		}

	case ModeBoth:
		s.index = s.pingPong(n)

	case ModeRandom:
		s.index = s.rng.Intn(n)

	case ModeDrunk:
		if s.index < 0 {
			s.index = 0
			break
		}
		step := s.rng.Intn(3) - 1
		if !s.ms.Wrap && (s.index+step < 0 || s.index+step >= n) {
			step = -step
		}
		s.index = mod(s.index+step, n)

	default: // ONE, and the modes resolved by the pattern layer
		if s.index < 0 || s.index >= n {
			s.index = 0
		}
	}

	s.current = s.notes[s.index]
	return s.current, nil
}

// pingPong moves one position in the current direction, turning at the ends
// without repeating the endpoint.
func (s *Step) pingPong(n int) int {
	if n == 1 {
		return 0
	}
	next := s.index + s.ms.Direction
	if next >= n {
		s.ms.Direction = -1
		next = n - 2
	}
	if next < 0 {
		s.ms.Direction = 1
		next = 1
	}
	// sequence may have shrunk under us
	if next >= n {
		next = n - 1
	}
	return next
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
