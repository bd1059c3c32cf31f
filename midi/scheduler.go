package midi

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go-arp/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Sender writes a message to an open output port (see gomidi.SendTo)
type Sender func(gomidi.Message) error

// SchedulerOption configures a NoteScheduler
type SchedulerOption func(*NoteScheduler)

// WithClock replaces the wall clock used for note-offs
func WithClock(c Clock) SchedulerOption {
	return func(s *NoteScheduler) {
		s.clock = c
	}
}

// WithChannel sets the MIDI channel (0-15)
func WithChannel(ch uint8) SchedulerOption {
	return func(s *NoteScheduler) {
		s.channel = ch & 0x0F
	}
}

// WithObserver is called with every event after it is sent
func WithObserver(fn func(Event)) SchedulerOption {
	return func(s *NoteScheduler) {
		s.observer = fn
	}
}

// NoteScheduler turns a note into a note-on now and a note-off later.
//
// Note-offs are never deduplicated or cancelled: a second trigger on the same
// pitch schedules its own off, and whichever fires last silences the pitch.
// Sends, immediate and deferred, go through one lock so they never interleave.
type NoteScheduler struct {
	mu       sync.Mutex // guards out, channel
	out      Sender
	channel  uint8
	velocity uint8
	clock    Clock
	observer func(Event)

	sendMu  sync.Mutex
	pending sync.WaitGroup
	offs    atomic.Int64
}

// NewNoteScheduler creates a scheduler sending to out (may be nil until SetOutput)
func NewNoteScheduler(out Sender, opts ...SchedulerOption) *NoteScheduler {
	s := &NoteScheduler{
		out:      out,
		velocity: DefaultVelocity,
		clock:    RealClock,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetOutput switches the port for future triggers. Scheduled note-offs keep
// the port they were issued to.
func (s *NoteScheduler) SetOutput(out Sender) {
	s.mu.Lock()
	s.out = out
	s.mu.Unlock()
}

// HoldDuration is round(total * gatePercent / 100)
func HoldDuration(total time.Duration, gatePercent int) time.Duration {
	if gatePercent < 0 {
		gatePercent = 0
	}
	return time.Duration(math.Round(float64(total) * float64(gatePercent) / 100))
}

// Trigger sends note-on for note now and note-off after the gated part of
// totalStepDuration. Notes outside 0-127 (rests included) are ignored.
func (s *NoteScheduler) Trigger(note int, totalStepDuration time.Duration, gatePercent int) error {
	if note < 0 || note > 127 {
		return nil
	}

	s.mu.Lock()
	out, ch := s.out, s.channel
	s.mu.Unlock()
	if out == nil {
		debug.LogEvery(50, "sched", "no output, dropping note %d", note)
		return nil
	}

	on := Event{Type: NoteOn, Channel: ch, Note: uint8(note), Velocity: s.velocity}
	if err := s.send(out, on); err != nil {
		return fmt.Errorf("note on %d: %w", note, err)
	}

	off := Event{Type: NoteOff, Channel: ch, Note: uint8(note), Velocity: s.velocity}
	hold := HoldDuration(totalStepDuration, gatePercent)

	s.pending.Add(1)
	s.offs.Add(1)
	s.clock.AfterFunc(hold, func() {
		defer s.pending.Done()
		defer s.offs.Add(-1)
		if err := s.send(out, off); err != nil {
			debug.Log("sched", "note off %d failed: %v", off.Note, err)
		}
	})
	return nil
}

func (s *NoteScheduler) send(out Sender, e Event) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if err := out(e.Message()); err != nil {
		return err
	}
	if s.observer != nil {
		s.observer(e)
	}
	return nil
}

// Pending returns how many note-offs haven't fired yet
func (s *NoteScheduler) Pending() int {
	return int(s.offs.Load())
}

// Wait blocks until every scheduled note-off has been sent
func (s *NoteScheduler) Wait() {
	s.pending.Wait()
}
