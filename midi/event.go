package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// DefaultVelocity is used for both note-on and note-off
const DefaultVelocity uint8 = 0x7F

// Event is a symbolic note event sent to an output port
type Event struct {
	Type     uint8 // NoteOn, NoteOff
	Channel  uint8 // 0-15
	Note     uint8
	Velocity uint8
}

// Message encodes the event for gomidi
func (e Event) Message() gomidi.Message {
	if e.Type == NoteOff {
		return gomidi.NoteOffVelocity(e.Channel, e.Note, e.Velocity)
	}
	return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
}

func (e Event) String() string {
	kind := "on"
	if e.Type == NoteOff {
		kind = "off"
	}
	return fmt.Sprintf("%s ch=%d note=%d vel=%d", kind, e.Channel+1, e.Note, e.Velocity)
}
