package midi

import (
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// NoteEvent is a note played on a controller keyboard
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
}

// TriggerInput listens to a keyboard and reports note-ons, used for live
// queueing of step notes.
type TriggerInput struct {
	name     string
	stopFunc func()
	noteChan chan NoteEvent
}

// OpenTriggerInput listens to the first input port whose name contains name
func OpenTriggerInput(name string, timeout time.Duration) (*TriggerInput, error) {
	ins, _, err := scanPorts(timeout)
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(name)
	for _, in := range ins {
		if !strings.Contains(strings.ToLower(in.String()), want) {
			continue
		}

		ti := &TriggerInput{
			name:     in.String(),
			noteChan: make(chan NoteEvent, 32),
		}
		stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
			if evt, ok := parseNoteOn(msg); ok {
				select {
				case ti.noteChan <- evt:
				default:
				}
			}
		})
		if err != nil {
			return nil, fmt.Errorf("open input %q: %w", in.String(), err)
		}
		ti.stopFunc = stop
		return ti, nil
	}
	return nil, fmt.Errorf("input %q: %w", name, ErrUnknownPort)
}

// parseNoteOn ignores note-ons with velocity 0 (running-status note-off)
func parseNoteOn(msg gomidi.Message) (NoteEvent, bool) {
	var channel, note, velocity uint8
	if msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0 {
		return NoteEvent{Note: note, Velocity: velocity, Channel: channel}, true
	}
	return NoteEvent{}, false
}

// QueueIndex maps a played note onto a step position counted from base.
// Returns -1 for notes below base.
func QueueIndex(note, base uint8) int {
	if note < base {
		return -1
	}
	return int(note - base)
}

func (ti *TriggerInput) Name() string {
	return ti.name
}

func (ti *TriggerInput) NoteEvents() <-chan NoteEvent {
	return ti.noteChan
}

func (ti *TriggerInput) Close() error {
	if ti.stopFunc != nil {
		ti.stopFunc()
	}
	close(ti.noteChan)
	return nil
}
