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

// PPQ is the tick resolution of exported and dispatched events
const PPQ = 960

// DrumChannel is channel 10, zero based
const DrumChannel uint8 = 9

// Event is a timed note message
type Event struct {
	Tick     int // ticks from the start of the plan at PPQ
	Type     uint8
	Channel  uint8 // zero based
	Note     uint8
	Velocity uint8
}

// Message converts the event to a gomidi message
func (e Event) Message() gomidi.Message {
	if e.Type == NoteOn {
		return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
	}
	return gomidi.NoteOff(e.Channel, e.Note)
}

func (e Event) String() string {
	kind := "off"
	if e.Type == NoteOn {
		kind = "on"
	}
	return fmt.Sprintf("%d ch%d %s %d/%d", e.Tick, e.Channel+1, kind, e.Note, e.Velocity)
}
