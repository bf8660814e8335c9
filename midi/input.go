package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Input listens to a MIDI input port, typically a loopback of the output
// the session plays to
type Input struct {
	name     string
	stopFunc func()
	events   chan Event

	mu     sync.Mutex
	closed bool
}

func newInput(name string) *Input {
	return &Input{name: name, events: make(chan Event, 64)}
}

// OpenIn starts listening on the input port matching name
func OpenIn(name string) (*Input, error) {
	r, err := scanPorts(DefaultPortTimeout)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(r.ins))
	for i, p := range r.ins {
		names[i] = p.String()
	}
	idx := MatchPort(names, name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrPortNotFound, name)
	}

	in := newInput(names[idx])
	stop, err := gomidi.ListenTo(r.ins[idx], in.receive)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	in.stopFunc = stop
	return in, nil
}

// receive is the driver callback. Notes arriving after Close, or while
// the reader is behind, are dropped.
func (in *Input) receive(msg gomidi.Message, timestampms int32) {
	var channel, note, velocity uint8
	var ev Event
	switch {
	case msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0:
		ev = Event{Tick: int(timestampms), Type: NoteOn, Channel: channel, Note: note, Velocity: velocity}
	case msg.GetNoteOn(&channel, &note, &velocity), msg.GetNoteOff(&channel, &note, &velocity):
		ev = Event{Tick: int(timestampms), Type: NoteOff, Channel: channel, Note: note}
	default:
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return
	}
	select {
	case in.events <- ev:
	default:
	}
}

// Name is the port actually opened
func (in *Input) Name() string { return in.name }

// Events delivers received notes. Tick holds the driver timestamp in ms.
// The channel is closed by Close.
func (in *Input) Events() <-chan Event { return in.events }

func (in *Input) Close() error {
	if in.stopFunc != nil {
		in.stopFunc()
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.closed {
		in.closed = true
		close(in.events)
	}
	return nil
}
