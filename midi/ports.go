package midi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DefaultPortTimeout bounds a port scan (CoreMIDI can hang)
const DefaultPortTimeout = 3 * time.Second

var (
	// ErrPortNotFound is returned when no output port matches a name
	ErrPortNotFound = errors.New("midi port not found")
	// ErrPortsTimeout is returned when the driver does not answer a scan in time
	ErrPortsTimeout = errors.New("midi port scan timed out")
)

// Sender writes one message to an open output
type Sender func(gomidi.Message) error

type portsResult struct {
	ins  []drivers.In
	outs []drivers.Out
}

// scanPorts lists ports on a goroutine so a hung driver can't block the caller
func scanPorts(timeout time.Duration) (portsResult, error) {
	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r, nil
	case <-time.After(timeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return portsResult{}, ErrPortsTimeout
	}
}

// ListOutPorts returns the names of all MIDI output ports
func ListOutPorts(timeout time.Duration) ([]string, error) {
	r, err := scanPorts(timeout)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(r.outs))
	for i, p := range r.outs {
		names[i] = p.String()
	}
	return names, nil
}

// ListInPorts returns the names of all MIDI input ports
func ListInPorts(timeout time.Duration) ([]string, error) {
	r, err := scanPorts(timeout)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(r.ins))
	for i, p := range r.ins {
		names[i] = p.String()
	}
	return names, nil
}

// MatchPort picks the port for name: an exact match first, then the
// first case-insensitive substring match. It returns -1 if none match.
func MatchPort(ports []string, name string) int {
	if name == "" {
		return -1
	}
	for i, p := range ports {
		if p == name {
			return i
		}
	}
	lower := strings.ToLower(name)
	for i, p := range ports {
		if strings.Contains(strings.ToLower(p), lower) {
			return i
		}
	}
	return -1
}

// OpenOut opens the output port matching name
func OpenOut(name string) (Sender, error) {
	r, err := scanPorts(DefaultPortTimeout)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(r.outs))
	for i, p := range r.outs {
		names[i] = p.String()
	}
	idx := MatchPort(names, name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrPortNotFound, name)
	}

	send, err := gomidi.SendTo(r.outs[idx])
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", names[idx], err)
	}
	return send, nil
}

// AllNotesOff sends All Notes Off on every channel
func AllNotesOff(send Sender) error {
	var errs []error
	for ch := uint8(0); ch < 16; ch++ {
		if err := send(gomidi.ControlChange(ch, 123, 0)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CloseDriver releases the MIDI driver
func CloseDriver() {
	gomidi.CloseDriver()
}
