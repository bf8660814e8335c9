package sequencer

import (
	"errors"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"go-songcode/midi"
)

var (
	// ErrEngineUnavailable means audio output could not be started
	ErrEngineUnavailable = errors.New("render engine unavailable")
	// ErrDeviceBusy means a render is already running
	ErrDeviceBusy = errors.New("device busy")
	// ErrPortNotFound means the requested MIDI output does not exist
	ErrPortNotFound = midi.ErrPortNotFound
)

// Error kinds, readable with ftag.Get
const (
	KindEngine ftag.Kind = "engine_unavailable"
	KindBusy   ftag.Kind = "device_busy"
	KindPort   ftag.Kind = "port_not_found"
	KindExport ftag.Kind = "export_failed"
)

func engineUnavailable(cause error) error {
	if cause == nil {
		cause = ErrEngineUnavailable
	} else {
		cause = errors.Join(ErrEngineUnavailable, cause)
	}
	return fault.Wrap(cause,
		ftag.With(KindEngine),
		fmsg.WithDesc("audio engine unavailable", "Audio output is not available"),
	)
}

func deviceBusy() error {
	return fault.Wrap(ErrDeviceBusy,
		ftag.With(KindBusy),
		fmsg.WithDesc("render already running", "Already playing, stop first"),
	)
}

func portError(name string, err error) error {
	kind := ftag.Internal
	issue := "Could not open MIDI port " + name
	if errors.Is(err, ErrPortNotFound) {
		kind = KindPort
		issue = "No MIDI port named " + name
	}
	return fault.Wrap(err, ftag.With(kind), fmsg.WithDesc("open midi output", issue))
}

func exportError(path string, err error) error {
	return fault.Wrap(err, ftag.With(KindExport), fmsg.WithDesc("export", "Could not write "+path))
}

// Issue returns the user-facing text of err
func Issue(err error) string {
	if err == nil {
		return ""
	}
	if issue := fmsg.GetIssue(err); issue != "" {
		return issue
	}
	return err.Error()
}
