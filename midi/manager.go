package midi

import (
	"context"
	"slices"
	"sync"
	"time"

	"go-songcode/debug"
)

// PortEvent is emitted when an output port appears or disappears
type PortEvent struct {
	Type PortEventType
	Name string
}

type PortEventType int

const (
	PortAdded PortEventType = iota
	PortRemoved
)

// PortWatcher handles hot-plug detection of MIDI output ports
type PortWatcher struct {
	ports    []string
	mu       sync.RWMutex
	events   chan PortEvent
	pollRate time.Duration
	list     func(time.Duration) ([]string, error)
}

// NewPortWatcher creates a watcher polling the system's output ports
func NewPortWatcher() *PortWatcher {
	return &PortWatcher{
		events:   make(chan PortEvent, 16),
		pollRate: time.Second,
		list:     ListOutPorts,
	}
}

// Events returns a channel of port add/remove events
func (w *PortWatcher) Events() <-chan PortEvent {
	return w.events
}

// Ports returns a snapshot of the known output ports
func (w *PortWatcher) Ports() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.ports)
}

// Run starts the polling loop (blocking - run in goroutine)
func (w *PortWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()
	defer close(w.events)

	// Initial scan
	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *PortWatcher) scan(ctx context.Context) {
	seen, err := w.list(DefaultPortTimeout)
	if err != nil {
		// Hung driver - skip this scan
		debug.LogEvery(10, "midi", "port scan: %v", err)
		return
	}

	w.mu.Lock()
	prev := w.ports
	w.ports = seen
	w.mu.Unlock()

	var events []PortEvent
	for _, name := range seen {
		if !slices.Contains(prev, name) {
			events = append(events, PortEvent{Type: PortAdded, Name: name})
		}
	}
	for _, name := range prev {
		if !slices.Contains(seen, name) {
			events = append(events, PortEvent{Type: PortRemoved, Name: name})
		}
	}

	for _, ev := range events {
		debug.Log("midi", "port %s: %s", map[PortEventType]string{PortAdded: "added", PortRemoved: "removed"}[ev.Type], ev.Name)
		select {
		case w.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
