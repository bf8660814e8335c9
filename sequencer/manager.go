package sequencer

import (
	"context"
	"runtime"
	"time"

	"go-songcode/debug"
	"go-songcode/midi"
)

// Look-ahead for queue filling (in ticks) - about 250ms worth at 120 BPM
const lookAheadTicks = midi.PPQ / 2

// fillInterval is how often the queue is topped up
const fillInterval = 50 * time.Millisecond

// dispatcher plays a sorted event list to a MIDI output in real time.
// A fill loop moves events into a small queue ahead of the playhead and
// the output loop sends each one when it comes due.
type dispatcher struct {
	send   midi.Sender
	clock  Clock
	events []midi.Event

	queue chan midi.Event
	sent  int
	fails int
}

func newDispatcher(send midi.Sender, tempo int, events []midi.Event) *dispatcher {
	return &dispatcher{
		send:   send,
		clock:  Clock{Tempo: tempo},
		events: events,
		queue:  make(chan midi.Event, 256),
	}
}

// run blocks until every event is sent or ctx is done
func (d *dispatcher) run(ctx context.Context) error {
	d.clock.T0 = time.Now()

	fillCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go d.fillLoop(fillCtx)

	err := d.outputLoop(ctx)
	debug.Log("dispatch", "done: sent=%d failed=%d err=%v", d.sent, d.fails, err)
	return err
}

// fillLoop ensures the queue is filled ahead of the playhead
func (d *dispatcher) fillLoop(ctx context.Context) {
	defer close(d.queue)

	ticker := time.NewTicker(fillInterval)
	defer ticker.Stop()

	next := 0
	for next < len(d.events) {
		target := d.clock.TimeToTick(time.Now()) + lookAheadTicks
		for next < len(d.events) && d.events[next].Tick <= target {
			select {
			case d.queue <- d.events[next]:
				next++
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// outputLoop reads from the queue and sends MIDI messages
func (d *dispatcher) outputLoop(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		var ev midi.Event
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok = <-d.queue:
			if !ok {
				return ctx.Err()
			}
		}

		if wait := time.Until(d.clock.TickToTime(ev.Tick)); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
				// Ready
			}
		}

		if err := d.send(ev.Message()); err != nil {
			d.fails++
			debug.LogEvery(50, "dispatch", "send failed: %v", err)
			continue
		}
		d.sent++
		debug.LogEvery(200, "dispatch", "sent %s", ev)
	}
}
