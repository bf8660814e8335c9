package midi

import (
	"cmp"
	"math"
	"slices"

	"go-songcode/composer"
)

// drumGate is how long drum notes are held, in ticks
const drumGate = PPQ / 8

// VoiceChannel maps a plan voice to a melodic channel, skipping the drum channel.
// Plans can have more voices than there are melodic channels, so voices
// 15 apart share a channel; PlanEvents keeps their notes from cutting each
// other off.
func VoiceChannel(voice int) uint8 {
	ch := uint8(voice % 15)
	if ch >= DrumChannel {
		ch++
	}
	return ch
}

// Velocity scales a voice volume factor into 1..127
func Velocity(volume float64) uint8 {
	v := int(math.Round(40 + 80*volume/1.05))
	return uint8(min(max(v, 1), 127))
}

type sounding struct {
	note    uint8
	offTick int
	active  bool
}

// PlanEvents converts the plan's trigger schedule up to beats into sorted
// note on/off events. A voice retriggered before its gate ends is cut off
// at the new note, and every note is released by the last tick. When voices
// sharing a channel hold the same note, only the last release sends NoteOff.
func PlanEvents(plan *composer.Plan, beats float64, kit DrumKit) []Event {
	end := int(beats * PPQ)
	state := make([]sounding, len(plan.Voices))
	var out []Event

	release := func(v int, tick int) {
		s := &state[v]
		if !s.active {
			return
		}
		out = append(out, Event{Tick: min(tick, s.offTick), Type: NoteOff, Channel: VoiceChannel(v), Note: s.note})
		s.active = false
	}

	for ev := range plan.Events() {
		if ev.Beat >= beats {
			break
		}
		tick := int(ev.Beat * PPQ)

		switch ev.Kind {
		case composer.EventNote:
			release(ev.Voice, tick)
			note := uint8(min(max(ev.Note, 0), 127))
			out = append(out, Event{
				Tick:     tick,
				Type:     NoteOn,
				Channel:  VoiceChannel(ev.Voice),
				Note:     note,
				Velocity: Velocity(plan.Voices[ev.Voice].VolumeFactor),
			})
			state[ev.Voice] = sounding{
				note:    note,
				offTick: tick + max(1, int(ev.Gate*PPQ)),
				active:  true,
			}
		case composer.EventRest:
			release(ev.Voice, tick)
		case composer.EventDrum:
			note := kit.Note(ev.Drum)
			out = append(out,
				Event{Tick: tick, Type: NoteOn, Channel: DrumChannel, Note: note, Velocity: 100},
				Event{Tick: min(tick+drumGate, end), Type: NoteOff, Channel: DrumChannel, Note: note},
			)
		}
	}

	for v := range state {
		release(v, end)
	}

	// Offs sort ahead of ons on the same tick so a retrigger is heard
	slices.SortStableFunc(out, func(a, b Event) int {
		if c := cmp.Compare(a.Tick, b.Tick); c != 0 {
			return c
		}
		return cmp.Compare(a.Type, b.Type)
	})
	return mergeShared(out)
}

// mergeShared drops the NoteOffs of sorted events that would silence a
// note another voice still holds on the same channel
func mergeShared(events []Event) []Event {
	held := make(map[[2]uint8]int)
	out := events[:0]
	for _, ev := range events {
		key := [2]uint8{ev.Channel, ev.Note}
		switch ev.Type {
		case NoteOn:
			held[key]++
		case NoteOff:
			if held[key] == 0 {
				continue
			}
			held[key]--
			if held[key] > 0 {
				continue
			}
		}
		out = append(out, ev)
	}
	return out
}
