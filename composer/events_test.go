package composer

import (
	"testing"
)

func TestEventsMonotonic(t *testing.T) {
	p := Compose(1234567, DefaultOptions(), nil)
	last := -1.0
	for _, ev := range p.EventsUntil(128) {
		if ev.Beat < last {
			t.Fatalf("event at beat %v after %v", ev.Beat, last)
		}
		last = ev.Beat
	}
	if last < 127 {
		t.Errorf("schedule ended early at beat %v", last)
	}
}

func TestEventsRestartable(t *testing.T) {
	p := Compose(7654321, DefaultOptions(), nil)

	var first []Event
	for ev := range p.Events() {
		if len(first) == 50 {
			break
		}
		first = append(first, ev)
	}

	i := 0
	for ev := range p.Events() {
		if i == len(first) {
			break
		}
		if ev != first[i] {
			t.Fatalf("event %d differs on restart: %+v vs %+v", i, ev, first[i])
		}
		i++
	}
}

func TestEventsScaleClosure(t *testing.T) {
	for _, name := range ScaleNames() {
		opts := DefaultOptions()
		opts.ScaleName = name
		p := Compose(3141592, opts, nil)
		for _, ev := range p.EventsUntil(64) {
			if ev.Kind != EventNote {
				continue
			}
			if !InScale(p.Scale, ev.Note) {
				t.Fatalf("%s: note %d at beat %v not in scale %v", name, ev.Note, ev.Beat, p.Scale)
			}
		}
	}
}

func TestBassOnBeatsOneAndThree(t *testing.T) {
	p := Compose(1234567, DefaultOptions(), nil)
	bass := p.VoicesWithRole(RoleBass)[0]
	for _, ev := range p.EventsUntil(32) {
		if ev.Voice != bass || ev.Kind != EventNote {
			continue
		}
		beatInBar := int(ev.Beat) % 4
		if ev.Beat != float64(int(ev.Beat)) || (beatInBar != 0 && beatInBar != 2) {
			t.Errorf("bass triggered at beat %v", ev.Beat)
		}
	}
}

func TestHarmonyWithoutReplacement(t *testing.T) {
	p := Compose(1234567, DefaultOptions(), nil)
	harmony := map[int]bool{}
	for _, v := range p.VoicesWithRole(RoleHarmony) {
		harmony[v] = true
	}

	perBeat := map[float64]map[int]bool{}
	for _, ev := range p.EventsUntil(32) {
		if !harmony[ev.Voice] {
			continue
		}
		seen := perBeat[ev.Beat]
		if seen == nil {
			seen = map[int]bool{}
			perBeat[ev.Beat] = seen
		}
		if seen[ev.Voice] {
			t.Fatalf("voice %d triggered twice at beat %v", ev.Voice, ev.Beat)
		}
		seen[ev.Voice] = true
	}
	if len(perBeat) != 32 {
		t.Errorf("harmony sounded on %d of 32 beats", len(perBeat))
	}
}

func TestMelodyRests(t *testing.T) {
	p := Compose(2718281, DefaultOptions(), nil)
	vocal := p.VoicesWithRole(RoleVocal)[0]

	var melody []Event
	for _, ev := range p.EventsUntil(64) {
		if ev.Voice == vocal {
			melody = append(melody, ev)
		}
	}
	if len(melody) != 64 {
		t.Fatalf("melody has %d events, want one per beat", len(melody))
	}

	for i, ev := range melody {
		if i%8 == 7 {
			if ev.Kind != EventRest {
				t.Errorf("step %d: want rest, got %+v", i, ev)
			}
			continue
		}
		if ev.Kind != EventNote {
			t.Errorf("step %d: unexpected rest", i)
		}
	}
}

// degreeOf inverts ScaleNote for a voice playing octave octaves up
func degreeOf(scale []int, note, octave int) (int, bool) {
	n := len(scale)
	for d := -2 * n; d < 4*n; d++ {
		if ScaleNote(scale, d)+12*octave == note {
			return d, true
		}
	}
	return 0, false
}

func TestMelodyWalk(t *testing.T) {
	for _, code := range []int{42, 1234567, 2718281, 5550123, 9999999} {
		for _, scale := range ScaleNames() {
			opts := DefaultOptions()
			opts.ScaleName = scale
			p := Compose(code, opts, nil)
			vocal := p.VoicesWithRole(RoleVocal)[0]
			octave := p.Voices[vocal].Octave

			var degrees []int
			for _, ev := range p.EventsUntil(400) {
				if ev.Voice != vocal || ev.Kind != EventNote {
					continue
				}
				d, ok := degreeOf(p.Scale, ev.Note, octave)
				if !ok {
					t.Fatalf("%d/%s: note %d is not a scale degree", code, scale, ev.Note)
				}
				degrees = append(degrees, d)
			}
			if len(degrees) < 300 {
				t.Fatalf("%d/%s: only %d melody notes", code, scale, len(degrees))
			}

			run, dir := 0, 0
			for i := 1; i < len(degrees); i++ {
				delta := degrees[i] - degrees[i-1]
				if delta != 1 && delta != 2 && delta != -1 && delta != -2 {
					t.Fatalf("%d/%s: step %d moves %d degrees", code, scale, i, delta)
				}
				step := 1
				if delta < 0 {
					step = -1
				}
				if step == dir {
					run++
				} else {
					dir, run = step, 1
				}
				if run > 10 {
					t.Fatalf("%d/%s: %d steps in one direction at step %d", code, scale, run, i)
				}
			}
		}
	}
}

func TestDrumEvents(t *testing.T) {
	p := Compose(1234567, DefaultOptions(), nil)
	var kicks, snares, hats int
	for _, ev := range p.EventsUntil(4) {
		if ev.Kind != EventDrum {
			continue
		}
		switch ev.Drum {
		case Kick:
			kicks++
		case Snare:
			snares++
		case Hat:
			hats++
		}
	}
	if kicks != 2 || snares != 2 || hats != 8 {
		t.Errorf("one bar: kicks=%d snares=%d hats=%d, want 2/2/8", kicks, snares, hats)
	}
}
