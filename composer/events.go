package composer

import (
	"iter"
	"math/rand"
)

// EventKind says what a trigger event does
type EventKind int

const (
	EventNote EventKind = iota // set voice frequency and retrigger its envelope
	EventRest                  // release the voice
	EventDrum                  // fire a drum sound
)

// Event is a beat-relative trigger for the renderer
type Event struct {
	Beat   float64
	Kind   EventKind
	Voice  int // index into Plan.Voices, -1 for drums
	Note   int
	FreqHz float64
	Drum   DrumSound
	Gate   float64 // beats until release
}

const (
	ticksPerBeat = 4 // sixteenth notes
	beatsPerBar  = 4
	ticksPerBar  = ticksPerBeat * beatsPerBar

	melodyRestEvery = 8
	eventSeedSalt   = 0x5eed
)

// Events returns the open-ended schedule of the plan. Each call starts over
// from beat zero and yields the same sequence; stop ranging to end it.
func (p *Plan) Events() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		s := newScheduler(p)
		for tick := 0; ; tick++ {
			for _, ev := range s.step(tick) {
				if !yield(ev) {
					return
				}
			}
		}
	}
}

// EventsUntil collects events with Beat < beats
func (p *Plan) EventsUntil(beats float64) []Event {
	var out []Event
	for ev := range p.Events() {
		if ev.Beat >= beats {
			break
		}
		out = append(out, ev)
	}
	return out
}

type scheduler struct {
	plan *Plan
	rng  *rand.Rand
	buf  []Event

	bass    []int
	harmony []int
	pad     []int
	vocal   []int
	arp     []int

	// melody walk
	melodyDegree int
	melodyDir    int
	untilReverse int
	melodyStep   int

	arpIndex int
}

func newScheduler(p *Plan) *scheduler {
	s := &scheduler{
		plan:      p,
		rng:       rand.New(rand.NewSource(p.Seed ^ eventSeedSalt)),
		bass:      p.VoicesWithRole(RoleBass),
		harmony:   p.VoicesWithRole(RoleHarmony),
		pad:       p.VoicesWithRole(RolePad),
		vocal:     p.VoicesWithRole(RoleVocal),
		arp:       p.VoicesWithRole(RoleArp),
		melodyDir: 1,
	}
	s.untilReverse = s.reverseInterval()
	return s
}

// reverseInterval is the 6-10 step run before the melody turns around
func (s *scheduler) reverseInterval() int {
	return 6 + s.rng.Intn(5)
}

func (s *scheduler) note(voice, note int, beat, gate float64) {
	note += 12 * s.plan.Voices[voice].Octave
	s.buf = append(s.buf, Event{
		Beat:   beat,
		Kind:   EventNote,
		Voice:  voice,
		Note:   note,
		FreqHz: MIDIToHz(note),
		Gate:   gate,
	})
}

func (s *scheduler) step(tick int) []Event {
	s.buf = s.buf[:0]
	p := s.plan

	beat := float64(tick) / ticksPerBeat
	bar := tick / ticksPerBar
	beatInBar := (tick / ticksPerBeat) % beatsPerBar
	onBeat := tick%ticksPerBeat == 0

	chord := ChordTones(p.Scale, p.ChordProgression[bar%len(p.ChordProgression)], p.Complexity)

	// Drums on eighth notes
	if len(p.DrumPattern) > 0 && tick%(ticksPerBeat/2) == 0 {
		st := p.DrumPattern[(tick/(ticksPerBeat/2))%len(p.DrumPattern)]
		for _, d := range st.Hits() {
			s.buf = append(s.buf, Event{Beat: beat, Kind: EventDrum, Voice: -1, Drum: d, Gate: 0.5})
		}
	}

	if onBeat {
		// Bass on beats 1 and 3
		if beatInBar == 0 || beatInBar == 2 {
			for _, v := range s.bass {
				s.note(v, chord[0], beat, 1.5)
			}
		}

		// Harmony: a few voices, sampled without replacement
		if n := len(s.harmony); n > 0 {
			k := 1 + s.rng.Intn(min(3, n))
			for j, idx := range s.rng.Perm(n)[:k] {
				s.note(s.harmony[idx], chord[(j+1)%len(chord)], beat, 1)
			}
		}

		// Pad holds the chord for the bar
		if beatInBar == 0 {
			for _, v := range s.pad {
				s.note(v, chord[0], beat, beatsPerBar)
			}
		}

		s.melody(beat)
	}

	// Arpeggio on every sixteenth
	for _, v := range s.arp {
		s.note(v, chord[s.arpIndex%len(chord)], beat, 1.0/ticksPerBeat)
	}
	s.arpIndex++

	return s.buf
}

// melody walks the scale by one or two degrees per beat, turning around
// every 6-10 steps and resting every eighth step
func (s *scheduler) melody(beat float64) {
	if len(s.vocal) == 0 {
		return
	}
	step := s.melodyStep
	s.melodyStep++

	if step%melodyRestEvery == melodyRestEvery-1 {
		for _, v := range s.vocal {
			s.buf = append(s.buf, Event{Beat: beat, Kind: EventRest, Voice: v})
		}
		return
	}

	n := len(s.plan.Scale)
	delta := 1 + s.rng.Intn(2)
	next := s.melodyDegree + s.melodyDir*delta
	// Stay within two octaves of scale degrees
	if next < 0 || next >= 2*n {
		s.melodyDir = -s.melodyDir
		next = s.melodyDegree + s.melodyDir*delta
	}
	s.melodyDegree = next

	s.untilReverse--
	if s.untilReverse <= 0 {
		s.melodyDir = -s.melodyDir
		s.untilReverse = s.reverseInterval()
	}

	for _, v := range s.vocal {
		s.note(v, ScaleNote(s.plan.Scale, s.melodyDegree), beat, 1)
	}
}
