package composer

// DrumSound identifies a drum voice
type DrumSound int

const (
	Kick DrumSound = iota
	Snare
	Hat
)

func (d DrumSound) String() string {
	return [...]string{"kick", "snare", "hat"}[d]
}

// DrumStep is one eighth-note step of the drum pattern
type DrumStep struct {
	Kick  bool
	Snare bool
	Hat   bool
}

// DrumStepsPerBar is the pattern resolution (eighth notes in 4/4)
const DrumStepsPerBar = 8

// DefaultDrumPattern returns the four-on-the-floor-ish bar:
// kick on 1 and 3, snare on 2 and 4, closed hat on every eighth.
func DefaultDrumPattern() []DrumStep {
	kick := [DrumStepsPerBar]bool{true, false, false, false, true, false, false, false}
	snare := [DrumStepsPerBar]bool{false, false, true, false, false, false, true, false}

	steps := make([]DrumStep, DrumStepsPerBar)
	for i := range steps {
		steps[i] = DrumStep{Kick: kick[i], Snare: snare[i], Hat: true}
	}
	return steps
}

// Hits returns the drums sounding on a step in kick, snare, hat order
func (s DrumStep) Hits() []DrumSound {
	var hits []DrumSound
	if s.Kick {
		hits = append(hits, Kick)
	}
	if s.Snare {
		hits = append(hits, Snare)
	}
	if s.Hat {
		hits = append(hits, Hat)
	}
	return hits
}
