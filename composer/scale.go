package composer

import (
	"math"
	"strings"
)

// Roots is the table of root pitches indexed by the first code digit
var Roots = [12]int{48, 50, 52, 53, 55, 57, 59, 60, 62, 64, 65, 67}

// DefaultScale is used for unknown scale names
const DefaultScale = "Major"

var scales = map[string][]int{
	"Major":      {0, 2, 4, 5, 7, 9, 11},
	"Minor":      {0, 2, 3, 5, 7, 8, 10},
	"Pentatonic": {0, 2, 4, 7, 9},
	"Hirajoshi":  {0, 2, 3, 7, 8},
	"Dorian":     {0, 2, 3, 5, 7, 9, 10},
	"Mixolydian": {0, 2, 4, 5, 7, 9, 10},
}

// ScaleNames returns the known scales in display order
func ScaleNames() []string {
	return []string{"Major", "Minor", "Pentatonic", "Hirajoshi", "Dorian", "Mixolydian"}
}

// LookupScale returns the canonical name and intervals for name.
// Unknown names resolve to the major scale with ok = false.
func LookupScale(name string) (canonical string, intervals []int, ok bool) {
	for _, n := range ScaleNames() {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return n, scales[n], true
		}
	}
	return DefaultScale, scales[DefaultScale], false
}

// DeriveScale picks the root from the first code digit and returns the
// absolute MIDI notes of the named scale above it.
func DeriveScale(code int, scaleName string) (root int, notes []int) {
	root = Roots[digitsValue(Digits(code)[0:1])%len(Roots)]
	_, intervals, _ := LookupScale(scaleName)
	notes = make([]int, len(intervals))
	for i, iv := range intervals {
		notes[i] = root + iv
	}
	return root, notes
}

// ScaleNote returns the note for a scale degree that may run past the
// scale length; each wrap moves up (or down) an octave.
func ScaleNote(scale []int, degree int) int {
	n := len(scale)
	oct := degree / n
	idx := degree % n
	if idx < 0 {
		idx += n
		oct--
	}
	return scale[idx] + 12*oct
}

// ChordFromScale builds the triad on degree (degree, +2, +4), shifted by octaves
func ChordFromScale(scale []int, degree, octave int) [3]int {
	n := len(scale)
	degree = ((degree % n) + n) % n
	return [3]int{
		scale[degree] + 12*octave,
		scale[(degree+2)%n] + 12*octave,
		scale[(degree+4)%n] + 12*octave,
	}
}

// ChordTones extends the triad with the scale seventh above 0.3 complexity
// and the scale ninth above 0.6. Extensions sit an octave up.
func ChordTones(scale []int, degree int, complexity float64) []int {
	triad := ChordFromScale(scale, degree, 0)
	tones := triad[:]
	n := len(scale)
	d := ((degree % n) + n) % n
	if complexity > 0.3 {
		tones = append(tones, scale[(d+6)%n]+12)
	}
	if complexity > 0.6 {
		tones = append(tones, scale[(d+8)%n]+12)
	}
	return tones
}

// InScale reports whether note shares a pitch class with a scale member
func InScale(scale []int, note int) bool {
	pc := ((note % 12) + 12) % 12
	for _, s := range scale {
		if ((s%12)+12)%12 == pc {
			return true
		}
	}
	return false
}

// MIDIToHz converts a MIDI note number to a frequency
func MIDIToHz(note int) float64 {
	return 440.0 * math.Pow(2, float64(note-69)/12.0)
}
