package midi

import (
	"sort"

	"go-songcode/composer"
)

// DrumKit maps the plan's drum sounds to MIDI notes
type DrumKit struct {
	Name  string
	Notes [3]uint8 // kick, snare, closed hat
}

// DefaultKit is used for unknown kit names
const DefaultKit = "gm"

// Kits contains all available drum kit mappings
var Kits = map[string]DrumKit{
	"gm":   {Name: "General MIDI", Notes: [3]uint8{36, 38, 42}},
	"rd8":  {Name: "Behringer RD-8", Notes: [3]uint8{36, 40, 42}}, // RD-8 snare is 40, not 38
	"tr8s": {Name: "Roland TR-8S", Notes: [3]uint8{36, 38, 42}},
	"808":  {Name: "TR-808 style", Notes: [3]uint8{35, 40, 44}},
}

// GetKit returns a kit by key, falling back to General MIDI
func GetKit(key string) DrumKit {
	if kit, ok := Kits[key]; ok {
		return kit
	}
	return Kits[DefaultKit]
}

// KitNames returns kit keys sorted alphabetically
func KitNames() []string {
	names := make([]string, 0, len(Kits))
	for k := range Kits {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Note returns the MIDI note for a drum sound
func (k DrumKit) Note(d composer.DrumSound) uint8 {
	if int(d) < 0 || int(d) >= len(k.Notes) {
		return k.Notes[0]
	}
	return k.Notes[d]
}
