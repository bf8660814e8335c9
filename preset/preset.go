package preset

import (
	"sort"
	"strings"
)

// Envelope is a named ADSR record with an output multiplier
type Envelope struct {
	Attack  float64 `json:"attack" yaml:"attack"`
	Decay   float64 `json:"decay" yaml:"decay"`
	Sustain float64 `json:"sustain" yaml:"sustain"`
	Release float64 `json:"release" yaml:"release"`
	Mul     float64 `json:"mul" yaml:"mul"`
}

// DefaultName is the fallback preset for unknown names
const DefaultName = "Pad"

// Template is the starting point for a newly saved preset
var Template = Envelope{Attack: 0.1, Decay: 0.3, Sustain: 0.7, Release: 0.5, Mul: 0.5}

// Defaults returns a fresh copy of the built-in presets
func Defaults() map[string]Envelope {
	return map[string]Envelope{
		"Pad":               {Attack: 0.5, Decay: 0.8, Sustain: 0.7, Release: 1.2, Mul: 0.5},
		"Bass":              {Attack: 0.01, Decay: 0.1, Sustain: 0.9, Release: 0.3, Mul: 0.9},
		"Pluck":             {Attack: 0.001, Decay: 0.05, Sustain: 0.0, Release: 0.2, Mul: 0.6},
		"Lead":              {Attack: 0.01, Decay: 0.05, Sustain: 0.8, Release: 0.3, Mul: 0.4},
		"Noise":             {Attack: 0.001, Decay: 0.05, Sustain: 0.0, Release: 0.1, Mul: 0.5},
		"Ambient Cloud":     {Attack: 1.2, Decay: 1.0, Sustain: 0.9, Release: 2.5, Mul: 0.35},
		"Chiptune Bassline": {Attack: 0.001, Decay: 0.02, Sustain: 0.7, Release: 0.08, Mul: 0.9},
	}
}

// DefaultNames lists the built-in presets in display order
func DefaultNames() []string {
	return []string{"Pad", "Bass", "Pluck", "Lead", "Noise", "Ambient Cloud", "Chiptune Bassline"}
}

// Names returns preset names sorted alphabetically
func Names(presets map[string]Envelope) []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve looks up name, falling back to the default preset.
// The returned name is the one actually used.
func Resolve(presets map[string]Envelope, name string) (string, Envelope) {
	if env, ok := presets[name]; ok {
		return name, env
	}
	// Case-insensitive second chance (names typed on the command line)
	for _, n := range Names(presets) {
		if strings.EqualFold(n, name) {
			return n, presets[n]
		}
	}
	if env, ok := presets[DefaultName]; ok {
		return DefaultName, env
	}
	return DefaultName, Defaults()[DefaultName]
}
