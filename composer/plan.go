package composer

import (
	"math/rand"
	"time"

	"go-songcode/debug"
	"go-songcode/preset"
)

// Waveform is the oscillator shape of a voice
type Waveform int

const (
	Sine Waveform = iota
	Square
	Saw
	Noise
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Saw:
		return "saw"
	case Noise:
		return "noise"
	}
	return "unknown"
}

// WaveformFor maps a code wave type to a waveform.
// A miss yields Noise with ok = false.
func WaveformFor(waveType int) (Waveform, bool) {
	if waveType < 0 || waveType > int(Noise) {
		return Noise, false
	}
	return Waveform(waveType), true
}

// Role describes what a voice plays in the schedule
type Role int

const (
	RoleBass Role = iota
	RoleHarmony
	RolePad
	RoleVocal // formant layer, carries the melody
	RoleArp
)

func (r Role) String() string {
	return [...]string{"bass", "harmony", "pad", "vocal", "arp"}[r]
}

// VoiceSpec is the static description of one voice
type VoiceSpec struct {
	Role         Role
	Waveform     Waveform
	Degree       int // scale degree of the base note
	Octave       int // octave offset from the scale
	Note         int // base MIDI note
	BaseFreqHz   float64
	Envelope     preset.Envelope
	VolumeFactor float64 // [0.35, 1.05)
	CutoffHz     float64 // low-pass cutoff used by the renderer
}

// Effects holds the effect chain settings of a plan
type Effects struct {
	Reverb     float64 // wet mix, 0 = off
	ReverbSize float64
	ReverbDamp float64

	Delay         float64 // wet mix, 0 = off
	DelayBeats    float64
	DelayFeedback float64

	Degrade   bool
	BitDepth  int
	RateScale float64
}

// Options is the named option set accompanying a code
type Options struct {
	ScaleName      string
	TempoOverride  int // 0 = derive from code
	Gameboy        bool
	PresetName     string
	Reverb         float64
	Delay          float64
	Bitcrush       float64
	Drums          bool
	LengthOverride int // 0 = derive from code
}

// DefaultOptions mirrors the synth's initial settings
func DefaultOptions() Options {
	return Options{
		ScaleName:  DefaultScale,
		PresetName: preset.DefaultName,
		Reverb:     0.4,
		Delay:      0.2,
		Drums:      true,
	}
}

// ChordProgression is the I-IV-V-I degree sequence
var ChordProgression = []int{0, 3, 4, 0}

// Plan is a finished composition. It is never mutated after BuildPlan
// returns; renderers only read from it.
type Plan struct {
	Code             int
	Parsed           ParsedCode
	Seed             int64
	Tempo            int
	BeatSeconds      float64
	LengthSeconds    int
	Root             int
	ScaleName        string
	Scale            []int // absolute MIDI notes
	Complexity       float64
	ChordProgression []int
	Voices           []VoiceSpec
	DrumPattern      []DrumStep // nil when drums are off
	Effects          Effects
	PresetName       string
}

// Length is the playing time of the plan
func (p *Plan) Length() time.Duration {
	return time.Duration(p.LengthSeconds) * time.Second
}

// Beats is the plan length in beats
func (p *Plan) Beats() float64 {
	return float64(p.LengthSeconds) / p.BeatSeconds
}

// VoicesWithRole returns voice indices having role r
func (p *Plan) VoicesWithRole(r Role) []int {
	var out []int
	for i, v := range p.Voices {
		if v.Role == r {
			out = append(out, i)
		}
	}
	return out
}

// Compose runs the whole planner for code. presets may be nil.
func Compose(code int, opts Options, presets map[string]preset.Envelope) *Plan {
	parsed := ParseCode(code)
	tempo := DeriveTempo(code, opts.TempoOverride)
	root, scale := DeriveScale(code, opts.ScaleName)
	return BuildPlan(parsed, root, scale, tempo, SeedRNG(code), opts, presets)
}

// BuildPlan allocates the voices, effect settings and drum pattern.
// It draws only from rng, so equal inputs give equal plans.
func BuildPlan(parsed ParsedCode, root int, scale []int, tempo int, rng *rand.Rand, opts Options, presets map[string]preset.Envelope) *Plan {
	if presets == nil {
		presets = preset.Defaults()
	}
	presetName, env := preset.Resolve(presets, opts.PresetName)
	if presetName != opts.PresetName {
		debug.Log("composer", "preset %q not found, using %q", opts.PresetName, presetName)
	}
	scaleName, _, _ := LookupScale(opts.ScaleName)
	if len(scale) == 0 {
		debug.Log("composer", "empty scale, using %s on %d", DefaultScale, root)
		scaleName = DefaultScale
		scale = make([]int, len(scales[DefaultScale]))
		for i, iv := range scales[DefaultScale] {
			scale[i] = root + iv
		}
	}

	code := parsed.Value()
	cx := Complexity(code)

	length := parsed.LengthSeconds
	if opts.LengthOverride > 0 {
		length = opts.LengthOverride
	}

	p := &Plan{
		Code:             code,
		Parsed:           parsed,
		Seed:             int64(code),
		Tempo:            tempo,
		BeatSeconds:      60.0 / float64(tempo),
		LengthSeconds:    length,
		Root:             root,
		ScaleName:        scaleName,
		Scale:            append([]int(nil), scale...),
		Complexity:       cx,
		ChordProgression: append([]int(nil), ChordProgression...),
		Effects:          buildEffects(opts),
		PresetName:       presetName,
	}

	wave, ok := WaveformFor(parsed.WaveType)
	if !ok {
		debug.Log("composer", "wave type %d has no table, using noise", parsed.WaveType)
	}

	b := voiceBuilder{scale: scale, env: env, cx: cx, rng: rng}
	for i := 0; i < parsed.InstrumentCount; i++ {
		if i == 0 {
			p.Voices = append(p.Voices, b.voice(RoleBass, wave, 0, -1))
			continue
		}
		p.Voices = append(p.Voices, b.voice(RoleHarmony, wave, i%len(scale), rng.Intn(3)-1))
	}

	// Auxiliary layers are always present
	padOctave := -rng.Intn(2)
	p.Voices = append(p.Voices, b.voice(RolePad, Sine, 0, padOctave))
	p.Voices = append(p.Voices, b.voice(RoleVocal, Saw, 0, 1))
	arpOctave := 1 + rng.Intn(2)
	p.Voices = append(p.Voices, b.voice(RoleArp, Square, 0, arpOctave))

	if opts.Drums {
		p.DrumPattern = DefaultDrumPattern()
	}

	return p
}

type voiceBuilder struct {
	scale []int
	env   preset.Envelope
	cx    float64
	rng   *rand.Rand
}

func (b *voiceBuilder) jitter() float64 {
	return 0.8 + 0.4*b.rng.Float64()
}

func (b *voiceBuilder) voice(role Role, wave Waveform, degree, octave int) VoiceSpec {
	note := b.scale[degree] + 12*octave
	env := preset.Envelope{
		Attack:  b.env.Attack * b.jitter(),
		Decay:   b.env.Decay * b.jitter(),
		Sustain: clampFloat(b.env.Sustain*b.jitter(), 0, 1),
		Release: b.env.Release * b.jitter(),
		Mul:     b.env.Mul * b.jitter(),
	}
	return VoiceSpec{
		Role:         role,
		Waveform:     wave,
		Degree:       degree,
		Octave:       octave,
		Note:         note,
		BaseFreqHz:   MIDIToHz(note),
		Envelope:     env,
		VolumeFactor: 0.35 + 0.7*b.rng.Float64(),
		CutoffHz:     800 + 1200*b.cx + 1600*b.rng.Float64(),
	}
}

func buildEffects(opts Options) Effects {
	fx := Effects{
		Reverb:        clampFloat(opts.Reverb, 0, 0.95),
		ReverbSize:    0.8,
		ReverbDamp:    0.5,
		Delay:         clampFloat(opts.Delay, 0, 0.95),
		DelayBeats:    0.75,
		DelayFeedback: 0.3,
		BitDepth:      16,
		RateScale:     1,
	}
	crush := clampFloat(opts.Bitcrush, 0, 1)
	switch {
	case opts.Gameboy:
		fx.Degrade = true
		fx.BitDepth = 6
		fx.RateScale = 0.125
	case crush > 0:
		fx.Degrade = true
		fx.BitDepth = max(1, int(16-crush*15))
		fx.RateScale = 1 - crush*0.5
	}
	return fx
}
