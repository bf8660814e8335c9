package synth

import (
	"math"
	"math/rand"

	"go-songcode/composer"
)

// oscillator is a phase accumulator producing one waveform
type oscillator struct {
	wave  composer.Waveform
	freq  float64
	phase float64
	rate  float64
	rng   *rand.Rand
}

func (o *oscillator) next() float64 {
	var val float64
	switch o.wave {
	case composer.Sine:
		val = math.Sin(2 * math.Pi * o.phase)
	case composer.Square:
		if o.phase < 0.5 {
			val = 1.0
		} else {
			val = -1.0
		}
	case composer.Saw:
		val = 2.0 * (o.phase - 0.5)
	case composer.Noise:
		val = o.rng.Float64()*2 - 1
	}

	o.phase += o.freq / o.rate
	o.phase -= math.Floor(o.phase) // keep in [0, 1)
	return val
}

type envStage int

const (
	stageIdle envStage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

// minEnvTime keeps envelope segments from clicking
const minEnvTime = 0.002

// adsr is a linear attack/decay/sustain/release envelope. Retriggering
// starts the attack from the current level.
type adsr struct {
	attack, decay, sustain, release float64 // seconds, except sustain level
	rate                            float64

	stage   envStage
	level   float64
	relStep float64
}

func newADSR(a, d, s, r, rate float64) adsr {
	return adsr{
		attack:  math.Max(a, minEnvTime),
		decay:   math.Max(d, minEnvTime),
		sustain: math.Min(math.Max(s, 0), 1),
		release: math.Max(r, minEnvTime),
		rate:    rate,
	}
}

func (e *adsr) trigger() { e.stage = stageAttack }

func (e *adsr) noteOff() {
	if e.stage == stageIdle {
		return
	}
	e.stage = stageRelease
	e.relStep = e.level / (e.release * e.rate)
}

func (e *adsr) next() float64 {
	switch e.stage {
	case stageAttack:
		e.level += 1 / (e.attack * e.rate)
		if e.level >= 1 {
			e.level = 1
			e.stage = stageDecay
		}
	case stageDecay:
		e.level -= (1 - e.sustain) / (e.decay * e.rate)
		if e.level <= e.sustain {
			e.level = e.sustain
			e.stage = stageSustain
		}
	case stageRelease:
		e.level -= e.relStep
		if e.level <= 0 {
			e.level = 0
			e.stage = stageIdle
		}
	}
	return e.level
}

// onePole is a one-pole low-pass filter
type onePole struct {
	a, y float64
}

func newOnePole(cutoff, rate float64) onePole {
	return onePole{a: 1 - math.Exp(-2*math.Pi*cutoff/rate)}
}

func (f *onePole) filter(x float64) float64 {
	f.y += f.a * (x - f.y)
	return f.y
}

// voice renders one VoiceSpec of a plan
type voice struct {
	osc  oscillator
	env  adsr
	lp   onePole
	gain float64 // volume factor times envelope multiplier

	gate       int // samples until note off, -1 when not gated
	panL, panR float64
}

func newVoice(vs composer.VoiceSpec, wave composer.Waveform, pan, rate float64, seed int64) *voice {
	e := vs.Envelope
	return &voice{
		osc: oscillator{
			wave: wave,
			freq: vs.BaseFreqHz,
			rate: rate,
			rng:  rand.New(rand.NewSource(seed)),
		},
		env:  newADSR(e.Attack, e.Decay, e.Sustain, e.Release, rate),
		lp:   newOnePole(vs.CutoffHz, rate),
		gain: vs.VolumeFactor * e.Mul,
		gate: -1,
		panL: math.Cos((pan + 1) * math.Pi / 4),
		panR: math.Sin((pan + 1) * math.Pi / 4),
	}
}

func (v *voice) noteOn(freq float64, gateSamples int) {
	v.osc.freq = freq
	v.env.trigger()
	v.gate = gateSamples
}

func (v *voice) noteOff() {
	v.env.noteOff()
	v.gate = -1
}

func (v *voice) next() float64 {
	if v.gate > 0 {
		v.gate--
		if v.gate == 0 {
			v.noteOff()
		}
	}
	if v.env.stage == stageIdle {
		return 0
	}
	return v.lp.filter(v.osc.next()) * v.env.next() * v.gain
}
