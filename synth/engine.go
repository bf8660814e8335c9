// Package synth renders composition plans to audio with beep.
package synth

import (
	"iter"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"

	"go-songcode/composer"
	"go-songcode/debug"
)

// DefaultSampleRate is used when the engine is built with a zero rate
const DefaultSampleRate = beep.SampleRate(44100)

// Engine turns plans into beep streamers
type Engine struct {
	SampleRate beep.SampleRate
}

// NewEngine creates an engine at the given sample rate
func NewEngine(rate int) *Engine {
	if rate <= 0 {
		return &Engine{SampleRate: DefaultSampleRate}
	}
	return &Engine{SampleRate: beep.SampleRate(rate)}
}

// Format is the output format used for export and playback
func (e *Engine) Format() beep.Format {
	return beep.Format{SampleRate: e.SampleRate, NumChannels: 2, Precision: 2}
}

// Supports reports whether the engine has an oscillator for w
func (e *Engine) Supports(w composer.Waveform) bool {
	switch w {
	case composer.Sine, composer.Square, composer.Saw, composer.Noise:
		return true
	}
	return false
}

// Render is a running rendering of one plan, streamed with beep. The event
// schedule is released when the last frame is streamed; call Close if the
// render is abandoned before it ends.
type Render struct {
	plan *composer.Plan
	rate float64

	voices []*voice
	drums  *drumKit
	left   *chain
	right  *chain
	mix    float64

	next    func() (composer.Event, bool)
	stop    func()
	pending composer.Event
	hasNext bool

	pos   int
	total int

	closeOnce sync.Once
}

// Render builds the voices and effect chain for plan
func (e *Engine) Render(plan *composer.Plan) *Render {
	rate := float64(e.SampleRate)
	r := &Render{
		plan:  plan,
		rate:  rate,
		drums: newDrumKit(rate, plan.Seed+int64(len(plan.Voices))),
		left:  newChain(plan.Effects, plan.BeatSeconds, rate, 0),
		right: newChain(plan.Effects, plan.BeatSeconds, rate, stereoSpread),
		total: e.SampleRate.N(plan.Length()),
		mix:   0.6 / math.Sqrt(float64(max(len(plan.Voices), 1))),
	}

	n := len(plan.Voices)
	for i, vs := range plan.Voices {
		wave := vs.Waveform
		if !e.Supports(wave) {
			debug.Log("synth", "voice %d: waveform %v unsupported, using sine", i, wave)
			wave = composer.Sine
		}
		pan := 0.0
		if n > 1 {
			pan = -0.6 + 1.2*float64(i)/float64(n-1)
		}
		r.voices = append(r.voices, newVoice(vs, wave, pan, rate, plan.Seed+int64(i)))
	}

	r.next, r.stop = iter.Pull(plan.Events())
	r.advance()
	return r
}

func (r *Render) advance() {
	r.pending, r.hasNext = r.next()
}

// Position is the number of frames rendered so far
func (r *Render) Position() int { return r.pos }

// Len is the total number of frames in the render
func (r *Render) Len() int { return r.total }

// Elapsed is the play time rendered so far
func (r *Render) Elapsed() time.Duration {
	return time.Duration(float64(r.pos) / r.rate * float64(time.Second))
}

func (r *Render) eventFrame(ev composer.Event) int {
	return int(ev.Beat * r.plan.BeatSeconds * r.rate)
}

func (r *Render) apply(ev composer.Event) {
	switch ev.Kind {
	case composer.EventNote:
		gate := max(1, int(ev.Gate*r.plan.BeatSeconds*r.rate))
		r.voices[ev.Voice].noteOn(ev.FreqHz, gate)
	case composer.EventRest:
		r.voices[ev.Voice].noteOff()
	case composer.EventDrum:
		r.drums.hit(ev.Drum)
	}
}

func (r *Render) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if r.pos >= r.total {
			r.Close()
			return i, i > 0
		}

		for r.hasNext && r.eventFrame(r.pending) <= r.pos {
			r.apply(r.pending)
			r.advance()
		}

		var l, rr float64
		for _, v := range r.voices {
			s := v.next()
			l += s * v.panL
			rr += s * v.panR
		}
		d := r.drums.next()
		l = l*r.mix + d
		rr = rr*r.mix + d

		samples[i][0] = r.left.process(l)
		samples[i][1] = r.right.process(rr)
		r.pos++
	}
	return len(samples), true
}

var _ beep.Streamer = (*Render)(nil)

func (r *Render) Err() error { return nil }

// Close stops the event schedule
func (r *Render) Close() {
	r.closeOnce.Do(func() {
		r.stop()
		r.hasNext = false
	})
}
