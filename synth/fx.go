package synth

import (
	"math"

	"go-songcode/composer"
)

// Freeverb comb and allpass lengths at 44.1kHz
var (
	combTuning    = []int{1116, 1188, 1277, 1356}
	allpassTuning = []int{556, 441}
)

const (
	stereoSpread = 23
	reverbInGain = 0.015
)

type comb struct {
	buf      []float64
	i        int
	store    float64
	feedback float64
	damp     float64
}

func (c *comb) process(x float64) float64 {
	y := c.buf[c.i]
	c.store = y*(1-c.damp) + c.store*c.damp
	c.buf[c.i] = x + c.store*c.feedback
	c.i = (c.i + 1) % len(c.buf)
	return y
}

type allpass struct {
	buf []float64
	i   int
}

func (a *allpass) process(x float64) float64 {
	b := a.buf[a.i]
	a.buf[a.i] = x + b*0.5
	a.i = (a.i + 1) % len(a.buf)
	return b - x
}

// reverb is a small Schroeder/Freeverb network for one channel
type reverb struct {
	wet     float64
	combs   []comb
	allpass []allpass
}

func newReverb(wet, size, damp, rate float64, spread int) *reverb {
	scale := rate / 44100
	r := &reverb{wet: wet}
	for _, n := range combTuning {
		r.combs = append(r.combs, comb{
			buf:      make([]float64, max(1, int(float64(n+spread)*scale))),
			feedback: 0.7 + 0.28*size,
			damp:     0.4 * damp,
		})
	}
	for _, n := range allpassTuning {
		r.allpass = append(r.allpass, allpass{buf: make([]float64, max(1, int(float64(n+spread)*scale)))})
	}
	return r
}

func (r *reverb) process(x float64) float64 {
	in := x * reverbInGain
	out := 0.0
	for i := range r.combs {
		out += r.combs[i].process(in)
	}
	for i := range r.allpass {
		out = r.allpass[i].process(out)
	}
	return x*(1-r.wet) + out*r.wet*4
}

// delay is a feedback echo
type delay struct {
	wet, feedback float64
	buf           []float64
	i             int
}

func newDelay(wet, feedback, seconds, rate float64) *delay {
	return &delay{
		wet:      wet,
		feedback: feedback,
		buf:      make([]float64, max(1, int(seconds*rate))),
	}
}

func (d *delay) process(x float64) float64 {
	y := d.buf[d.i]
	d.buf[d.i] = x + y*d.feedback
	d.i = (d.i + 1) % len(d.buf)
	return x + y*d.wet
}

// degrade reduces bit depth and holds samples to fake a lower rate
type degrade struct {
	levels    float64
	rateScale float64
	phase     float64
	held      float64
}

func newDegrade(bits int, rateScale float64) *degrade {
	return &degrade{
		levels:    math.Exp2(float64(max(bits, 1) - 1)),
		rateScale: rateScale,
		phase:     1,
	}
}

func (g *degrade) process(x float64) float64 {
	if g.phase >= 1 {
		g.phase -= math.Floor(g.phase)
		g.held = math.Round(x*g.levels) / g.levels
	}
	g.phase += g.rateScale
	return g.held
}

// chain is the per-channel effect chain: degrade, delay, reverb, limiter
type chain struct {
	degrade *degrade
	delay   *delay
	reverb  *reverb
}

func newChain(fx composer.Effects, beatSeconds, rate float64, spread int) *chain {
	c := &chain{}
	if fx.Degrade {
		c.degrade = newDegrade(fx.BitDepth, fx.RateScale)
	}
	if fx.Delay > 0 {
		c.delay = newDelay(fx.Delay, fx.DelayFeedback, fx.DelayBeats*beatSeconds, rate)
	}
	if fx.Reverb > 0 {
		c.reverb = newReverb(fx.Reverb, fx.ReverbSize, fx.ReverbDamp, rate, spread)
	}
	return c
}

func (c *chain) process(x float64) float64 {
	if c.degrade != nil {
		x = c.degrade.process(x)
	}
	if c.delay != nil {
		x = c.delay.process(x)
	}
	if c.reverb != nil {
		x = c.reverb.process(x)
	}
	return math.Tanh(x)
}
