package synth

import (
	"math"
	"math/rand"

	"go-songcode/composer"
)

const (
	drumLevel   = 0.5
	drumMaxTime = 0.5 // seconds a hit may ring
)

// drumHit is one sounding drum
type drumHit struct {
	sound composer.DrumSound
	t     int // samples since the hit
	phase float64
	hp    highPass
}

// highPass is the complement of a one-pole low-pass
type highPass struct {
	lp onePole
}

func (h *highPass) filter(x float64) float64 {
	return x - h.lp.filter(x)
}

// drumKit synthesizes kick, snare and hat hits
type drumKit struct {
	rate float64
	rng  *rand.Rand
	hits []*drumHit
}

func newDrumKit(rate float64, seed int64) *drumKit {
	return &drumKit{rate: rate, rng: rand.New(rand.NewSource(seed))}
}

func (k *drumKit) hit(s composer.DrumSound) {
	h := &drumHit{sound: s}
	switch s {
	case composer.Snare:
		h.hp = highPass{lp: newOnePole(1000, k.rate)}
	case composer.Hat:
		h.hp = highPass{lp: newOnePole(7000, k.rate)}
	}
	k.hits = append(k.hits, h)
}

func (k *drumKit) next() float64 {
	out := 0.0
	live := k.hits[:0]
	for _, h := range k.hits {
		out += k.sample(h)
		h.t++
		if float64(h.t) < drumMaxTime*k.rate {
			live = append(live, h)
		}
	}
	k.hits = live
	return out * drumLevel
}

func (k *drumKit) sample(h *drumHit) float64 {
	t := float64(h.t) / k.rate
	switch h.sound {
	case composer.Kick:
		// 60Hz body with a short downward sweep at the start
		freq := 60 + 90*math.Exp(-t/0.02)
		h.phase += freq / k.rate
		return math.Sin(2*math.Pi*h.phase) * math.Exp(-t/0.15)
	case composer.Snare:
		noise := h.hp.filter(k.rng.Float64()*2 - 1)
		tone := math.Sin(2 * math.Pi * 180 * t)
		return 0.6*noise*math.Exp(-t/0.08) + 0.3*tone*math.Exp(-t/0.05)
	case composer.Hat:
		return 0.4 * h.hp.filter(k.rng.Float64()*2-1) * math.Exp(-t/0.02)
	}
	return 0
}
