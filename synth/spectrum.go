package synth

import (
	"math"
	"math/bits"
	"time"

	"github.com/ktye/fft"
	"github.com/viterin/vek"

	"go-songcode/composer"
)

// spectrumOffset skips the attack of the opening bar
const spectrumOffset = 250 * time.Millisecond

// Spectrum renders a window of size frames near the start of plan and
// returns its magnitude spectrum folded into bins, normalized to [0, 1].
// size is rounded up to a power of two.
func (e *Engine) Spectrum(plan *composer.Plan, size, bins int) []float64 {
	if size < 2 || bins < 1 {
		return nil
	}
	size = 1 << bits.Len(uint(size-1))

	f, err := fft.New(size)
	if err != nil {
		return nil
	}

	r := e.Render(plan)
	defer r.Close()

	skip := make([][2]float64, min(e.SampleRate.N(spectrumOffset), r.Len()))
	r.Stream(skip)

	frames := make([][2]float64, size)
	n, _ := r.Stream(frames)

	buf := make([]complex128, size)
	for i := 0; i < n; i++ {
		w := (1 - math.Cos(2*math.Pi*float64(i)/float64(size))) / 2 // Hann
		buf[i] = complex((frames[i][0]+frames[i][1])/2*w, 0)
	}
	buf = f.Transform(buf)

	half := size / 2
	out := make([]float64, bins)
	for b := range out {
		lo := b * half / bins
		hi := max((b+1)*half/bins, lo+1)
		sum := 0.0
		for k := lo; k < hi && k < half; k++ {
			re, im := real(buf[k]), imag(buf[k])
			sum += math.Sqrt(re*re + im*im)
		}
		out[b] = sum / float64(hi-lo)
	}

	if peak := vek.Max(out); peak > 0 {
		vek.DivNumber_Inplace(out, peak)
	}
	return out
}
