package synth

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-songcode/composer"
)

func shortPlan(code int, seconds int) *composer.Plan {
	opts := composer.DefaultOptions()
	opts.LengthOverride = seconds
	return composer.Compose(code, opts, nil)
}

func drain(t *testing.T, r *Render) [][2]float64 {
	t.Helper()
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := r.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
		if len(out) > 10*r.Len() {
			t.Fatal("render does not end")
		}
	}
}

func TestSupports(t *testing.T) {
	e := NewEngine(0)
	if e.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %d", e.SampleRate)
	}
	for _, w := range []composer.Waveform{composer.Sine, composer.Square, composer.Saw, composer.Noise} {
		if !e.Supports(w) {
			t.Errorf("Supports(%v) = false", w)
		}
	}
	if e.Supports(composer.Waveform(9)) {
		t.Error("Supports(9) = true")
	}
}

func TestRenderLengthAndRange(t *testing.T) {
	e := NewEngine(8000)
	plan := shortPlan(1234567, 2)
	r := e.Render(plan)
	defer r.Close()

	samples := drain(t, r)
	if len(samples) != 16000 {
		t.Fatalf("rendered %d frames, want 16000", len(samples))
	}

	loud := 0.0
	for _, s := range samples {
		for _, v := range s {
			if v < -1 || v > 1 || math.IsNaN(v) {
				t.Fatalf("sample %v out of range", v)
			}
			loud = math.Max(loud, math.Abs(v))
		}
	}
	if loud < 0.001 {
		t.Error("render is silent")
	}
	if r.Elapsed() != 2*time.Second {
		t.Errorf("Elapsed = %v", r.Elapsed())
	}
}

func TestRenderDeterministic(t *testing.T) {
	e := NewEngine(8000)
	a := drain(t, e.Render(shortPlan(42, 1)))
	b := drain(t, e.Render(shortPlan(42, 1)))
	if len(a) != len(b) {
		t.Fatalf("lengths %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("frame %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestRenderUnsupportedWaveform(t *testing.T) {
	plan := shortPlan(7, 1)
	plan.Voices[0].Waveform = composer.Waveform(9)
	r := NewEngine(8000).Render(plan)
	if got := len(drain(t, r)); got != 8000 {
		t.Errorf("rendered %d frames", got)
	}
}

func TestRenderCloseEarly(t *testing.T) {
	r := NewEngine(8000).Render(shortPlan(99, 30))
	buf := make([][2]float64, 100)
	r.Stream(buf)
	r.Close()
	r.Close()
	if _, ok := r.Stream(buf); !ok {
		t.Error("closed render should keep streaming until its length")
	}
}

func TestRenderReleasesScheduleAtEnd(t *testing.T) {
	r := NewEngine(8000).Render(shortPlan(5, 1))
	drain(t, r)
	if r.hasNext {
		t.Error("event schedule still pulled after the last frame")
	}
	if n, ok := r.Stream(make([][2]float64, 10)); n != 0 || ok {
		t.Errorf("Stream after end = %d, %v", n, ok)
	}
}

func TestADSR(t *testing.T) {
	rate := 1000.0
	e := newADSR(0.01, 0.01, 0.5, 0.01, rate)
	e.trigger()

	peak := 0.0
	for i := 0; i < 12; i++ {
		peak = math.Max(peak, e.next())
	}
	if peak != 1 {
		t.Errorf("attack peak = %v, want 1", peak)
	}
	for i := 0; i < 20; i++ {
		e.next()
	}
	if e.stage != stageSustain || e.level != 0.5 {
		t.Errorf("after decay: stage %v level %v", e.stage, e.level)
	}

	e.noteOff()
	for i := 0; i < 20; i++ {
		e.next()
	}
	if e.stage != stageIdle || e.level != 0 {
		t.Errorf("after release: stage %v level %v", e.stage, e.level)
	}
}

func TestDegradeQuantizes(t *testing.T) {
	g := newDegrade(2, 1)
	for _, x := range []float64{0.1, 0.3, -0.8, 0.74} {
		y := g.process(x)
		if math.Mod(y*2, 1) != 0 {
			t.Errorf("process(%v) = %v, not a multiple of 0.5", x, y)
		}
	}

	held := newDegrade(16, 0.5)
	first := held.process(0.25)
	if got := held.process(0.9); got != first {
		t.Errorf("half rate should hold %v, got %v", first, got)
	}
}

func TestDelayEcho(t *testing.T) {
	d := newDelay(1, 0, 0.004, 1000)
	out := []float64{d.process(1), d.process(0), d.process(0), d.process(0), d.process(0)}
	want := []float64{1, 0, 0, 0, 1}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out = %v, want %v", out, want)
			break
		}
	}
}

func TestExportWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "song.wav")
	e := NewEngine(8000)
	if err := e.ExportWAV(path, shortPlan(1234567, 1)); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Errorf("not a RIFF file: %q", data[:min(4, len(data))])
	}
	// 8000 frames * 2 channels * 2 bytes plus header
	if len(data) < 8000*4 {
		t.Errorf("file has %d bytes", len(data))
	}
}

func TestSpectrum(t *testing.T) {
	e := NewEngine(8000)
	mags := e.Spectrum(shortPlan(1234567, 2), 1000, 16)
	if len(mags) != 16 {
		t.Fatalf("len = %d", len(mags))
	}
	peak := 0.0
	for _, v := range mags {
		if v < 0 || v > 1 {
			t.Errorf("bin %v out of range", v)
		}
		peak = math.Max(peak, v)
	}
	if peak != 1 {
		t.Errorf("peak = %v, want 1", peak)
	}

	if e.Spectrum(shortPlan(1, 1), 1, 8) != nil {
		t.Error("size 1 should give no spectrum")
	}
}

func TestPlayerPlaysAndStops(t *testing.T) {
	if os.Getenv("SONGCODE_AUDIO_TEST") == "" {
		t.Skip("set SONGCODE_AUDIO_TEST=1 to use the audio device")
	}

	p := NewPlayer(NewEngine(44100))
	if err := p.Init(); err != nil {
		t.Logf("no audio device (expected in test environment): %v", err)
		return
	}

	done := make(chan error, 1)
	go func() { done <- p.Play(context.Background(), shortPlan(1234567, 10)) }()

	time.Sleep(200 * time.Millisecond)
	p.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Play: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not end playback")
	}
}
