package synth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"go-songcode/composer"
	"go-songcode/debug"
)

// Player plays plans on the default audio device
type Player struct {
	Engine *Engine
	Volume float64 // 0..1

	once    sync.Once
	initErr error

	mu      sync.Mutex
	current *playback
}

type playback struct {
	render *Render
	done   chan struct{}
	stop   chan struct{}
	once   sync.Once
}

// NewPlayer creates a player for engine at full volume
func NewPlayer(engine *Engine) *Player {
	return &Player{Engine: engine, Volume: 1}
}

// Init opens the speaker. It only does work on the first call; later
// calls return the first result.
func (p *Player) Init() error {
	p.once.Do(func() {
		rate := p.Engine.SampleRate
		start := time.Now()
		if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
			p.initErr = fmt.Errorf("speaker init: %w", err)
			debug.Log("synth", "speaker init failed: %v", err)
			return
		}
		debug.Log("synth", "speaker ready at %d Hz in %v", rate, time.Since(start))
	})
	return p.initErr
}

// Play renders plan to the speaker and blocks until it finishes, Stop is
// called or ctx is cancelled.
func (p *Player) Play(ctx context.Context, plan *composer.Plan) error {
	if err := p.Init(); err != nil {
		return err
	}

	pb := &playback{
		render: p.Engine.Render(plan),
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
	}
	defer pb.render.Close()

	p.mu.Lock()
	if p.current != nil {
		p.mu.Unlock()
		return fmt.Errorf("player busy")
	}
	p.current = pb
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.current = nil
		p.mu.Unlock()
	}()

	gain := &effects.Gain{Streamer: pb.render, Gain: p.Volume - 1}
	speaker.Play(beep.Seq(gain, beep.Callback(func() {
		close(pb.done)
	})))

	select {
	case <-pb.done:
		return nil
	case <-pb.stop:
		speaker.Clear()
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

// Stop ends the current playback, if any
func (p *Player) Stop() {
	p.mu.Lock()
	pb := p.current
	p.mu.Unlock()
	if pb != nil {
		pb.once.Do(func() { close(pb.stop) })
	}
}

// Playing reports whether a plan is being played
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}
