// Package sequencer runs render sessions: exporting, playing and
// dispatching composition plans to MIDI in the background.
package sequencer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go-songcode/composer"
	"go-songcode/debug"
	"go-songcode/midi"
	"go-songcode/preset"
	"go-songcode/synth"
)

// Player plays a plan on an audio device
type Player interface {
	Init() error
	Play(ctx context.Context, plan *composer.Plan) error
	Stop()
}

// Config wires a session to its collaborators
type Config struct {
	Engine  *synth.Engine
	Player  Player       // nil disables audio playback
	Presets preset.Store // nil uses the built-in presets
	Kit     midi.DrumKit
	OpenOut func(name string) (midi.Sender, error) // defaults to midi.OpenOut
}

// Request is one render: any combination of export, playback and MIDI
type Request struct {
	Code       int
	Options    composer.Options
	ExportPath string // .wav or .mid; empty skips export
	MIDIPort   string // empty skips MIDI
	Play       bool
}

// Session owns the audio and MIDI resources and runs at most one
// render at a time on a worker goroutine.
type Session struct {
	cfg Config

	ready    atomic.Bool
	readyCh  chan struct{}
	initErr  error
	initOnce sync.Once

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	plan    *composer.Plan
	lastErr error

	progress progress
	status   chan string
}

// NewSession creates a session. Call Init to start the audio engine.
func NewSession(cfg Config) *Session {
	if cfg.Engine == nil {
		cfg.Engine = synth.NewEngine(0)
	}
	if cfg.Kit.Name == "" {
		cfg.Kit = midi.GetKit(midi.DefaultKit)
	}
	if cfg.OpenOut == nil {
		cfg.OpenOut = midi.OpenOut
	}
	return &Session{
		cfg:     cfg,
		readyCh: make(chan struct{}),
		status:  make(chan string, 16),
	}
}

// Init starts the audio engine on a goroutine; Ready flips when it is done
func (s *Session) Init() {
	s.initOnce.Do(func() {
		go func() {
			if s.cfg.Player == nil {
				s.initErr = engineUnavailable(nil)
			} else if err := s.cfg.Player.Init(); err != nil {
				s.initErr = engineUnavailable(err)
			}
			if s.initErr != nil {
				debug.Log("session", "engine init: %v", s.initErr)
			}
			s.ready.Store(true)
			close(s.readyCh)
			if s.initErr == nil {
				s.notify("Audio ready")
			} else {
				s.notify(Issue(s.initErr))
			}
		}()
	})
}

// Ready reports whether engine initialization has finished
func (s *Session) Ready() bool {
	return s.ready.Load()
}

// WaitReady blocks until the engine is initialized. It returns
// ErrEngineUnavailable if initialization failed or took longer than timeout.
func (s *Session) WaitReady(ctx context.Context, timeout time.Duration) error {
	s.Init()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.readyCh:
		return s.initErr
	case <-timer.C:
		return engineUnavailable(fmt.Errorf("not ready after %v", timeout))
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status delivers human readable status lines. Lines are dropped when
// nobody is reading.
func (s *Session) Status() <-chan string {
	return s.status
}

func (s *Session) notify(msg string) {
	debug.Log("session", "status: %s", msg)
	select {
	case s.status <- msg:
	default:
	}
}

// Running reports whether a render is in progress
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Plan returns the plan of the current or last render
func (s *Session) Plan() *composer.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// Progress returns a snapshot of the running render
func (s *Session) Progress() Progress {
	return s.progress.snapshot()
}

// Err returns the error of the last finished render
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Compose builds the plan for code with the session's presets
func (s *Session) Compose(code int, opts composer.Options) *composer.Plan {
	var presets map[string]preset.Envelope
	if s.cfg.Presets != nil {
		p, err := s.cfg.Presets.Load()
		if err != nil {
			debug.Log("session", "presets unavailable, using defaults: %v", err)
		} else {
			presets = p
		}
	}
	return composer.Compose(code, opts, presets)
}

// begin claims the session for a worker
func (s *Session) begin(ctx context.Context, plan *composer.Plan) (context.Context, chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, nil, deviceBusy()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.plan = plan
	s.lastErr = nil
	return ctx, s.done, nil
}

// finish releases the session and records the outcome
func (s *Session) finish(done chan struct{}, err error) {
	s.mu.Lock()
	s.running = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.lastErr = err
	s.mu.Unlock()
	s.progress.end()
	close(done)
}

// Start begins a render in the background. It returns ErrDeviceBusy while
// another render runs, ErrEngineUnavailable if playback was requested but
// audio failed to start, and ErrPortNotFound for an unknown MIDI port.
func (s *Session) Start(ctx context.Context, req Request) error {
	if req.Play {
		s.Init()
		if s.Ready() && s.initErr != nil {
			return s.initErr
		}
	}

	plan := s.Compose(req.Code, req.Options)

	// Claim the session before touching the port so a busy session
	// never opens an output
	ctx, done, err := s.begin(ctx, plan)
	if err != nil {
		return err
	}

	var send midi.Sender
	if req.MIDIPort != "" {
		out, err := s.cfg.OpenOut(req.MIDIPort)
		if err != nil {
			err = portError(req.MIDIPort, err)
			s.finish(done, err)
			return err
		}
		send = out
	}

	s.progress.begin(plan.Code, label(req), plan.Length())
	go func() {
		err := s.render(ctx, plan, req, send)
		s.finish(done, err)
	}()
	return nil
}

func label(req Request) string {
	var parts []string
	if req.ExportPath != "" {
		parts = append(parts, "export")
	}
	if req.Play {
		parts = append(parts, "play")
	}
	if req.MIDIPort != "" {
		parts = append(parts, "midi")
	}
	if len(parts) == 0 {
		return "idle"
	}
	return strings.Join(parts, "+")
}

// render runs one request to completion on the worker goroutine
func (s *Session) render(ctx context.Context, plan *composer.Plan, req Request, send midi.Sender) error {
	code := composer.Digits(plan.Code)
	debug.Log("session", "render %s: tempo=%d length=%ds voices=%d scale=%s preset=%s",
		code, plan.Tempo, plan.LengthSeconds, len(plan.Voices), plan.ScaleName, plan.PresetName)

	if req.ExportPath != "" {
		s.notify(fmt.Sprintf("Rendering %s...", code))
		if err := s.export(req.ExportPath, plan); err != nil {
			s.notify(Issue(err))
			return err
		}
		s.notify(fmt.Sprintf("Exported %s to %s", code, req.ExportPath))
	}

	if !req.Play && send == nil {
		return nil
	}

	if req.Play {
		select {
		case <-s.readyCh:
		case <-ctx.Done():
			return ctx.Err()
		}
		if s.initErr != nil {
			s.notify(Issue(s.initErr))
			return s.initErr
		}
	}

	s.progress.label(label(Request{Play: req.Play, MIDIPort: req.MIDIPort}), plan.Code)
	s.notify(fmt.Sprintf("Playing %s (%d bpm, %ds)", code, plan.Tempo, plan.LengthSeconds))

	var wg sync.WaitGroup
	var playErr, midiErr error

	if req.Play {
		wg.Add(1)
		go func() {
			defer wg.Done()
			playErr = s.cfg.Player.Play(ctx, plan)
		}()
	}

	if send != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			events := midi.PlanEvents(plan, plan.Beats(), s.cfg.Kit)
			midiErr = newDispatcher(send, plan.Tempo, events).run(ctx)
			midi.AllNotesOff(send)
		}()
	}

	wg.Wait()

	if ctx.Err() != nil {
		s.notify("Stopped")
		return nil
	}
	if playErr != nil {
		err := engineUnavailable(playErr)
		s.notify(Issue(err))
		return err
	}
	if midiErr != nil {
		return midiErr
	}
	s.notify(fmt.Sprintf("Finished %s", code))
	return nil
}

func (s *Session) export(path string, plan *composer.Plan) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		err = midi.ExportSMF(path, plan, s.cfg.Kit)
	default:
		err = s.cfg.Engine.ExportWAV(path, plan)
	}
	if err != nil {
		return exportError(path, err)
	}
	return nil
}

// Stop cancels the running render and waits for the worker to exit
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	running := s.running
	s.mu.Unlock()

	if !running {
		return
	}
	cancel()
	if s.cfg.Player != nil {
		s.cfg.Player.Stop()
	}
	<-done
}

// Wait blocks until the current render, if any, has finished and returns its error
func (s *Session) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
	return s.Err()
}

// Close stops any render and releases the MIDI driver
func (s *Session) Close() {
	s.Stop()
	midi.CloseDriver()
}
