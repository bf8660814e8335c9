package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"go-songcode/config"
	"go-songcode/debug"
	"go-songcode/midi"
	"go-songcode/preset"
	"go-songcode/queue"
	"go-songcode/sequencer"
	"go-songcode/synth"
	"go-songcode/theme"
	"go-songcode/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// run owns every deferred cleanup so main can exit with a status afterwards
func run() error {
	debugFlag := flag.Bool("debug", false, "write debug.log to the config directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if dir, err := config.Dir(); err == nil {
		if err := debug.FromEnv(dir, *debugFlag); err != nil {
			fmt.Printf("Debug log disabled: %v\n", err)
		}
	}
	defer debug.Disable()

	th := theme.New(theme.Load(cfg.UI.Palette))

	presets := preset.NewFileStore(cfg.PresetPath())

	q := queue.New()
	if err := q.Load(cfg.QueuePath()); err != nil && !os.IsNotExist(err) {
		debug.Log("main", "queue: %v", err)
	}

	engine := synth.NewEngine(cfg.Output.SampleRate)
	session := sequencer.NewSession(sequencer.Config{
		Engine:  engine,
		Player:  synth.NewPlayer(engine),
		Presets: presets,
		Kit:     midi.GetKit(cfg.Output.DrumKit),
	})
	// Opening the audio device can take a while; the UI comes up first
	session.Init()
	defer session.Close()

	// Create MIDI port watcher (handles hot-plug)
	watcher := midi.NewPortWatcher()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	m := tui.NewModel(tui.Deps{
		Session: session,
		Engine:  engine,
		Watcher: watcher,
		Config:  cfg,
		Presets: presets,
		Queue:   q,
		Theme:   th,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, err = p.Run()
	return err
}
