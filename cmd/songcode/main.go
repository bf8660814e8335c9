package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"go-songcode/composer"
	"go-songcode/config"
	"go-songcode/debug"
	"go-songcode/midi"
	"go-songcode/preset"
	"go-songcode/queue"
	"go-songcode/sequencer"
	"go-songcode/synth"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", sequencer.Issue(err))
		os.Exit(1)
	}
}

// run dispatches a subcommand; deferred cleanup finishes before main exits
func run(cmd string, args []string) error {
	if dir, err := config.Dir(); err == nil {
		if err := debug.FromEnv(dir, false); err != nil {
			fmt.Fprintf(os.Stderr, "debug log disabled: %v\n", err)
		}
	}
	defer debug.Disable()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch cmd {
	case "plan":
		err = planCmd(args)
	case "render":
		err = renderCmd(ctx, args)
	case "play":
		err = playCmd(ctx, args)
	case "queue":
		err = queueCmd(ctx, args)
	case "ports":
		err = listPorts()
	case "poll":
		pollPorts(ctx)
	case "monitor":
		err = monitor(ctx, args)
	default:
		usage()
		return nil
	}
	if err != nil {
		debug.Log("cli", "%s: %v", cmd, err)
	}
	return err
}

func usage() {
	fmt.Println("songcode - turn a 7-digit code into a song")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  plan [flags] CODE          - Print the composition plan")
	fmt.Println("  render [flags] CODE FILE   - Export to .wav or .mid")
	fmt.Println("  play [flags] CODE          - Play through speakers and/or a MIDI port (-midi, -audio)")
	fmt.Println("  queue [flags] FILE [BASE]  - Export every code listed in FILE (-name template)")
	fmt.Println("  ports                      - List MIDI ports")
	fmt.Println("  poll                       - Watch for MIDI port changes")
	fmt.Println("  monitor PORT               - Print notes arriving on an input port")
	fmt.Println("")
	fmt.Println("Option flags (plan, render, play, queue):")
	fmt.Println("  -scale -preset -tempo -length -gameboy -drums -reverb -delay -bitcrush")
}

// setup loads config and presets and binds the option flags on fs
type setup struct {
	cfg     *config.Config
	presets preset.Store
	opts    composer.Options
}

func newSetup(fs *flag.FlagSet) *setup {
	cfg, err := config.Load()
	if err != nil {
		debug.Log("cli", "config: %v", err)
		cfg = config.DefaultConfig()
	}
	s := &setup{cfg: cfg, presets: preset.NewFileStore(cfg.PresetPath()), opts: cfg.Options()}

	fs.StringVar(&s.opts.ScaleName, "scale", s.opts.ScaleName, "scale name")
	fs.StringVar(&s.opts.PresetName, "preset", s.opts.PresetName, "envelope preset")
	fs.IntVar(&s.opts.TempoOverride, "tempo", s.opts.TempoOverride, "tempo in bpm, 0 derives it from the code")
	fs.IntVar(&s.opts.LengthOverride, "length", s.opts.LengthOverride, "length in seconds, 0 derives it from the code")
	fs.BoolVar(&s.opts.Gameboy, "gameboy", s.opts.Gameboy, "6-bit gameboy degrade")
	fs.BoolVar(&s.opts.Drums, "drums", s.opts.Drums, "drum pattern")
	fs.Float64Var(&s.opts.Reverb, "reverb", s.opts.Reverb, "reverb mix 0-0.95")
	fs.Float64Var(&s.opts.Delay, "delay", s.opts.Delay, "delay mix 0-0.95")
	fs.Float64Var(&s.opts.Bitcrush, "bitcrush", s.opts.Bitcrush, "bitcrush amount 0-1")
	return s
}

func (s *setup) session(player sequencer.Player) *sequencer.Session {
	return sequencer.NewSession(sequencer.Config{
		Engine:  synth.NewEngine(s.cfg.Output.SampleRate),
		Player:  player,
		Presets: s.presets,
		Kit:     midi.GetKit(s.cfg.Output.DrumKit),
	})
}

func parseCode(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing code")
	}
	return strconv.Atoi(args[0])
}

func planCmd(args []string) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	s := newSetup(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	code, err := parseCode(fs.Args())
	if err != nil {
		return err
	}

	plan := s.session(nil).Compose(code, s.opts)
	fmt.Printf("code %s  instruments %d  wave %d  length %ds\n",
		composer.Digits(plan.Code), plan.Parsed.InstrumentCount, plan.Parsed.WaveType, plan.LengthSeconds)
	fmt.Printf("tempo %d bpm  scale %s %v  preset %s  complexity %.2f\n",
		plan.Tempo, plan.ScaleName, plan.Scale, plan.PresetName, plan.Complexity)
	fmt.Printf("chords %v  drums %v\n", plan.ChordProgression, plan.DrumPattern != nil)
	for i, v := range plan.Voices {
		fmt.Printf("  %2d %-7s %-6s %8.2fHz  vol %.2f  cutoff %6.0fHz  adsr %.2f/%.2f/%.2f/%.2f\n",
			i+1, v.Role, v.Waveform, v.BaseFreqHz, v.VolumeFactor, v.CutoffHz,
			v.Envelope.Attack, v.Envelope.Decay, v.Envelope.Sustain, v.Envelope.Release)
	}
	return nil
}

func renderCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	s := newSetup(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	code, err := parseCode(fs.Args())
	if err != nil {
		return err
	}
	path := s.cfg.Output.ExportFile
	if fs.NArg() > 1 {
		path = fs.Arg(1)
	}

	sess := s.session(nil)
	go printStatus(ctx, sess)
	if err := sess.Start(ctx, sequencer.Request{Code: code, Options: s.opts, ExportPath: path}); err != nil {
		return err
	}
	return sess.Wait()
}

func playCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	s := newSetup(fs)
	port := fs.String("midi", s.cfg.Output.MIDIPort, "MIDI output port")
	audio := fs.Bool("audio", s.cfg.Output.PlayAudio, "play through the speakers")
	if err := fs.Parse(args); err != nil {
		return err
	}
	code, err := parseCode(fs.Args())
	if err != nil {
		return err
	}

	var player sequencer.Player
	if *audio {
		player = synth.NewPlayer(synth.NewEngine(s.cfg.Output.SampleRate))
	}
	sess := s.session(player)
	defer sess.Close()
	go printStatus(ctx, sess)

	if *audio {
		if err := sess.WaitReady(ctx, 5*time.Second); err != nil {
			return err
		}
	}
	if err := sess.Start(ctx, sequencer.Request{Code: code, Options: s.opts, MIDIPort: *port, Play: *audio}); err != nil {
		return err
	}
	return sess.Wait()
}

func queueCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("queue", flag.ContinueOnError)
	s := newSetup(fs)
	pattern := fs.String("name", s.cfg.Output.QueueNamePattern, "output name template")
	if err := fs.Parse(args); err != nil {
		return err
	}

	file := s.cfg.QueuePath()
	if fs.NArg() > 0 {
		file = fs.Arg(0)
	}
	base := s.cfg.Output.ExportFile
	if fs.NArg() > 1 {
		base = fs.Arg(1)
	}

	items, err := queue.ReadFile(file)
	if err != nil {
		return err
	}

	sess := s.session(nil)
	go printStatus(ctx, sess)
	if err := sess.RenderQueue(ctx, items, base, *pattern, s.opts, nil); err != nil {
		return err
	}
	return sess.Wait()
}

func printStatus(ctx context.Context, sess *sequencer.Session) {
	for {
		select {
		case line := <-sess.Status():
			fmt.Println(line)
		case <-ctx.Done():
			return
		}
	}
}

func listPorts() error {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Printf("(waiting up to %v...)\n", midi.DefaultPortTimeout)

	ins, err := midi.ListInPorts(midi.DefaultPortTimeout)
	if err != nil {
		fmt.Println("\nTIMEOUT! The MIDI driver is hung.")
		fmt.Println("Fix (macOS): sudo killall coreaudiod midiserver")
		return err
	}
	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p)
	}

	outs, err := midi.ListOutPorts(midi.DefaultPortTimeout)
	if err != nil {
		return err
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p)
	}
	return nil
}

func pollPorts(ctx context.Context) {
	fmt.Println("Watching MIDI outputs. Ctrl+C to exit.")

	w := midi.NewPortWatcher()
	go w.Run(ctx)
	for ev := range w.Events() {
		verb := "added"
		if ev.Type == midi.PortRemoved {
			verb = "removed"
		}
		fmt.Printf("[%s] %s %s\n", time.Now().Format("15:04:05"), verb, ev.Name)
	}
}

func monitor(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		return fmt.Errorf("missing port name")
	}
	in, err := midi.OpenIn(name)
	if err != nil {
		return err
	}
	defer midi.CloseDriver()
	defer in.Close()

	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", in.Name())
	for {
		select {
		case ev := <-in.Events():
			fmt.Println(ev)
		case <-ctx.Done():
			return nil
		}
	}
}
