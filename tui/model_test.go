package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"go-songcode/config"
	"go-songcode/midi"
	"go-songcode/preset"
	"go-songcode/queue"
	"go-songcode/sequencer"
	"go-songcode/synth"
	"go-songcode/theme"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	t.Setenv(config.DirEnv, t.TempDir())

	engine := synth.NewEngine(8000)
	store := preset.NewMemoryStore(preset.Defaults())
	cfg := config.DefaultConfig()
	cfg.UI.LastCode = 1234567
	cfg.Output.ExportFile = t.TempDir() + "/out.mid"

	return NewModel(Deps{
		Session: sequencer.NewSession(sequencer.Config{Engine: engine, Presets: store}),
		Engine:  engine,
		Config:  cfg,
		Presets: store,
		Queue:   queue.New(),
		Theme:   theme.New(theme.Load("mono")),
	})
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestCodeEntry(t *testing.T) {
	m := newTestModel(t)
	if m.plan.Code != 1234567 {
		t.Fatalf("initial code = %d", m.plan.Code)
	}

	m = press(t, m, "c")
	if m.mode != inputCode || m.input.Value() != "1234567" {
		t.Fatalf("mode %d value %q", m.mode, m.input.Value())
	}
	m.input.SetValue("42")
	m = press(t, m, "enter")
	if m.mode != inputNone || m.plan.Code != 42 {
		t.Errorf("after entry: mode %d code %d", m.mode, m.plan.Code)
	}

	m = press(t, m, "c")
	m.input.SetValue("abc")
	m = press(t, m, "enter")
	if m.code != 42 || !strings.Contains(m.status, "Not a number") {
		t.Errorf("bad entry: code %d status %q", m.code, m.status)
	}

	m = press(t, m, "t", "esc")
	if m.mode != inputNone || m.opts.TempoOverride != 0 {
		t.Error("esc did not cancel")
	}
}

func TestTempoAndLength(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "t")
	m.input.SetValue("500")
	m = press(t, m, "enter", "l")
	m.input.SetValue("3")
	m = press(t, m, "enter")

	if m.plan.Tempo != 300 {
		t.Errorf("tempo = %d, want clamp to 300", m.plan.Tempo)
	}
	if m.plan.LengthSeconds != 3 {
		t.Errorf("length = %d", m.plan.LengthSeconds)
	}
}

func TestCycleScaleAndPreset(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "s")
	if m.plan.ScaleName != "Minor" {
		t.Errorf("scale = %s", m.plan.ScaleName)
	}
	m = press(t, m, "S", "S")
	if m.plan.ScaleName != "Mixolydian" {
		t.Errorf("scale back = %s", m.plan.ScaleName)
	}

	m = press(t, m, "p")
	if m.plan.PresetName != "Pluck" {
		t.Errorf("preset = %s", m.plan.PresetName)
	}
}

func TestToggles(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "d", "g", "B", "B", "v")
	if m.opts.Drums || m.plan.DrumPattern != nil {
		t.Error("drums still on")
	}
	if !m.opts.Gameboy || m.plan.Effects.BitDepth != 6 {
		t.Errorf("gameboy effects = %+v", m.plan.Effects)
	}
	if m.opts.Bitcrush != 0.1 {
		t.Errorf("bitcrush = %v", m.opts.Bitcrush)
	}
	if m.opts.Reverb != 0.35 {
		t.Errorf("reverb = %v", m.opts.Reverb)
	}
}

func TestQueueKeys(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a", "r", "a", "r", "a")
	if m.Queue.Len() != 3 || m.cursor != 2 {
		t.Fatalf("len %d cursor %d", m.Queue.Len(), m.cursor)
	}
	first := m.Queue.Items()[0]

	m = press(t, m, "k", "k", "k", "backspace")
	if m.Queue.Len() != 2 || m.cursor != 0 || m.Queue.Items()[0] == first {
		t.Errorf("remove: items %v cursor %d", m.Queue.Items(), m.cursor)
	}

	m = press(t, m, "w")
	items, err := queue.ReadFile(m.Config.QueuePath())
	if err != nil || len(items) != 2 {
		t.Errorf("saved queue %v, %v", items, err)
	}
}

func TestQueueRenderEmpty(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "R")
	if m.status != "queue is empty" {
		t.Errorf("status = %q", m.status)
	}
}

func TestPresetSaveAndDelete(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "n")
	m.input.SetValue("  Mine ")
	m = press(t, m, "enter")
	if m.plan.PresetName != "Mine" {
		t.Fatalf("preset = %s (%s)", m.plan.PresetName, m.status)
	}
	presets, _ := m.Presets.Load()
	if _, ok := presets["Mine"]; !ok {
		t.Error("preset not stored")
	}

	m = press(t, m, "D")
	presets, _ = m.Presets.Load()
	if _, ok := presets["Mine"]; ok || m.plan.PresetName != preset.DefaultName {
		t.Errorf("delete left %v, current %s", preset.Names(presets), m.plan.PresetName)
	}
}

func TestPortEvents(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(PortEventMsg{Type: midi.PortAdded, Name: "loop"})
	m = next.(Model)
	m = press(t, m, "m")
	if m.port != "loop" {
		t.Fatalf("port = %q", m.port)
	}
	next, _ = m.Update(PortEventMsg{Type: midi.PortRemoved, Name: "loop"})
	m = next.(Model)
	if m.port != "" || len(m.ports) != 0 {
		t.Errorf("after removal port %q ports %v", m.port, m.ports)
	}
}

func TestPlayWithoutAudio(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, " ")
	m.Session.Wait()
	if err := m.Session.WaitReady(t.Context(), 0); err == nil {
		t.Error("session without player reported ready audio")
	}
}

func TestQuitSavesConfig(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "s", "q")
	if !m.quitting || m.View() != "" {
		t.Error("not quitting")
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.LastCode != 1234567 || cfg.Synth.Scale != "Minor" {
		t.Errorf("saved %+v", cfg)
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "o", "a")
	out := m.View()
	for _, want := range []string{"go-songcode", "1234567", "kick", "queue (1)", "out_1.mid"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if len(m.spectrum) != scopeBins {
		t.Errorf("spectrum has %d bins", len(m.spectrum))
	}
}

func TestCycle(t *testing.T) {
	items := []string{"a", "b", "c"}
	if cycle(items, "c", 1) != "a" || cycle(items, "a", -1) != "c" || cycle(items, "x", 1) != "a" {
		t.Error("cycle wraps wrong")
	}
	if cycle(nil, "x", 1) != "x" {
		t.Error("empty cycle")
	}
}
