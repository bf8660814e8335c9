package tui

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-songcode/composer"
	"go-songcode/config"
	"go-songcode/debug"
	"go-songcode/midi"
	"go-songcode/preset"
	"go-songcode/queue"
	"go-songcode/sequencer"
	"go-songcode/synth"
	"go-songcode/theme"
	"go-songcode/widgets"
)

const (
	scopeSize   = 2048
	scopeBins   = 48
	meterWidth  = 12
	effectSteps = 20 // effect amounts move in 1/20 steps
)

// inputMode says what the text input is editing
type inputMode int

const (
	inputNone inputMode = iota
	inputCode
	inputTempo
	inputLength
	inputPreset
)

func (m inputMode) prompt() string {
	return [...]string{"", "code> ", "tempo (0 = auto)> ", "length s (0 = auto)> ", "preset name> "}[m]
}

// Deps are the collaborators of the interactive surface
type Deps struct {
	Session *sequencer.Session
	Engine  *synth.Engine
	Watcher *midi.PortWatcher // nil disables port hot-plug
	Config  *config.Config
	Presets preset.Store
	Queue   *queue.Queue
	Theme   *theme.Theme
}

type Model struct {
	Deps

	code    int
	opts    composer.Options
	plan    *composer.Plan
	presets []string

	ports []string
	port  string // selected MIDI output, "" for none

	input    textinput.Model
	mode     inputMode
	help     help.Model
	cursor   int // selected queue item
	scope    bool
	spectrum []float64
	status   string
	results  chan []sequencer.QueueResult
	quitting bool
	width    int
}

type StatusMsg string

type PortEventMsg midi.PortEvent

type TickMsg time.Time

type QueueDoneMsg []sequencer.QueueResult

func NewModel(d Deps) Model {
	ti := textinput.New()
	ti.CharLimit = 12

	m := Model{
		Deps:    d,
		code:    d.Config.UI.LastCode,
		opts:    d.Config.Options(),
		port:    d.Config.Output.MIDIPort,
		input:   ti,
		help:    help.New(),
		results: make(chan []sequencer.QueueResult, 1),
		status:  "Starting audio...",
	}
	m.loadPresets()
	m.recompose()
	return m
}

func ListenForStatus(session *sequencer.Session) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg(<-session.Status())
	}
}

func ListenForPorts(w *midi.PortWatcher) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-w.Events()
		if !ok {
			return nil
		}
		return PortEventMsg(event)
	}
}

func listenForQueue(ch chan []sequencer.QueueResult) tea.Cmd {
	return func() tea.Msg {
		return QueueDoneMsg(<-ch)
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForStatus(m.Session), tick()}
	if m.Watcher != nil {
		cmds = append(cmds, ListenForPorts(m.Watcher))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)

	case StatusMsg:
		m.status = string(msg)
		return m, ListenForStatus(m.Session)

	case PortEventMsg:
		event := midi.PortEvent(msg)
		switch event.Type {
		case midi.PortAdded:
			if !slices.Contains(m.ports, event.Name) {
				m.ports = append(m.ports, event.Name)
			}
			m.status = "MIDI port added: " + event.Name
		case midi.PortRemoved:
			m.ports = slices.DeleteFunc(m.ports, func(p string) bool { return p == event.Name })
			if m.port == event.Name {
				m.port = ""
			}
			m.status = "MIDI port removed: " + event.Name
		}
		return m, ListenForPorts(m.Watcher)

	case QueueDoneMsg:
		failed := 0
		for _, r := range msg {
			if r.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			m.status = fmt.Sprintf("Queue done, %d of %d failed", failed, len(msg))
		}

	case TickMsg:
		return m, tick()
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.endInput()
		return m, nil
	case "enter":
		m.submit(strings.TrimSpace(m.input.Value()))
		m.endInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) beginInput(mode inputMode, value string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = mode.prompt()
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) endInput() {
	m.mode = inputNone
	m.input.Blur()
	m.input.SetValue("")
}

// submit applies the text input to the field being edited
func (m *Model) submit(value string) {
	if m.mode == inputPreset {
		m.savePreset(value)
		return
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		m.status = fmt.Sprintf("Not a number: %q", value)
		return
	}
	switch m.mode {
	case inputCode:
		m.code = n
	case inputTempo:
		// Zero keeps the derived tempo; anything else clamps in the planner
		m.opts.TempoOverride = max(n, 0)
	case inputLength:
		m.opts.LengthOverride = max(n, 0)
	}
	m.recompose()
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		m.Session.Stop()
		m.saveConfig()
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, keys.Code):
		return m, m.beginInput(inputCode, composer.Digits(m.code))
	case key.Matches(msg, keys.Tempo):
		return m, m.beginInput(inputTempo, strconv.Itoa(m.opts.TempoOverride))
	case key.Matches(msg, keys.Length):
		return m, m.beginInput(inputLength, strconv.Itoa(m.opts.LengthOverride))
	case key.Matches(msg, keys.PresetSave):
		return m, m.beginInput(inputPreset, "")

	case key.Matches(msg, keys.Random):
		m.code = rand.Intn(10_000_000)
		m.recompose()

	case key.Matches(msg, keys.Scale):
		m.opts.ScaleName = cycle(composer.ScaleNames(), m.plan.ScaleName, 1)
		m.recompose()
	case key.Matches(msg, keys.ScaleBk):
		m.opts.ScaleName = cycle(composer.ScaleNames(), m.plan.ScaleName, -1)
		m.recompose()
	case key.Matches(msg, keys.Preset):
		m.opts.PresetName = cycle(m.presets, m.plan.PresetName, 1)
		m.recompose()
	case key.Matches(msg, keys.PresetBk):
		m.opts.PresetName = cycle(m.presets, m.plan.PresetName, -1)
		m.recompose()
	case key.Matches(msg, keys.PresetDelete):
		m.deletePreset()

	case key.Matches(msg, keys.Gameboy):
		m.opts.Gameboy = !m.opts.Gameboy
		m.recompose()
	case key.Matches(msg, keys.Drums):
		m.opts.Drums = !m.opts.Drums
		m.recompose()
	case key.Matches(msg, keys.ReverbUp):
		m.opts.Reverb = adjust(m.opts.Reverb, 1, 0.95)
		m.recompose()
	case key.Matches(msg, keys.ReverbDn):
		m.opts.Reverb = adjust(m.opts.Reverb, -1, 0.95)
		m.recompose()
	case key.Matches(msg, keys.DelayUp):
		m.opts.Delay = adjust(m.opts.Delay, 1, 0.95)
		m.recompose()
	case key.Matches(msg, keys.DelayDn):
		m.opts.Delay = adjust(m.opts.Delay, -1, 0.95)
		m.recompose()
	case key.Matches(msg, keys.CrushUp):
		m.opts.Bitcrush = adjust(m.opts.Bitcrush, 1, 1)
		m.recompose()
	case key.Matches(msg, keys.CrushDn):
		m.opts.Bitcrush = adjust(m.opts.Bitcrush, -1, 1)
		m.recompose()

	case key.Matches(msg, keys.Play):
		if m.Session.Running() {
			m.Session.Stop()
			return m, nil
		}
		m.start(sequencer.Request{Play: m.Config.Output.PlayAudio, MIDIPort: m.port})
	case key.Matches(msg, keys.Export):
		m.start(sequencer.Request{ExportPath: m.Config.Output.ExportFile})
	case key.Matches(msg, keys.Port):
		m.port = cycle(append([]string{""}, m.ports...), m.port, 1)
		if m.port == "" {
			m.status = "MIDI off"
		} else {
			m.status = "MIDI out: " + m.port
		}

	case key.Matches(msg, keys.QueueAdd):
		m.Queue.Add(m.code)
		m.cursor = m.Queue.Len() - 1
		m.status = fmt.Sprintf("Queued %s (%d items)", composer.Digits(m.code), m.Queue.Len())
	case key.Matches(msg, keys.QueueRemove):
		if m.Queue.Len() > 0 {
			m.Queue.Remove(m.cursor)
			m.cursor = max(0, min(m.cursor, m.Queue.Len()-1))
		}
	case key.Matches(msg, keys.QueueUp):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(msg, keys.QueueDown):
		m.cursor = max(0, min(m.cursor+1, m.Queue.Len()-1))
	case key.Matches(msg, keys.QueueSave):
		if err := m.Queue.Save(m.Config.QueuePath()); err != nil {
			m.status = "Queue save failed: " + err.Error()
		} else {
			m.status = "Queue saved to " + m.Config.QueuePath()
		}
	case key.Matches(msg, keys.QueueRender):
		ch := m.results
		err := m.Session.RenderQueue(context.Background(), m.Queue.Items(), m.Config.Output.ExportFile,
			m.Config.Output.QueueNamePattern, m.opts, func(r []sequencer.QueueResult) { ch <- r })
		if err != nil {
			m.status = sequencer.Issue(err)
			return m, nil
		}
		return m, listenForQueue(ch)

	case key.Matches(msg, keys.Scope):
		m.scope = !m.scope
		m.refreshScope()
	}

	return m, nil
}

func (m *Model) start(req sequencer.Request) {
	req.Code = m.code
	req.Options = m.opts
	if err := m.Session.Start(context.Background(), req); err != nil {
		debug.Log("tui", "start: %v", err)
		m.status = sequencer.Issue(err)
	}
}

// recompose rebuilds the preview plan after the code or options change
func (m *Model) recompose() {
	m.plan = m.Session.Compose(m.code, m.opts)
	m.refreshScope()
}

func (m *Model) refreshScope() {
	m.spectrum = nil
	if m.scope && m.Engine != nil {
		m.spectrum = m.Engine.Spectrum(m.plan, scopeSize, scopeBins)
	}
}

func (m *Model) loadPresets() {
	p, err := m.Presets.Load()
	if err != nil {
		m.status = "Presets unreadable, using defaults"
		p = preset.Defaults()
	}
	m.presets = preset.Names(p)
}

func (m *Model) savePreset(name string) {
	if _, err := preset.SaveAs(m.Presets, name, m.plan.PresetName); err != nil {
		m.status = "Preset not saved: " + err.Error()
		return
	}
	m.loadPresets()
	m.opts.PresetName = strings.TrimSpace(name)
	m.recompose()
	m.status = "Saved preset " + m.opts.PresetName
}

func (m *Model) deletePreset() {
	name := m.plan.PresetName
	if err := preset.Delete(m.Presets, name); err != nil {
		m.status = "Preset not deleted: " + err.Error()
		return
	}
	m.loadPresets()
	m.opts.PresetName = preset.DefaultName
	m.recompose()
	m.status = "Deleted preset " + name
}

func (m *Model) saveConfig() {
	m.Config.SetOptions(m.opts)
	m.Config.UI.LastCode = m.code
	m.Config.Output.MIDIPort = m.port
	if err := m.Config.Save(); err != nil {
		debug.Log("tui", "save config: %v", err)
	}
}

// cycle returns the item dir steps away from cur, wrapping around
func cycle(items []string, cur string, dir int) string {
	if len(items) == 0 {
		return cur
	}
	i := slices.IndexFunc(items, func(s string) bool { return strings.EqualFold(s, cur) })
	if i < 0 {
		return items[0]
	}
	return items[(i+dir+len(items))%len(items)]
}

// adjust moves v by steps grid steps, clamped to [0, hi]
func adjust(v float64, steps int, hi float64) float64 {
	v = (math.Round(v*effectSteps) + float64(steps)) / effectSteps
	return max(0, min(v, hi))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.Theme.Styles()
	headerStyle, dimStyle, valueStyle := st.Header, st.Dim, st.Value

	plan := m.plan
	state := "STOP"
	if m.Session.Running() {
		state = "PLAY"
	}
	if !m.Session.Ready() {
		state = "INIT"
	}
	midiState := "midi:off"
	if m.port != "" {
		midiState = "midi:" + m.port
	}

	header := headerStyle.Render(fmt.Sprintf("go-songcode  %s  %s  %3dbpm  %ds  %s",
		composer.Digits(plan.Code), state, plan.Tempo, plan.LengthSeconds, midiState))

	settings := valueStyle.Render(fmt.Sprintf("scale %-10s preset %-18s root %d  complexity %.2f",
		plan.ScaleName, plan.PresetName, plan.Root, plan.Complexity))
	fx := dimStyle.Render(fmt.Sprintf("reverb %.2f  delay %.2f  bitcrush %.2f  gameboy %s  drums %s",
		m.opts.Reverb, m.opts.Delay, m.opts.Bitcrush, onOff(m.opts.Gameboy), onOff(m.opts.Drums)))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(settings)
	out.WriteString("\n")
	out.WriteString(fx)
	out.WriteString("\n\n")

	out.WriteString(m.progressLine(dimStyle))
	out.WriteString("\n\n")

	if m.scope {
		out.WriteString(widgets.RenderScope(m.spectrum, m.Theme))
		out.WriteString("\n\n")
	}

	out.WriteString(widgets.RenderDrumGrid(plan.DrumPattern, m.drumStep(), m.Theme))
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderVoices(plan, meterWidth, m.Theme))
	out.WriteString("\n\n")
	out.WriteString(m.queueView(dimStyle))
	out.WriteString("\n")

	if m.mode != inputNone {
		out.WriteString("\n")
		out.WriteString(m.input.View())
	}
	if m.status != "" {
		out.WriteString("\n")
		style := st.Status
		if err := m.Session.Err(); err != nil && m.status == sequencer.Issue(err) {
			style = st.Error
		}
		out.WriteString(style.Render(m.status))
	}
	out.WriteString("\n\n")
	out.WriteString(m.help.View(keys))

	return out.String()
}

func (m Model) progressLine(style lipgloss.Style) string {
	p := m.Session.Progress()
	if !p.Running {
		return style.Render("idle")
	}
	if p.Total <= 0 {
		return style.Render(fmt.Sprintf("%s %s", p.Label, composer.Digits(p.Code)))
	}
	level := float64(p.Elapsed) / float64(p.Total)
	bar := lipgloss.NewStyle().Foreground(m.Theme.Active()).Render(widgets.Meter(level, 30, m.Theme.Symbols))
	return fmt.Sprintf("%s %s %s", style.Render(p.Label), bar,
		style.Render(fmt.Sprintf("%s / %s", p.Elapsed.Truncate(time.Second), p.Total)))
}

// drumStep maps playback progress onto the drum pattern, -1 when idle
func (m Model) drumStep() int {
	p := m.Session.Progress()
	plan := m.Session.Plan()
	if !p.Running || p.Total <= 0 || plan == nil || len(plan.DrumPattern) == 0 {
		return -1
	}
	beats := p.Elapsed.Seconds() / plan.BeatSeconds
	return int(beats*2) % len(plan.DrumPattern)
}

func (m Model) queueView(style lipgloss.Style) string {
	items := m.Queue.Items()
	if len(items) == 0 {
		return style.Render("queue empty")
	}
	lines := []string{style.Render(fmt.Sprintf("queue (%d)", len(items)))}
	cursor := lipgloss.NewStyle().Foreground(m.Theme.Cursor())
	for i, code := range items {
		name, err := queue.OutputName(m.Config.Output.QueueNamePattern, m.Config.Output.ExportFile, i, code)
		if err != nil {
			name = err.Error()
		}
		line := fmt.Sprintf("%s  %s", composer.Digits(code), name)
		if i == m.cursor {
			lines = append(lines, cursor.Render(string(m.Theme.Symbols.Cursor)+" "+line))
		} else {
			lines = append(lines, style.Render("  "+line))
		}
	}
	return strings.Join(lines, "\n")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
