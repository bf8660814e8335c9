package tui

import "github.com/charmbracelet/bubbles/key"

func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

type keyMap struct {
	Code     key.Binding
	Random   key.Binding
	Scale    key.Binding
	ScaleBk  key.Binding
	Preset   key.Binding
	PresetBk key.Binding
	Tempo    key.Binding
	Length   key.Binding
	Gameboy  key.Binding
	Drums    key.Binding
	ReverbUp key.Binding
	ReverbDn key.Binding
	DelayUp  key.Binding
	DelayDn  key.Binding
	CrushUp  key.Binding
	CrushDn  key.Binding
	Play     key.Binding
	Export   key.Binding
	Port     key.Binding

	QueueAdd    key.Binding
	QueueRemove key.Binding
	QueueUp     key.Binding
	QueueDown   key.Binding
	QueueRender key.Binding
	QueueSave   key.Binding

	PresetSave   key.Binding
	PresetDelete key.Binding

	Scope key.Binding
	Help  key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Code:     Key("code", "c", "enter"),
	Random:   Key("random", "r"),
	Scale:    Key("scale", "s"),
	ScaleBk:  Key("scale back", "S"),
	Preset:   Key("preset", "p"),
	PresetBk: Key("preset back", "P"),
	Tempo:    Key("tempo", "t"),
	Length:   Key("length", "l"),
	Gameboy:  Key("gameboy", "g"),
	Drums:    Key("drums", "d"),
	ReverbUp: Key("reverb +", "V"),
	ReverbDn: Key("reverb -", "v"),
	DelayUp:  Key("delay +", "E"),
	DelayDn:  Key("delay -", "e"),
	CrushUp:  Key("bitcrush +", "B"),
	CrushDn:  Key("bitcrush -", "b"),
	Play:     Key("play/stop", " "),
	Export:   Key("export", "x"),
	Port:     Key("midi port", "m"),

	QueueAdd:    Key("queue add", "a"),
	QueueRemove: Key("queue remove", "backspace", "delete"),
	QueueUp:     Key("queue up", "k", "up"),
	QueueDown:   Key("queue down", "j", "down"),
	QueueRender: Key("queue render", "R"),
	QueueSave:   Key("queue save", "w"),

	PresetSave:   Key("save preset", "n"),
	PresetDelete: Key("delete preset", "D"),

	Scope: Key("scope", "o"),
	Help:  Key("help", "?"),
	Quit:  Key("quit", "q", "ctrl+c"),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Code, k.Random, k.Play, k.Export, k.QueueAdd, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Code, k.Random, k.Scale, k.ScaleBk, k.Preset, k.PresetBk, k.Tempo, k.Length},
		{k.Gameboy, k.Drums, k.ReverbUp, k.ReverbDn, k.DelayUp, k.DelayDn, k.CrushUp, k.CrushDn},
		{k.Play, k.Export, k.Port, k.Scope, k.PresetSave, k.PresetDelete},
		{k.QueueAdd, k.QueueRemove, k.QueueUp, k.QueueDown, k.QueueRender, k.QueueSave},
		{k.Help, k.Quit},
	}
}
