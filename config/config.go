package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go-songcode/composer"
)

// DirEnv overrides the config directory (used by tests and portable installs)
const DirEnv = "SONGCODE_CONFIG_DIR"

// SynthConfig holds the option set used for new renders
type SynthConfig struct {
	Scale    string  `json:"scale"`
	Preset   string  `json:"preset"`
	Tempo    int     `json:"tempo,omitempty"`  // 0 = derive from code
	Length   int     `json:"length,omitempty"` // 0 = derive from code
	Gameboy  bool    `json:"gameboy"`
	Drums    bool    `json:"drums"`
	Reverb   float64 `json:"reverb"`
	Delay    float64 `json:"delay"`
	Bitcrush float64 `json:"bitcrush"`
}

// OutputConfig defines where renders go
type OutputConfig struct {
	ExportFile       string `json:"exportFile"`
	MIDIPort         string `json:"midiPort,omitempty"`
	DrumKit          string `json:"drumKit,omitempty"` // key into midi.Kits
	QueueNamePattern string `json:"queueNamePattern,omitempty"`
	SampleRate       int    `json:"sampleRate"`
	PlayAudio        bool   `json:"playAudio"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastCode int    `json:"lastCode,omitempty"`
	Palette  string `json:"palette,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Synth      SynthConfig  `json:"synth"`
	Output     OutputConfig `json:"output"`
	UI         UIConfig     `json:"ui,omitempty"`
	PresetFile string       `json:"presetFile"`
	QueueFile  string       `json:"queueFile"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Synth: SynthConfig{
			Scale:  "Major",
			Preset: "Pad",
			Drums:  true,
			Reverb: 0.4,
			Delay:  0.2,
		},
		Output: OutputConfig{
			ExportFile:       "out.wav",
			QueueNamePattern: "{{.Stem}}_{{.Index}}{{.Ext}}",
			SampleRate:       44100,
			PlayAudio:        true,
			DrumKit:          "gm",
		},
		UI: UIConfig{
			Palette: "plasma",
		},
		PresetFile: "presets.json",
		QueueFile:  "queue.txt",
	}
}

// Dir returns the config directory path
func Dir() (string, error) {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-songcode"), nil
}

// Path returns the full path to config.json
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	// Start from defaults so missing keys keep their default values
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := Path()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// resolve makes a relative file name live inside the config directory
func resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	dir, err := Dir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, name)
}

// PresetPath returns the absolute preset file path
func (c *Config) PresetPath() string {
	return resolve(c.PresetFile)
}

// QueuePath returns the absolute queue file path
func (c *Config) QueuePath() string {
	return resolve(c.QueueFile)
}

// Options converts the stored synth settings into planner options
func (c *Config) Options() composer.Options {
	return composer.Options{
		ScaleName:      c.Synth.Scale,
		TempoOverride:  c.Synth.Tempo,
		Gameboy:        c.Synth.Gameboy,
		PresetName:     c.Synth.Preset,
		Reverb:         c.Synth.Reverb,
		Delay:          c.Synth.Delay,
		Bitcrush:       c.Synth.Bitcrush,
		Drums:          c.Synth.Drums,
		LengthOverride: c.Synth.Length,
	}
}

// SetOptions stores planner options as the new defaults
func (c *Config) SetOptions(o composer.Options) {
	c.Synth = SynthConfig{
		Scale:    o.ScaleName,
		Preset:   o.PresetName,
		Tempo:    o.TempoOverride,
		Length:   o.LengthOverride,
		Gameboy:  o.Gameboy,
		Drums:    o.Drums,
		Reverb:   o.Reverb,
		Delay:    o.Delay,
		Bitcrush: o.Bitcrush,
	}
}
