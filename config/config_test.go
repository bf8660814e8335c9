package config

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv(DirEnv, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Synth.Scale != "Major" || cfg.Synth.Preset != "Pad" || !cfg.Synth.Drums {
		t.Errorf("unexpected defaults: %+v", cfg.Synth)
	}
	if cfg.Output.ExportFile != "out.wav" {
		t.Errorf("ExportFile = %q, want out.wav", cfg.Output.ExportFile)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(DirEnv, dir)

	cfg := DefaultConfig()
	cfg.Synth.Scale = "Dorian"
	cfg.Synth.Tempo = 140
	cfg.Output.MIDIPort = "IAC Driver Bus 1"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Synth.Scale != "Dorian" || got.Synth.Tempo != 140 || got.Output.MIDIPort != "IAC Driver Bus 1" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.PresetPath() != filepath.Join(dir, "presets.json") {
		t.Errorf("PresetPath = %q", got.PresetPath())
	}
}

func TestOptionsRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.Options()
	opts.Bitcrush = 0.5
	opts.Gameboy = true
	cfg.SetOptions(opts)

	if got := cfg.Options(); got != opts {
		t.Errorf("Options() = %+v, want %+v", got, opts)
	}
}
