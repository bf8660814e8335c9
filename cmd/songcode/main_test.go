package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-songcode/config"
	"go-songcode/debug"
)

func TestRunPlanAndRender(t *testing.T) {
	t.Setenv(config.DirEnv, t.TempDir())

	if err := run("plan", []string{"-scale", "Minor", "42"}); err != nil {
		t.Fatalf("plan: %v", err)
	}

	out := filepath.Join(t.TempDir(), "song.mid")
	if err := run("render", []string{"-length", "2", "42", out}); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil || !strings.HasPrefix(string(data), "MThd") {
		t.Errorf("render wrote %d bytes, %v", len(data), err)
	}
}

func TestRunReturnsErrors(t *testing.T) {
	t.Setenv(config.DirEnv, t.TempDir())

	tests := []struct {
		cmd  string
		args []string
	}{
		{"plan", nil},
		{"plan", []string{"abc"}},
		{"render", []string{"-tempo", "fast", "42"}},
		{"queue", []string{filepath.Join(t.TempDir(), "missing.txt")}},
		{"monitor", nil},
	}
	for _, tt := range tests {
		if err := run(tt.cmd, tt.args); err == nil {
			t.Errorf("%s %v: no error", tt.cmd, tt.args)
		}
	}
	if debug.Enabled() {
		t.Error("debug log left open after run")
	}
}

func TestRunQueue(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.DirEnv, dir)

	list := filepath.Join(dir, "queue.txt")
	os.WriteFile(list, []byte("1\n2\n"), 0644)
	base := filepath.Join(dir, "out", "take.mid")
	if err := run("queue", []string{"-length", "1", list, base}); err != nil {
		t.Fatalf("queue: %v", err)
	}
	for _, name := range []string{"take_1.mid", "take_2.mid"} {
		if _, err := os.Stat(filepath.Join(dir, "out", name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestRunDebugFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.DirEnv, dir)
	t.Setenv(debug.EnvVar, "cli")

	if err := run("plan", nil); err == nil {
		t.Fatal("plan without a code succeeded")
	}
	data, err := os.ReadFile(filepath.Join(dir, debug.FileName))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "missing code") {
		t.Errorf("log:\n%s", data)
	}
	if debug.Enabled() {
		t.Error("debug log not closed on return")
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run("nope", nil); err != nil {
		t.Errorf("unknown command: %v", err)
	}
}
