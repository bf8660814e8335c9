package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readLog(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestLogWritesWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	if err := Enable(dir); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	defer Disable()

	Log("test", "value=%d", 42)

	if got := readLog(t, dir); !strings.Contains(got, "value=42") {
		t.Errorf("log missing message, got:\n%s", got)
	}
}

func TestLogSilentWhenDisabled(t *testing.T) {
	Disable()
	if Enabled() {
		t.Fatal("expected logging disabled")
	}
	// Must not panic with no file
	Log("test", "ignored")
	LogEvery(1, "test", "ignored")
}

func TestCategoryFilter(t *testing.T) {
	dir := t.TempDir()
	if err := Enable(dir, "midi", " session "); err != nil {
		t.Fatal(err)
	}
	defer Disable()

	Log("midi", "kept")
	Log("session", "also kept")
	Log("synth", "dropped")

	got := readLog(t, dir)
	if !strings.Contains(got, "kept") || !strings.Contains(got, "also kept") || strings.Contains(got, "dropped") {
		t.Errorf("filtered log:\n%s", got)
	}
}

func TestLogEvery(t *testing.T) {
	dir := t.TempDir()
	if err := Enable(dir); err != nil {
		t.Fatal(err)
	}
	defer Disable()

	for i := 0; i < 10; i++ {
		LogEvery(5, "dispatch", "tick %d", i)
	}

	got := readLog(t, dir)
	if n := strings.Count(got, "every 5"); n != 2 {
		t.Errorf("got %d lines, want 2:\n%s", n, got)
	}
	if !strings.Contains(got, "tick 4 (every 5, count=5)") {
		t.Errorf("log:\n%s", got)
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		env   string
		force bool
		on    bool
	}{
		{"", false, false},
		{"0", false, false},
		{"1", false, true},
		{"all", false, true},
		{"midi", false, true},
		{"", true, true},
	}
	for _, tt := range tests {
		t.Setenv(EnvVar, tt.env)
		if err := FromEnv(t.TempDir(), tt.force); err != nil {
			t.Fatal(err)
		}
		if Enabled() != tt.on {
			t.Errorf("env %q force %v: enabled = %v", tt.env, tt.force, Enabled())
		}
		Disable()
	}
}
