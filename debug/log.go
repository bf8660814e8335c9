// Package debug writes category-tagged diagnostics to <config dir>/debug.log.
// Nothing is written until Enable is called.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// EnvVar enables logging: "1" or "all" for every category, or a comma
// separated list such as "session,midi"
const EnvVar = "SONGCODE_DEBUG"

// FileName is the log file created in the directory passed to Enable
const FileName = "debug.log"

type logger struct {
	file     *os.File
	only     map[string]bool // nil logs every category
	counters map[string]int
}

var (
	mu  sync.Mutex
	cur *logger
)

// Enable starts debug logging to <dir>/debug.log. With categories given,
// only those categories are written.
func Enable(dir string, categories ...string) error {
	mu.Lock()
	defer mu.Unlock()

	if cur != nil {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	l := &logger{file: f, counters: make(map[string]int)}
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			if l.only == nil {
				l.only = make(map[string]bool)
			}
			l.only[c] = true
		}
	}
	cur = l
	l.write("debug", "=== Debug logging started ===")
	return nil
}

// FromEnv enables logging when EnvVar asks for it (or force is set)
func FromEnv(dir string, force bool) error {
	v := strings.TrimSpace(os.Getenv(EnvVar))
	switch {
	case v == "1" || strings.EqualFold(v, "all") || (force && v == ""):
		return Enable(dir)
	case v != "" && v != "0":
		return Enable(dir, strings.Split(v, ",")...)
	case force:
		return Enable(dir)
	}
	return nil
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if cur != nil {
		cur.file.Close()
		cur = nil
	}
}

// Enabled reports whether log lines are being written
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return cur != nil
}

func (l *logger) wants(category string) bool {
	return l.only == nil || l.only[category]
}

func (l *logger) write(category, msg string) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(l.file, "[%s] %-10s %s\n", ts, category, msg)
	l.file.Sync() // flush immediately so we see logs even on crash
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if cur == nil || !cur.wants(category) {
		return
	}
	cur.write(category, fmt.Sprintf(format, args...))
}

// LogEvery logs only every n-th call with the same category and format.
// Use it in the dispatch loop and other per-event paths.
func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if cur == nil || !cur.wants(category) {
		return
	}
	key := category + "\x00" + format
	cur.counters[key]++
	count := cur.counters[key]
	if n <= 1 || count%n == 0 {
		msg := fmt.Sprintf(format, args...)
		cur.write(category, fmt.Sprintf("%s (every %d, count=%d)", msg, n, count))
	}
}
