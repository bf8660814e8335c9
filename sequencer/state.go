package sequencer

import (
	"sync"
	"time"

	"go-songcode/midi"
)

// Clock converts between ticks and wall time for one playback
type Clock struct {
	T0    time.Time
	Tempo int
}

// TickToTime returns when tick is due
func (c Clock) TickToTime(tick int) time.Time {
	return c.T0.Add(c.TickDuration(tick))
}

// TimeToTick returns the tick playing at t
func (c Clock) TimeToTick(t time.Time) int {
	return int(t.Sub(c.T0) * time.Duration(c.Tempo) * midi.PPQ / time.Minute)
}

// TickDuration is the length of n ticks at the clock's tempo
func (c Clock) TickDuration(n int) time.Duration {
	return time.Duration(n) * time.Minute / time.Duration(c.Tempo*midi.PPQ)
}

// Progress is a snapshot of the running render
type Progress struct {
	Running bool
	Code    int
	Label   string // what is running: "play", "export", "queue 2/5"
	Elapsed time.Duration
	Total   time.Duration
}

// progress is the mutable state behind Progress
type progress struct {
	mu    sync.Mutex
	p     Progress
	start time.Time
}

func (s *progress) begin(code int, label string, total time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = Progress{Running: true, Code: code, Label: label, Total: total}
	s.start = time.Now()
}

func (s *progress) label(label string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Label = label
	s.p.Code = code
	s.start = time.Now()
}

func (s *progress) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Running = false
}

func (s *progress) snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.p
	if p.Running {
		p.Elapsed = min(time.Since(s.start), max(p.Total, 0))
		if p.Total == 0 {
			p.Elapsed = time.Since(s.start)
		}
	}
	return p
}
