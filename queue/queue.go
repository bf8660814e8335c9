// Package queue holds the list of song codes waiting to be rendered
// and the plain-text file they are exported to.
package queue

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig"

	"go-songcode/composer"
)

// DefaultPattern names queue outputs out_1.wav, out_2.wav, ...
const DefaultPattern = "{{.Stem}}_{{.Index}}{{.Ext}}"

// Queue is an ordered list of codes, safe for use from the TUI and a render worker
type Queue struct {
	mu    sync.Mutex
	codes []int
}

// New creates a queue holding codes
func New(codes ...int) *Queue {
	return &Queue{codes: append([]int(nil), codes...)}
}

// Add appends codes to the end
func (q *Queue) Add(codes ...int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.codes = append(q.codes, codes...)
}

// Remove deletes the items at the given indices. Out of range and repeated
// indices are ignored.
func (q *Queue) Remove(indices ...int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	drop := Normalize(indices)
	kept := q.codes[:0]
	j := 0
	for i, c := range q.codes {
		for j < len(drop) && drop[j] < i {
			j++
		}
		if j < len(drop) && drop[j] == i {
			continue
		}
		kept = append(kept, c)
	}
	q.codes = kept
}

// Clear empties the queue
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.codes = nil
}

// Items returns a copy of the queued codes
func (q *Queue) Items() []int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]int(nil), q.codes...)
}

// Len returns the number of queued codes
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.codes)
}

// Save writes one decimal code per line
func (q *Queue) Save(path string) error {
	var buf bytes.Buffer
	for _, c := range q.Items() {
		buf.WriteString(strconv.Itoa(c))
		buf.WriteByte('\n')
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Load replaces the queue with the codes in path. Blank lines are skipped.
func (q *Queue) Load(path string) error {
	codes, err := ReadFile(path)
	if err != nil {
		return err
	}
	q.mu.Lock()
	q.codes = codes
	q.mu.Unlock()
	return nil
}

// ReadFile parses a queue file
func ReadFile(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var codes []int
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		c, err := strconv.Atoi(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad code %q", path, line, text)
		}
		codes = append(codes, c)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}

// Normalize sorts indices and drops duplicates
func Normalize(indices []int) []int {
	out := append([]int(nil), indices...)
	sort.Ints(out)
	j := 0
	for i, v := range out {
		if i == 0 || v != out[j-1] {
			out[j] = v
			j++
		}
	}
	return out[:j]
}

// NameData is what an output name pattern can refer to
type NameData struct {
	Stem   string // base file name without extension
	Ext    string // extension including the dot
	Index  int    // 1-based position in the queue
	Code   int
	Digits string // the seven digit form of Code
}

// OutputName renders pattern for the index-th (0-based) item. The result
// sits in the same directory as base. An empty pattern uses DefaultPattern.
func OutputName(pattern, base string, index, code int) (string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	tmpl, err := template.New("output").Funcs(sprig.TxtFuncMap()).Parse(pattern)
	if err != nil {
		return "", fmt.Errorf("output pattern: %w", err)
	}

	ext := filepath.Ext(base)
	if ext == "" {
		ext = ".wav"
	}
	data := NameData{
		Stem:   strings.TrimSuffix(filepath.Base(base), filepath.Ext(base)),
		Ext:    ext,
		Index:  index + 1,
		Code:   code,
		Digits: composer.Digits(code),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("output pattern: %w", err)
	}
	name := strings.TrimSpace(buf.String())
	if name == "" {
		return "", fmt.Errorf("output pattern %q produced an empty name", pattern)
	}
	return filepath.Join(filepath.Dir(base), name), nil
}
