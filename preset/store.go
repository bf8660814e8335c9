package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"go-songcode/debug"
)

// Store persists presets as a name -> envelope mapping
type Store interface {
	Load() (map[string]Envelope, error)
	Save(presets map[string]Envelope) error
}

// FileStore keeps presets in a single JSON (or YAML) file.
// The file is rewritten wholesale on every save.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.Path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the preset file, creating it with the defaults if it does not exist
func (s *FileStore) Load() (map[string]Envelope, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			defaults := Defaults()
			if err := s.Save(defaults); err != nil {
				return nil, err
			}
			debug.Log("preset", "created %s with %d defaults", s.Path, len(defaults))
			return defaults, nil
		}
		return nil, err
	}

	presets := make(map[string]Envelope)
	if s.isYAML() {
		err = yaml.Unmarshal(data, &presets)
	} else {
		err = json.Unmarshal(data, &presets)
	}
	if err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", s.Path, err)
	}
	return presets, nil
}

// Save writes all presets to disk
func (s *FileStore) Save(presets map[string]Envelope) error {
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	var data []byte
	var err error
	if s.isYAML() {
		data, err = yaml.Marshal(presets)
	} else {
		data, err = json.MarshalIndent(presets, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(s.Path, data, 0644)
}

// MemoryStore is an in-process store, seeded with the defaults
type MemoryStore struct {
	mu      sync.Mutex
	presets map[string]Envelope
}

// NewMemoryStore creates a store holding a copy of presets (defaults if nil)
func NewMemoryStore(presets map[string]Envelope) *MemoryStore {
	if presets == nil {
		presets = Defaults()
	}
	return &MemoryStore{presets: clone(presets)}
}

func (s *MemoryStore) Load() (map[string]Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.presets), nil
}

func (s *MemoryStore) Save(presets map[string]Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets = clone(presets)
	return nil
}

func clone(presets map[string]Envelope) map[string]Envelope {
	out := make(map[string]Envelope, len(presets))
	for k, v := range presets {
		out[k] = v
	}
	return out
}

// SaveAs stores a new preset under name. Values start from the template
// and are overwritten by the base preset when it exists.
func SaveAs(s Store, name, base string) (Envelope, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Envelope{}, fmt.Errorf("preset name is empty")
	}

	presets, err := s.Load()
	if err != nil {
		// Unreadable file: start over from the defaults
		debug.Log("preset", "load failed, using defaults: %v", err)
		presets = Defaults()
	}

	env := Template
	if b, ok := presets[base]; ok {
		env = b
	}
	presets[name] = env

	if err := s.Save(presets); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// Put creates or replaces a preset
func Put(s Store, name string, env Envelope) error {
	presets, err := s.Load()
	if err != nil {
		return err
	}
	presets[name] = env
	return s.Save(presets)
}

// Delete removes a preset. Deleting an unknown name is not an error.
func Delete(s Store, name string) error {
	presets, err := s.Load()
	if err != nil {
		return err
	}
	if _, ok := presets[name]; !ok {
		return nil
	}
	delete(presets, name)
	return s.Save(presets)
}
