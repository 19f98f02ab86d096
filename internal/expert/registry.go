package expert

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Persona IDs the planner's request builder relies on.
const (
	PersonaSommelier = "sommelier"
	PersonaChef      = "chef"
)

//go:embed personas.yaml
var defaultPersonas []byte

// ErrUnknownPersona indicates a task referenced a persona that is not defined.
var ErrUnknownPersona = errors.New("unknown persona")

// personaFile is the on-disk/embedded persona definition format.
type personaFile struct {
	Personas []Persona `yaml:"personas"`
}

// Registry holds persona definitions. The embedded defaults are always
// present; a user override file can replace or extend them, and can be
// watched so edits take effect mid-session.
type Registry struct {
	mu           sync.RWMutex
	personas     map[string]Persona
	overridePath string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewRegistry creates a Registry seeded with the embedded persona defaults.
func NewRegistry() (*Registry, error) {
	r := &Registry{personas: make(map[string]Persona)}
	if err := r.merge(defaultPersonas); err != nil {
		return nil, fmt.Errorf("load embedded personas: %w", err)
	}
	return r, nil
}

// LoadOverrides merges persona definitions from a YAML file on top of the
// defaults. A missing file is not an error; the defaults simply stand.
func (r *Registry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read persona overrides: %w", err)
	}
	if err := r.merge(data); err != nil {
		return fmt.Errorf("parse persona overrides %s: %w", path, err)
	}
	r.mu.Lock()
	r.overridePath = path
	r.mu.Unlock()
	return nil
}

// merge parses YAML persona definitions and installs them by ID.
func (r *Registry) merge(data []byte) error {
	var file personaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range file.Personas {
		if p.ID == "" {
			return errors.New("persona with empty id")
		}
		r.personas[p.ID] = p
	}
	return nil
}

// Get returns the persona with the given ID.
func (r *Registry) Get(id string) (Persona, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.personas[id]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrUnknownPersona, id)
	}
	return p, nil
}

// Watch starts watching the override file's directory and reloads the
// registry when the file is created or rewritten. No-op when no override
// path was loaded.
func (r *Registry) Watch() error {
	r.mu.RLock()
	path := r.overridePath
	r.mu.RUnlock()
	if path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create persona watcher: %w", err)
	}
	// Watch the directory: editors replace files rather than writing in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch persona directory: %w", err)
	}

	r.watcher = watcher
	r.done = make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					// Best effort: a malformed edit keeps the last good set.
					_ = r.LoadOverrides(path)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case <-r.done:
				return
			}
		}
	}()

	return nil
}

// Close stops the override watcher, if running.
func (r *Registry) Close() error {
	if r.done != nil {
		close(r.done)
		r.done = nil
	}
	if r.watcher != nil {
		err := r.watcher.Close()
		r.watcher = nil
		return err
	}
	return nil
}
