// Package config loads buswatch's YAML configuration and watches it for
// changes, grounded in the teacher's fsnotify-based HotReloadSystem
// (engine/internal/runtime/runtime.go) but scoped to buswatch's own
// concerns: emission interval, health thresholds, and emitter/adapter
// wiring, rather than A/B-tested business policy.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Thresholds mirrors data.Thresholds in YAML-friendly form so config does
// not need to import the tui package.
type Thresholds struct {
	PendingWarning  time.Duration `yaml:"pending_warning"`
	PendingCritical time.Duration `yaml:"pending_critical"`
	UnreadWarning   uint64        `yaml:"unread_warning"`
	UnreadCritical  uint64        `yaml:"unread_critical"`
}

// EmitterConfig names one configured emission sink and its parameters.
type EmitterConfig struct {
	Kind string `yaml:"kind"` // file | tcp | channel | prometheus | otlp
	Path string `yaml:"path,omitempty"`
	Addr string `yaml:"addr,omitempty"`
}

// AdapterConfig names one configured bus adapter and its connection
// parameters.
type AdapterConfig struct {
	Kind     string `yaml:"kind"` // rabbitmq | kafka | jetstream
	BaseURL  string `yaml:"base_url,omitempty"`
	VHost    string `yaml:"vhost,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// Config is buswatch's top-level configuration document.
type Config struct {
	Interval   time.Duration   `yaml:"interval"`
	Thresholds Thresholds      `yaml:"thresholds"`
	Emitters   []EmitterConfig `yaml:"emitters"`
	Adapters   []AdapterConfig `yaml:"adapters"`
}

// Default returns the documented defaults (§4.5, §6) for every field a
// config file may omit.
func Default() Config {
	return Config{
		Interval: time.Second,
		Thresholds: Thresholds{
			PendingWarning:  time.Second,
			PendingCritical: 10 * time.Second,
			UnreadWarning:   1000,
			UnreadCritical:  5000,
		},
	}
}

// Load reads and parses the YAML config file at path, falling back to
// Default() for a missing file.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("buswatch: read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("buswatch: parse config file: %w", err)
	}
	return cfg, nil
}

// Watcher hot-reloads a config file, pushing every successfully parsed
// change to a channel. Parse errors are reported without replacing the
// last-known-good Config.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	mu      sync.Mutex
	started bool
}

// NewWatcher constructs a Watcher for the config file at path.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("buswatch: create file watcher: %w", err)
	}
	return &Watcher{path: path, watcher: fw}, nil
}

// Watch starts watching the config file's directory and returns channels
// of parsed changes and errors. Both channels close when ctx is done or
// Stop is called. Calling Watch twice on the same Watcher is a no-op on
// the second call.
func (w *Watcher) Watch(ctx context.Context) (<-chan Config, <-chan error) {
	changes := make(chan Config, 4)
	errs := make(chan error, 4)

	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		close(changes)
		close(errs)
		return changes, errs
	}
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.mu.Unlock()
		errs <- fmt.Errorf("buswatch: watch dir %s: %w", dir, err)
		close(changes)
		close(errs)
		return changes, errs
	}
	w.started = true
	w.mu.Unlock()

	go func() {
		defer close(changes)
		defer close(errs)
		for {
			select {
			case ev, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(w.path)
				if err != nil {
					errs <- err
					continue
				}
				changes <- cfg
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				errs <- err
			case <-ctx.Done():
				return
			}
		}
	}()
	return changes, errs
}

// Stop closes the underlying file watcher. Safe to call once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watcher.Close()
}
