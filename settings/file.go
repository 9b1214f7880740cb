package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/makeXnow/BrainTrust-AI/logging"
	"gopkg.in/yaml.v3"
)

const defaultDebounce = 100 * time.Millisecond

// FileProvider serves settings from a YAML file and reloads them when the file
// changes. Keys absent from the file keep their Defaults() value. A reload
// that fails to parse keeps the previous snapshot.
type FileProvider struct {
	path     string
	logger   logging.Logger
	debounce time.Duration

	mu      sync.RWMutex
	current Settings
	version int

	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// FileOptions configures a FileProvider.
type FileOptions struct {
	Logger   logging.Logger
	Debounce time.Duration
	// Watch enables fsnotify based reloads.
	Watch bool
}

// Load decodes a settings file over Defaults().
func Load(path string) (Settings, error) {
	s := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// NewFileProvider loads path and, when enabled, starts watching it.
func NewFileProvider(path string, optFns ...func(o *FileOptions)) (*FileProvider, error) {
	opts := FileOptions{
		Logger:   logging.NoOpLogger{},
		Debounce: defaultDebounce,
		Watch:    true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s, err := Load(path)
	if err != nil {
		return nil, err
	}

	p := &FileProvider{
		path:     path,
		logger:   logging.OrNoOp(opts.Logger),
		debounce: opts.Debounce,
		current:  s,
		version:  1,
		done:     make(chan struct{}),
	}
	if !opts.Watch {
		return p, nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create settings watcher: %w", err)
	}
	// Editors replace files by rename, so watch the directory.
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch settings dir: %w", err)
	}
	p.watcher = w
	go p.run()
	return p, nil
}

// Settings implements Provider.
func (p *FileProvider) Settings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Version increments on every successful reload.
func (p *FileProvider) Version() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version
}

// Reload re-reads the file immediately.
func (p *FileProvider) Reload() error {
	s, err := Load(p.path)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.current = s
	p.version++
	p.mu.Unlock()
	return nil
}

// Close stops watching the file.
func (p *FileProvider) Close() error {
	var err error
	p.once.Do(func() {
		close(p.done)
		if p.watcher != nil {
			err = p.watcher.Close()
		}
	})
	return err
}

func (p *FileProvider) run() {
	target := filepath.Clean(p.path)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-p.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(p.debounce)
			} else {
				timer.Reset(p.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := p.Reload(); err != nil {
				p.logger.Warn("settings reload failed", "path", p.path, "error", err)
				continue
			}
			p.logger.Info("settings reloaded", "path", p.path)
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("settings watcher error", "error", err)
		}
	}
}
