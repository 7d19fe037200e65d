package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is how long to wait for further writes before
// reloading. Editors save files as several events in quick succession.
const defaultDebounce = 500 * time.Millisecond

// Watcher watches a config file and emits a reloaded Config whenever it
// changes and still validates. Invalid intermediate states are logged and
// skipped; the previous config stays in effect.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
	reloads  chan *Config
	done     chan struct{}
}

// WatchFile starts watching the config file at path.
func WatchFile(path string, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory, not the file: editors replace files by
	// rename, which drops a watch on the file itself.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch config directory: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		path:     abs,
		watcher:  fsw,
		logger:   logger,
		debounce: defaultDebounce,
		reloads:  make(chan *Config, 1),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Reloads returns the channel of reloaded configs.
func (w *Watcher) Reloads() <-chan *Config {
	return w.reloads
}

// Close stops watching. The reloads channel is closed afterwards.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) run() {
	defer close(w.reloads)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watch error", "error", err)

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadFromFile(w.path)
	if err != nil {
		w.logger.Warn("Config reload failed", "path", w.path, "error", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		w.logger.Warn("Reloaded config is invalid, keeping previous", "path", w.path, "error", err)
		return
	}

	w.logger.Info("Config reloaded", "path", w.path)

	// Drop a pending unconsumed reload in favor of the newest one.
	select {
	case <-w.reloads:
	default:
	}
	select {
	case w.reloads <- cfg:
	case <-w.done:
	}
}
