package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"gestured/internal/logging"
	"gestured/internal/sequence"
	"gestured/internal/template"
)

// Reload carries the result of a settled file change. Exactly one of
// Config, Templates or Sequences is set on success; Err is set when
// the changed file failed to load, in which case the previous values
// stay in effect.
type Reload struct {
	Config    *Config
	Templates *template.Library
	Sequences []sequence.Definition
	Path      string
	Err       error
}

// WatcherStats tracks watcher activity for debugging.
type WatcherStats struct {
	FilesChanged     int
	ReloadsDelivered int
	Dropped          int
	Errors           int
	LastEventTime    time.Time
	LastEventPath    string
}

// Watcher watches the config file and the template and sequence
// libraries, reloading each on a settled change and delivering the
// result over Reloads.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	configPath  string
	cfg         *Config
	debounceMap map[string]time.Time
	debounceDur time.Duration
	reloads     chan Reload
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats WatcherStats
}

// NewWatcher creates a Watcher for the given config file. cfg supplies
// the library paths to watch alongside it; pass the config returned by
// Load so relative paths are already resolved.
func NewWatcher(configPath string, cfg *Config) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:     watcher,
		configPath:  filepath.Clean(configPath),
		cfg:         cfg,
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond, // Settle window for rapid saves
		reloads:     make(chan Reload, 8),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	return w, nil
}

// Reloads returns the channel settled changes are delivered on.
func (w *Watcher) Reloads() <-chan Reload {
	return w.reloads
}

// Config returns the most recently loaded configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg
}

// Start begins watching. Non-blocking; the event loop runs in a
// goroutine until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.addWatchDirs()

	go w.run(ctx)

	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategoryWatch).Error("Watcher: error closing: %v", err)
	}
	logging.Watch("Watcher: stopped")
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats returns the current watcher statistics.
func (w *Watcher) GetStats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// addWatchDirs watches the parent directories of every tracked file.
// Watching directories instead of files survives the rename-and-swap
// writes editors do.
func (w *Watcher) addWatchDirs() {
	dirs := make(map[string]struct{})
	for path := range w.trackedPaths() {
		dirs[filepath.Dir(path)] = struct{}{}
	}

	for dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			logging.WatchDebug("Watcher: skipping missing dir %s", dir)
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			logging.WatchWarn("Watcher: cannot watch %s: %v", dir, err)
		} else {
			logging.Watch("Watcher: watching directory: %s", dir)
		}
	}
}

// trackedPaths maps each watched file to itself, cleaned for
// comparison against event paths.
func (w *Watcher) trackedPaths() map[string]struct{} {
	w.mu.RLock()
	defer w.mu.RUnlock()

	paths := map[string]struct{}{
		w.configPath: {},
	}
	if w.cfg != nil {
		if p := w.cfg.Template.LibraryPath; p != "" {
			paths[filepath.Clean(p)] = struct{}{}
		}
		if p := w.cfg.Sequence.LibraryPath; p != "" {
			paths[filepath.Clean(p)] = struct{}{}
		}
	}
	return paths
}

// run is the main event loop.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Watch("Watcher: context cancelled")
			return

		case <-w.stopCh:
			logging.Watch("Watcher: stop signal received")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				logging.Watch("Watcher: event channel closed")
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				logging.Watch("Watcher: error channel closed")
				return
			}
			logging.Get(logging.CategoryWatch).Error("Watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.processDebouncedEvents()
		}
	}
}

// handleEvent records a filesystem event for debounced processing.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if _, tracked := w.trackedPaths()[path]; !tracked {
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return // Ignore chmod, etc.
	}

	logging.WatchDebug("Watcher: %s event for %s", event.Op, path)

	w.mu.Lock()
	w.stats.FilesChanged++
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = path
	w.debounceMap[path] = time.Now()
	w.mu.Unlock()
}

// processDebouncedEvents reloads files whose events have settled past
// the debounce window.
func (w *Watcher) processDebouncedEvents() {
	w.mu.Lock()
	now := time.Now()
	toProcess := make([]string, 0)

	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			toProcess = append(toProcess, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range toProcess {
		w.reload(path)
	}
}

// reload loads the changed file and delivers the result.
func (w *Watcher) reload(path string) {
	w.mu.RLock()
	templatePath := ""
	sequencePath := ""
	if w.cfg != nil {
		templatePath = filepath.Clean(w.cfg.Template.LibraryPath)
		sequencePath = filepath.Clean(w.cfg.Sequence.LibraryPath)
	}
	w.mu.RUnlock()

	switch path {
	case w.configPath:
		cfg, err := Load(w.configPath)
		if err != nil {
			logging.WatchWarn("Watcher: config reload failed: %v", err)
			w.deliver(Reload{Path: path, Err: err})
			return
		}
		if err := cfg.Validate(); err != nil {
			logging.WatchWarn("Watcher: reloaded config invalid: %v", err)
			w.deliver(Reload{Path: path, Err: err})
			return
		}
		w.mu.Lock()
		w.cfg = cfg
		w.mu.Unlock()
		// Pick up logging.debug_mode edits without a restart.
		if err := logging.ReloadConfig(); err != nil {
			logging.WatchWarn("Watcher: logging reload failed: %v", err)
		}
		// Library paths may have moved; pick up their new directories.
		w.addWatchDirs()
		logging.Watch("Watcher: config reloaded from %s", path)
		w.deliver(Reload{Config: cfg, Path: path})

	case templatePath:
		lib, err := template.Load(path)
		if err != nil {
			logging.WatchWarn("Watcher: template reload failed: %v", err)
			w.deliver(Reload{Path: path, Err: err})
			return
		}
		logging.Watch("Watcher: templates reloaded from %s (%d templates, %d strokes)",
			path, len(lib.Templates), len(lib.Strokes))
		w.deliver(Reload{Templates: &lib, Path: path})

	case sequencePath:
		defs, err := sequence.Load(path)
		if err != nil {
			logging.WatchWarn("Watcher: sequence reload failed: %v", err)
			w.deliver(Reload{Path: path, Err: err})
			return
		}
		w.mu.RLock()
		timeout := w.cfg.GetSequenceTimeout()
		w.mu.RUnlock()
		defs = sequence.WithDefaultMaxDuration(defs, timeout)
		logging.Watch("Watcher: sequences reloaded from %s (%d definitions)", path, len(defs))
		w.deliver(Reload{Sequences: defs, Path: path})
	}
}

// deliver sends a reload without blocking the event loop. A consumer
// that stopped draining loses the oldest pending reloads.
func (w *Watcher) deliver(r Reload) {
	select {
	case w.reloads <- r:
		w.mu.Lock()
		w.stats.ReloadsDelivered++
		w.mu.Unlock()
	default:
		logging.WatchWarn("Watcher: reload channel full, dropping %s", r.Path)
		w.mu.Lock()
		w.stats.Dropped++
		w.mu.Unlock()
	}
}
