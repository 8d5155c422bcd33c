package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Uzidoorman9/Absolute-Solver/internal/logging"
)

// Watcher watches the config file for changes and delivers reloaded,
// validated configs to a callback. Invalid edits are logged and skipped,
// so a typo in solver.yaml never takes the running catalog down.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	onReload    func(*Config)
	debounceDur time.Duration
	lastEvent   time.Time
	pending     bool
	running     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// NewWatcher creates a watcher for the config at path. onReload is called
// with each successfully reloaded config.
func NewWatcher(path string, onReload func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		path:        path,
		onReload:    onReload,
		debounceDur: 500 * time.Millisecond, // Editors fire bursts of writes per save
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the watch loop runs in a goroutine
// until Stop or ctx cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the directory, not the file: editors replace files on save
	// and a file watch dies with the old inode.
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	logging.Boot("config watcher: watching %s", dir)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the loop to exit.
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
	w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	// Settle ticker: events only mark the file dirty, and the reload runs
	// once the last event is older than the debounce window. Reloading on
	// the first event of a save burst would read a half-written file and
	// drop the completing write.
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.mu.Lock()
			w.lastEvent = time.Now()
			w.pending = true
			w.mu.Unlock()
		case <-ticker.C:
			w.mu.Lock()
			settled := w.pending && time.Since(w.lastEvent) >= w.debounceDur
			if settled {
				w.pending = false
			}
			w.mu.Unlock()
			if settled {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryBoot).Warn("config watcher: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		logging.Get(logging.CategoryBoot).Warn("config reload rejected: %v", err)
		return
	}
	logging.Boot("config reloaded from %s", w.path)
	w.onReload(cfg)
}
