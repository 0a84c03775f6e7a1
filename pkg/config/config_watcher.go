package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileWatcher reloads the gateway config file whenever it changes on disk and
// hands the new Config to the reload callback. The parent directory is watched
// rather than the file itself so that editors and ConfigMap mounts which replace
// the file via rename are still observed.
type FileWatcher struct {
	path     string
	logger   *zap.SugaredLogger
	onReload func(Config)
	debounce time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewFileWatcher creates a watcher for the config file at path.
func NewFileWatcher(path string, logger *zap.SugaredLogger) *FileWatcher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &FileWatcher{
		path:     filepath.Clean(path),
		logger:   logger.Named("config-watcher"),
		debounce: 250 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}
}

// WithDebounce sets the quiet period that batches bursts of file events into one reload.
func (w *FileWatcher) WithDebounce(d time.Duration) *FileWatcher {
	w.debounce = d
	return w
}

// WithReloadCallback sets the function receiving each successfully loaded Config.
func (w *FileWatcher) WithReloadCallback(fn func(Config)) *FileWatcher {
	w.onReload = fn
	return w
}

// Start begins watching in a background goroutine. The returned channel closes
// when the watcher stops. An error is returned if the directory cannot be watched.
func (w *FileWatcher) Start(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	done := make(chan struct{})
	go w.watchLoop(ctx, watcher, done)
	w.logger.Infow("Watching config file for changes", "path", w.path)
	return done, nil
}

// Stop signals the watcher to stop. Safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *FileWatcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	defer func() { _ = watcher.Close() }()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		var debounceC <-chan time.Time
		if debounceTimer != nil {
			debounceC = debounceTimer.C
		}

		select {
		case <-ctx.Done():
			w.logger.Info("Config watcher context cancelled")
			return
		case <-w.stopCh:
			w.logger.Info("Config watcher stopped")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer == nil {
				debounceTimer = time.NewTimer(w.debounce)
			} else {
				if !debounceTimer.Stop() {
					select {
					case <-debounceTimer.C:
					default:
					}
				}
				debounceTimer.Reset(w.debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("Config watcher error", "error", err)
		case <-debounceC:
			debounceTimer = nil
			w.reload()
		}
	}
}

func (w *FileWatcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warnw("Ignoring invalid config change", "path", w.path, "error", err)
		return
	}
	w.logger.Infow("Config file reloaded", "path", w.path)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
