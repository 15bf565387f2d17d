package loader

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const eventChannelBuffer = 64

// WatchConfig configures document watching.
type WatchConfig struct {
	// Debounce is how long to wait for more changes before emitting a
	// batch.
	Debounce time.Duration `yaml:"debounce"`

	// ExcludeDirs lists directory names to skip.
	ExcludeDirs []string `yaml:"exclude_dirs"`
}

// DefaultWatchConfig returns the default watch configuration.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		Debounce:    500 * time.Millisecond,
		ExcludeDirs: DefaultExcludeDirs,
	}
}

// Watcher emits batches of changed document paths, debounced so a
// save-all in an editor triggers one revalidation run.
type Watcher struct {
	root    string
	config  WatchConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	exclude map[string]bool

	pendingMu sync.Mutex
	pending   map[string]bool

	batches chan []string
}

// NewWatcher creates a watcher over the root directory.
func NewWatcher(root string, config WatchConfig, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.Debounce <= 0 {
		config.Debounce = 500 * time.Millisecond
	}
	exclude := make(map[string]bool)
	dirs := config.ExcludeDirs
	if len(dirs) == 0 {
		dirs = DefaultExcludeDirs
	}
	for _, d := range dirs {
		exclude[d] = true
	}
	return &Watcher{
		root:    root,
		config:  config,
		watcher: fsw,
		logger:  logger,
		exclude: exclude,
		pending: make(map[string]bool),
		batches: make(chan []string, eventChannelBuffer),
	}, nil
}

// Batches returns the channel of debounced change batches.
func (w *Watcher) Batches() <-chan []string {
	return w.batches
}

// Start begins watching. The batch channel closes when ctx is done or
// the watcher is stopped.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.root); err != nil {
		return err
	}
	go w.run(ctx)
	w.logger.Info("document watcher started", "root", w.root, "debounce", w.config.Debounce)
	return nil
}

// Stop closes the underlying filesystem watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if w.exclude[base] || (strings.HasPrefix(base, ".") && path != root) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.batches)
	ticker := time.NewTicker(w.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	// New directories need their own watch.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addWatchesRecursive(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if !isDocument(event.Name) {
		return
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	w.pendingMu.Lock()
	w.pending[event.Name] = true
	w.pendingMu.Unlock()
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	batch := make([]string, 0, len(w.pending))
	for path := range w.pending {
		batch = append(batch, path)
	}
	w.pending = make(map[string]bool)
	w.pendingMu.Unlock()

	select {
	case w.batches <- batch:
	default:
		w.logger.Warn("dropping change batch, channel full", "size", len(batch))
	}
}

func isDocument(path string) bool {
	return strings.HasSuffix(path, ".ubi.yaml") || strings.HasSuffix(path, ".ubi.yml")
}
