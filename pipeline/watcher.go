package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/c360studio/semshape/source"
)

const (
	// eventChannelBuffer is the size of the change event channel.
	eventChannelBuffer = 16

	defaultDebounce = 500 * time.Millisecond
)

// ChangeEvent reports ontology files whose content changed during one
// debounce window.
type ChangeEvent struct {
	Paths []string
}

// Watcher watches a local ontology source and emits debounced change events.
// A single file is watched through its directory so editors that replace
// the file on save are still seen.
type Watcher struct {
	root       string
	file       string
	debounce   time.Duration
	extensions map[string]bool
	excludes   map[string]bool
	watcher    *fsnotify.Watcher
	logger     *slog.Logger

	// Debouncing: collect changes before emitting
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashes map[string]string
	events chan ChangeEvent
}

// NewWatcher creates a watcher for a file or module directory. Reserved
// directories are not watched.
func NewWatcher(locator string, debounce time.Duration, reserved []string, logger *slog.Logger) (*Watcher, error) {
	if source.IsRemote(locator) {
		return nil, fmt.Errorf("cannot watch remote source %s", locator)
	}
	info, err := os.Stat(locator)
	if err != nil {
		return nil, fmt.Errorf("stat watch target: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	root, file := locator, ""
	if !info.IsDir() {
		root, file = filepath.Dir(locator), filepath.Clean(locator)
	}

	extensions := make(map[string]bool)
	for _, ext := range source.Extensions(source.DefaultFormats()) {
		extensions[ext] = true
	}
	excludes := make(map[string]bool)
	for _, dir := range reserved {
		excludes[dir] = true
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	return &Watcher{
		root:       root,
		file:       file,
		debounce:   debounce,
		extensions: extensions,
		excludes:   excludes,
		watcher:    fsw,
		logger:     logger,
		pending:    make(map[string]fsnotify.Op),
		hashes:     make(map[string]string),
		events:     make(chan ChangeEvent, eventChannelBuffer),
	}, nil
}

// Events returns the channel of change events. It is closed when the
// watcher stops.
func (w *Watcher) Events() <-chan ChangeEvent {
	return w.events
}

// Start records the current content hashes, adds the watches and begins
// processing events until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatches(); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Ontology watcher started",
		"root", w.root,
		"file", w.file,
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher. The events channel is closed by processEvents
// when it exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// addWatches watches the root, and for module directories every
// non-reserved subdirectory, hashing the files already present.
func (w *Watcher) addWatches() error {
	if w.file != "" {
		w.seed(w.file)
		return w.watcher.Add(w.root)
	}

	return filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if w.relevant(path) {
				w.seed(path)
			}
			return nil
		}
		if path != w.root && w.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

func (w *Watcher) seed(path string) {
	if hash, err := fileHash(path); err == nil {
		w.hashes[path] = hash
	}
}

func (w *Watcher) skipDir(name string) bool {
	return w.excludes[name] || strings.HasPrefix(name, ".")
}

// relevant reports whether a file event can affect the compiled output.
func (w *Watcher) relevant(path string) bool {
	if w.file != "" {
		return filepath.Clean(path) == w.file
	}
	if !w.extensions[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		if part != "." && w.skipDir(part) {
			return false
		}
	}
	return true
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

// handleFSEvent records a single fsnotify event.
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if w.file == "" && event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.handleNewDirectory(path)
			return
		}
	}
	if !w.relevant(path) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Ontology change detected", "path", path, "op", event.Op.String())
}

// handleNewDirectory watches a newly created module directory.
func (w *Watcher) handleNewDirectory(path string) {
	if w.skipDir(filepath.Base(path)) {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
		return
	}
	w.logger.Debug("Added watch for new directory", "path", path)

	// Files written before the watch was added produce no events.
	entries, err := os.ReadDir(path)
	if err != nil {
		return
	}
	w.pendingMu.Lock()
	for _, e := range entries {
		child := filepath.Join(path, e.Name())
		if !e.IsDir() && w.relevant(child) {
			w.pending[child] |= fsnotify.Create
		}
	}
	w.pendingMu.Unlock()
}

// flushPending emits one event for the files whose content changed.
func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var changed []string
	for path := range toProcess {
		hash, err := fileHash(path)
		if err != nil {
			// Removed or unreadable.
			if _, had := w.hashes[path]; had {
				delete(w.hashes, path)
				changed = append(changed, path)
			}
			continue
		}
		if old, had := w.hashes[path]; had && old == hash {
			continue
		}
		w.hashes[path] = hash
		changed = append(changed, path)
	}
	if len(changed) == 0 {
		return
	}
	slices.Sort(changed)

	select {
	case w.events <- ChangeEvent{Paths: changed}:
		w.logger.Debug("Sent change event", "paths", changed)
	case <-ctx.Done():
	}
}

func fileHash(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]), nil
}
