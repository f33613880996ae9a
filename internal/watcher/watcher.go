// Package watcher ingests documents dropped into watched directories.
// File events are debounced so editors writing in several bursts trigger one
// ingestion, and document IDs derive from the file path so rewrites update
// the same document instead of accumulating duplicates.
package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hyperjump/bunsho/internal/pipeline"
)

const defaultDebounce = 400 * time.Millisecond

// FileDocID returns a stable document ID for an absolute file path. The same
// path always yields the same ID, so re-ingesting a changed file replaces
// its previous chunks.
func FileDocID(absolutePath string) string {
	hash := sha256.Sum256([]byte(filepath.Clean(absolutePath)))
	return "file_" + hex.EncodeToString(hash[:16])
}

// Watcher watches drop directories and feeds changed files to the pipeline.
type Watcher struct {
	pipeline    *pipeline.Pipeline
	roots       []string
	extensions  []string
	recursive   bool
	debounce    time.Duration
	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
	logger      *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for event-level debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// NewWatcher creates a watcher over the given roots. extensions filters
// which files are ingested; empty means every supported extension.
func NewWatcher(p *pipeline.Pipeline, roots, extensions []string, recursive bool, opts ...Option) *Watcher {
	w := &Watcher{
		pipeline:    p,
		roots:       roots,
		extensions:  extensions,
		recursive:   recursive,
		debounce:    defaultDebounce,
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It returns after setup; events are handled on a
// background goroutine until ctx is cancelled or Stop is called. Missing
// roots are created.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.logger.Debug("watcher starting",
		zap.Strings("roots", w.roots),
		zap.Strings("extensions", w.extensions),
		zap.Bool("recursive", w.recursive))
	for _, root := range w.roots {
		if err := w.addRootLocked(root); err != nil {
			_ = w.watcher.Close()
			w.watcher = nil
			w.started = false
			w.mu.Unlock()
			return err
		}
	}
	w.mu.Unlock()
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	path := ev.Name
	switch {
	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			w.handleNewDirectory(ctx, path)
			return
		}
		if w.shouldIngest(path) {
			w.debounceIngest(ctx, path)
		}
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		w.cancelDebounce(path)
		if w.shouldIngest(path) {
			w.removeFile(ctx, path)
		}
	}
}

// handleNewDirectory starts watching a directory created under a root and
// ingests whatever it already contains.
func (w *Watcher) handleNewDirectory(ctx context.Context, dirPath string) {
	w.mu.Lock()
	recursive := w.recursive
	watcher := w.watcher
	w.mu.Unlock()
	if watcher == nil || !recursive {
		return
	}
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if addErr := watcher.Add(path); addErr != nil {
				w.logger.Debug("watcher failed to add directory", zap.String("path", path), zap.Error(addErr))
			}
		}
		return nil
	})
	w.syncDirectory(ctx, dirPath)
}

// shouldIngest reports whether the file matches the extension filter and the
// pipeline supports its format.
func (w *Watcher) shouldIngest(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !w.pipeline.Supports(ext) {
		return false
	}
	if len(w.extensions) == 0 {
		return true
	}
	want := strings.TrimPrefix(ext, ".")
	for _, e := range w.extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == want {
			return true
		}
	}
	return false
}

func (w *Watcher) debounceIngest(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		w.mu.Unlock()
		w.ingestFile(ctx, path)
	})
}

func (w *Watcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
		delete(w.debounceMap, path)
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	doc, err := w.pipeline.IngestFileWithID(ctx, abs, FileDocID(abs))
	if err != nil {
		w.logger.Error("watcher ingestion failed", zap.String("path", abs), zap.Error(err))
		return
	}
	w.logger.Info("watcher ingested file",
		zap.String("path", abs),
		zap.String("document_id", doc.ID))
}

func (w *Watcher) removeFile(ctx context.Context, path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if err := w.pipeline.Delete(ctx, FileDocID(abs)); err != nil {
		w.logger.Error("watcher removal failed", zap.String("path", abs), zap.Error(err))
		return
	}
	w.logger.Info("watcher removed file", zap.String("path", abs))
}

func (w *Watcher) addRootLocked(root string) error {
	root = filepath.Clean(root)
	if _, err := os.Stat(root); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(root, 0755); err != nil {
			return err
		}
	}
	if !w.recursive {
		return w.watcher.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) syncDirectory(ctx context.Context, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if w.shouldIngest(path) {
			w.ingestFile(ctx, path)
		}
		return nil
	})
}

// SyncExistingFiles ingests every matching file already present in the
// watched roots. Call after Start so files that predate the watcher are
// indexed too.
func (w *Watcher) SyncExistingFiles(ctx context.Context) {
	w.mu.Lock()
	roots := append([]string(nil), w.roots...)
	w.mu.Unlock()
	for _, root := range roots {
		w.syncDirectory(ctx, root)
	}
}

// Directories returns a copy of the watched root directories.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.roots...)
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.debounceMap {
		t.Stop()
		delete(w.debounceMap, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
