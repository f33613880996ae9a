package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/bunsho/internal/config"
	"github.com/hyperjump/bunsho/internal/embedding"
	"github.com/hyperjump/bunsho/internal/models"
	"github.com/hyperjump/bunsho/internal/pipeline"
	"github.com/hyperjump/bunsho/internal/storage"
	"github.com/hyperjump/bunsho/internal/vector"
)

func TestFileDocID(t *testing.T) {
	a := FileDocID("/data/docs/report.pdf")
	b := FileDocID("/data/docs/report.pdf")
	if a != b {
		t.Error("same path yields different IDs")
	}
	if !strings.HasPrefix(a, "file_") {
		t.Errorf("id: %q", a)
	}
	if len(a) != len("file_")+32 {
		t.Errorf("id length: %d", len(a))
	}
	if FileDocID("/data/docs/other.pdf") == a {
		t.Error("distinct paths collide")
	}
	// Path cleaning normalizes before hashing.
	if FileDocID("/data/docs/../docs/report.pdf") != a {
		t.Error("equivalent paths yield different IDs")
	}
}

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Embedding.Backend = "mock"
	cfg.Embedding.Dimensions = 64
	db, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store, err := vector.NewMemoryStore(cfg.Embedding.Dimensions)
	if err != nil {
		t.Fatal(err)
	}
	return pipeline.New(cfg, db, store, embedding.NewMockEmbedder(cfg.Embedding.Dimensions))
}

func TestShouldIngest(t *testing.T) {
	p := newTestPipeline(t)

	// No extension filter: anything the pipeline supports.
	w := NewWatcher(p, nil, nil, true)
	if !w.shouldIngest("/drop/notes.txt") || !w.shouldIngest("/drop/REPORT.PDF") {
		t.Error("supported file rejected")
	}
	if w.shouldIngest("/drop/tool.exe") || w.shouldIngest("/drop/noext") {
		t.Error("unsupported file accepted")
	}

	// Filter narrows the supported set; entries match with or without dots.
	w = NewWatcher(p, nil, []string{".txt", "MD"}, true)
	if !w.shouldIngest("/drop/notes.txt") || !w.shouldIngest("/drop/readme.md") {
		t.Error("filtered extension rejected")
	}
	if w.shouldIngest("/drop/report.pdf") {
		t.Error("extension outside filter accepted")
	}
}

func TestWatcher_SyncExistingFiles(t *testing.T) {
	p := newTestPipeline(t)
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.txt"), "Existing file content that should be indexed on sync.")
	mustWrite(t, filepath.Join(root, "skip.exe"), "binary")
	sub := filepath.Join(root, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(sub, "b.md"), "Nested markdown content that should also be indexed.")

	w := NewWatcher(p, []string{root}, nil, true)
	ctx := context.Background()
	w.SyncExistingFiles(ctx)

	stats, err := p.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Documents != 2 {
		t.Errorf("documents after sync: %d", stats.Documents)
	}
}

func TestWatcher_IngestsDroppedFile(t *testing.T) {
	p := newTestPipeline(t)
	root := t.TempDir()
	w := NewWatcher(p, []string{root}, nil, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(root, "dropped.txt")
	mustWrite(t, path, "A document dropped into the watched directory while running.")

	doc := waitForDocument(t, p, FileDocID(path))
	if doc.Filename != "dropped.txt" {
		t.Errorf("filename: %q", doc.Filename)
	}
}

func TestWatcher_RemovalDeletesDocument(t *testing.T) {
	p := newTestPipeline(t)
	root := t.TempDir()
	path := filepath.Join(root, "transient.txt")
	mustWrite(t, path, "A document that will be removed while the watcher runs.")

	w := NewWatcher(p, []string{root}, nil, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	w.SyncExistingFiles(ctx)
	waitForDocument(t, p, FileDocID(path))

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := p.GetDocument(ctx, FileDocID(path)); err != nil {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Error("document still present after file removal")
}

func TestWatcher_StartCreatesMissingRoot(t *testing.T) {
	p := newTestPipeline(t)
	root := filepath.Join(t.TempDir(), "not-yet")
	w := NewWatcher(p, []string{root}, nil, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root not created: %v", err)
	}
	dirs := w.Directories()
	if len(dirs) != 1 || dirs[0] != root {
		t.Errorf("directories: %v", dirs)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	p := newTestPipeline(t)
	w := NewWatcher(p, []string{t.TempDir()}, nil, true)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}

func waitForDocument(t *testing.T, p *pipeline.Pipeline, docID string) *models.Document {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if doc, err := p.GetDocument(context.Background(), docID); err == nil {
			return doc
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("document %s never appeared", docID)
	return nil
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
