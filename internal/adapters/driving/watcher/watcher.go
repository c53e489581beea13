// Package watcher ingests files dropped into a directory.
// It listens for filesystem events with fsnotify and hands each settled
// file to the ingestion service, one document at a time.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ragline/internal/core/domain"
	"github.com/custodia-labs/ragline/internal/core/ports/driving"
	"github.com/custodia-labs/ragline/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before it is ingested.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("watcher closed")

// partialSuffixes mark files that are still being written by another program.
var partialSuffixes = []string{"~", ".tmp", ".part", ".crdownload", ".swp"}

// Config configures a Watcher.
type Config struct {
	// Dir is the directory to watch. Subdirectories are not watched.
	Dir string

	// Debounce is the quiet period after the last write. Defaults to DefaultDebounce.
	Debounce time.Duration

	// Existing ingests files already present when watching starts.
	Existing bool

	// Metadata is attached to every ingested document.
	Metadata map[string]string
}

// Watcher turns Create and Write events into ingestion requests.
type Watcher struct {
	ingest   driving.IngestionService
	dir      string
	debounce time.Duration
	existing bool
	metadata map[string]string

	mu      sync.Mutex
	closed  bool
	fsw     *fsnotify.Watcher
	pending map[string]*time.Timer
	ready   chan string

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher for cfg.Dir.
func New(ingest driving.IngestionService, cfg Config) (*Watcher, error) {
	if ingest == nil {
		return nil, fmt.Errorf("%w: ingestion service is required", domain.ErrConfiguration)
	}
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("%w: watch directory is required", domain.ErrInvalidInput)
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve watch directory: %w", err)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		ingest:   ingest,
		dir:      dir,
		debounce: debounce,
		existing: cfg.Existing,
		metadata: cfg.Metadata,
		pending:  make(map[string]*time.Timer),
		ready:    make(chan string, 64),
		done:     make(chan struct{}),
	}, nil
}

// Dir returns the absolute watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Watch starts watching and returns a channel of finished ingestion items.
// The channel is closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.IngestionItem, error) {
	info, err := os.Stat(w.dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, w.dir)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, ErrClosed
	}
	if w.fsw != nil {
		w.mu.Unlock()
		return nil, errors.New("watcher already running")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		w.mu.Unlock()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.fsw = fsw
	w.mu.Unlock()

	logger.Info("Watching %s for new documents", w.dir)
	if w.existing {
		w.enqueueExisting()
	}

	out := make(chan domain.IngestionItem)
	go w.loop(ctx, fsw, out)
	return out, nil
}

// Close stops the watcher and cancels pending debounce timers.
func (w *Watcher) Close() error {
	w.stop()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil {
		return nil
	}
	err := w.fsw.Close()
	w.fsw = nil
	return err
}

// stop marks the watcher closed and releases timers blocked on ready.
func (w *Watcher) stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		for path, t := range w.pending {
			t.Stop()
			delete(w.pending, path)
		}
		w.mu.Unlock()
		close(w.done)
	})
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- domain.IngestionItem) {
	defer close(out)
	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if path, ok := w.handleFsEvent(ev); ok {
				w.schedule(path)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error: %v", err)
		case path := <-w.ready:
			item := w.ingestFile(ctx, path)
			select {
			case out <- item:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handleFsEvent returns the file to ingest for an event, if any.
// Only Create and Write on visible regular files qualify.
func (w *Watcher) handleFsEvent(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
			logger.Debug("watch: %s removed, indexed copy kept", ev.Name)
		}
		return "", false
	}
	if isHidden(ev.Name) || isPartial(ev.Name) {
		return "", false
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return ev.Name, true
}

// schedule (re)starts the debounce timer of a path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case w.ready <- path:
		case <-w.done:
		}
	})
}

func (w *Watcher) enqueueExisting() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("list %s: %v", w.dir, err)
		return
	}
	for _, e := range entries {
		path := filepath.Join(w.dir, e.Name())
		if !e.Type().IsRegular() || isHidden(path) || isPartial(path) {
			continue
		}
		w.schedule(path)
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) domain.IngestionItem {
	src := domain.SourceDescriptor{
		Path:        path,
		ContentType: detectMIMEType(path),
		Metadata:    domain.CopyMetadata(w.metadata),
	}

	item, err := w.ingest.IngestSingle(ctx, src)
	if item == nil {
		item = &domain.IngestionItem{
			Source: path,
			Title:  src.DisplayTitle(),
			Status: domain.StateFailed,
			Error:  &domain.ErrorDetail{Kind: domain.KindOf(err), Message: fmt.Sprint(err)},
		}
	}
	if err != nil {
		logger.Warn("watch: %s failed: %v", filepath.Base(path), err)
	} else {
		logger.Info("watch: %s ingested (%d chunks)", filepath.Base(path), item.ChunkCount)
	}
	return *item
}

// isHidden reports whether the file name starts with a dot.
func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func isPartial(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, s := range partialSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// extensionTypes covers extensions the system MIME table often lacks.
var extensionTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".eml":      "message/rfc822",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// detectMIMEType maps a file extension to a media type without parameters.
// Unknown extensions return "" so the ingestion service can sniff the content.
func detectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	if mt, ok := extensionTypes[ext]; ok {
		return mt
	}
	mt := mime.TypeByExtension(ext)
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}
