// Package watch ingests analyzer reports dropped into a directory.
//
// Each new or rewritten *.json file is ingested on its own once writes to
// it have been quiet for the debounce interval, so a half-copied report is
// not parsed. Hidden files and subdirectories are ignored.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driving"
)

// DefaultDebounce is the quiet period before a changed file is ingested.
const DefaultDebounce = 500 * time.Millisecond

// Result reports one ingest attempt.
type Result struct {
	Path    string
	Summary *domain.IngestSummary
	Err     error
}

// Watcher ingests reports written to a directory.
type Watcher struct {
	dir      string
	audit    driving.AuditService
	debounce time.Duration
}

// NewWatcher creates a watcher for dir. A non-positive debounce selects
// DefaultDebounce.
func NewWatcher(dir string, audit driving.AuditService, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dir: dir, audit: audit, debounce: debounce}
}

// Watch starts watching and returns a channel of ingest results. The
// channel is closed after ctx is cancelled and in-flight ingests finish.
func (w *Watcher) Watch(ctx context.Context) (<-chan Result, error) {
	info, err := os.Stat(w.dir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: %w: not a directory", w.dir, domain.ErrInvalidInput)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}

	results := make(chan Result, 16)
	go w.loop(ctx, fsw, results)
	return results, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, results chan<- Result) {
	var (
		mu      sync.Mutex
		pending = map[string]*time.Timer{}
		wg      sync.WaitGroup
	)
	defer func() {
		fsw.Close()
		mu.Lock()
		for path, t := range pending {
			if t.Stop() {
				wg.Done()
			}
			delete(pending, path)
		}
		mu.Unlock()
		wg.Wait()
		close(results)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			path := w.handleFsEvent(event)
			if path == "" {
				continue
			}
			mu.Lock()
			if t, ok := pending[path]; ok && t.Stop() {
				wg.Done()
			}
			wg.Add(1)
			var timer *time.Timer
			timer = time.AfterFunc(w.debounce, func() {
				defer wg.Done()
				mu.Lock()
				if pending[path] == timer {
					delete(pending, path)
				}
				mu.Unlock()
				result := w.ingest(ctx, path)
				select {
				case results <- result:
				case <-ctx.Done():
				}
			})
			pending[path] = timer
			mu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			select {
			case results <- Result{Path: w.dir, Err: fmt.Errorf("watcher: %w", err)}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handleFsEvent returns the report path an event should trigger, or ""
// when the event is ignored.
func (w *Watcher) handleFsEvent(event fsnotify.Event) string {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return ""
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".json") {
		return ""
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return ""
	}
	return event.Name
}

func (w *Watcher) ingest(ctx context.Context, path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("read report: %w", err)}
	}
	summary, err := w.audit.Ingest(ctx, []domain.ReportFile{{
		Filename: filepath.Base(path),
		Data:     data,
	}})
	return Result{Path: path, Summary: summary, Err: err}
}
