// Package watch invalidates cached query results when the catalog file
// changes on disk. The SQLite extract is replaced wholesale by the ingest
// pipeline, so a change to the file means every cached response is stale.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/starcat-io/starfov/internal/observability"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher follows one catalog file and bumps a generation counter when it
// is rewritten. The directory is watched rather than the file: atomic
// replaces (write temp + rename) swap the inode, and a watch on the old
// inode would go quiet after the first swap.
type Watcher struct {
	path     string
	fw       *fsnotify.Watcher
	debounce time.Duration
	onChange func(gen uint64)
	gen      atomic.Uint64
	log      zerolog.Logger
	done     chan struct{}
}

// New prepares a watcher for path. onChange runs after each debounced
// change with the new generation; nil is allowed. A non-positive debounce
// selects the default.
func New(path string, debounce time.Duration, log zerolog.Logger, onChange func(gen uint64)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	w := &Watcher{
		path:     abs,
		fw:       fw,
		debounce: debounce,
		onChange: onChange,
		log:      log,
		done:     make(chan struct{}),
	}
	w.gen.Store(1)
	observability.SetCatalogGeneration(1)
	return w, nil
}

// Start registers the directory watch and launches the event loop. The
// loop exits when ctx is canceled or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	go w.run(ctx)
	return nil
}

// Generation returns the current catalog generation. It starts at 1 and
// increases by one per detected change.
func (w *Watcher) Generation() uint64 {
	return w.gen.Load()
}

// Close stops the watcher and waits for the event loop to drain.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		case <-fire:
			timer, fire = nil, nil
			gen := w.gen.Add(1)
			observability.SetCatalogGeneration(gen)
			w.log.Info().Uint64("generation", gen).Str("path", w.path).
				Msg("catalog file changed, cached results invalidated")
			if w.onChange != nil {
				w.onChange(gen)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Str("path", w.path).Msg("catalog watch error")
		}
	}
}

// relevant reports whether ev touches the catalog file itself. Sibling
// files in the directory (journals, temp files from other tools) are
// ignored unless they land on our path.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0
}
