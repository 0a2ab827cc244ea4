package taxonomy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Provider hands out the taxonomy in effect right now.
// Callers take one snapshot per operation so a reload never splits a computation.
type Provider interface {
	Current() *Taxonomy
}

type staticProvider struct {
	t *Taxonomy
}

func (p staticProvider) Current() *Taxonomy { return p.t }

// Static returns a Provider that always yields t.
func Static(t *Taxonomy) Provider {
	return staticProvider{t: t}
}

// ReloaderOptions configures a Reloader.
type ReloaderOptions struct {
	// Debounce is how long the file must stay quiet before it is re-read.
	Debounce time.Duration
	// OnReload is called after every reload attempt with its error (nil on success).
	OnReload func(err error)
}

func (o *ReloaderOptions) setDefaults() {
	if o.Debounce <= 0 {
		o.Debounce = 250 * time.Millisecond
	}
}

// Reloader serves a taxonomy loaded from a YAML file and swaps in a new one
// whenever the file changes. An invalid edit is logged and the previous
// taxonomy stays in effect.
type Reloader struct {
	path    string
	logger  *slog.Logger
	opts    ReloaderOptions
	current atomic.Pointer[Taxonomy]

	watcher   *fsnotify.Watcher
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewReloader loads the file at path and prepares a watch on it.
// The initial load must succeed. Call Start to begin watching.
func NewReloader(path string, logger *slog.Logger, opts ReloaderOptions) (*Reloader, error) {
	opts.setDefaults()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve taxonomy path: %w", err)
	}

	t, err := Load(abs)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	// Watch the directory: editors often replace the file by rename.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch taxonomy directory: %w", err)
	}

	r := &Reloader{
		path:    abs,
		logger:  logger,
		opts:    opts,
		watcher: w,
		done:    make(chan struct{}),
	}
	r.current.Store(t)
	return r, nil
}

// Current returns the most recently loaded taxonomy.
func (r *Reloader) Current() *Taxonomy {
	return r.current.Load()
}

// Path returns the absolute path being watched.
func (r *Reloader) Path() string {
	return r.path
}

// Start begins processing file events in the background.
func (r *Reloader) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.run(ctx)
}

// Reload re-reads the file now. On error the current taxonomy is kept.
func (r *Reloader) Reload() error {
	t, err := Load(r.path)
	if err == nil {
		r.current.Store(t)
	}
	if r.opts.OnReload != nil {
		r.opts.OnReload(err)
	}
	return err
}

// Close stops the watcher and waits for the event loop to exit.
func (r *Reloader) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		err = r.watcher.Close()
		r.wg.Wait()
	})
	return err
}

// Shutdown implements do.Shutdowner.
func (r *Reloader) Shutdown() error {
	return r.Close()
}

func (r *Reloader) run(ctx context.Context) {
	defer r.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(r.opts.Debounce)
			} else {
				timer.Reset(r.opts.Debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := r.Reload(); err != nil {
				r.logger.Warn("taxonomy reload failed, keeping previous version",
					"path", r.path, "error", err)
				continue
			}
			r.logger.Info("taxonomy reloaded",
				"path", r.path, "domains", len(r.Current().Names()))
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("taxonomy watcher error", "error", err)
		}
	}
}
