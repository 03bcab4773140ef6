// Package reload keeps a running matcher.Matcher snapshot up to date with
// its on-disk configuration directory. It watches the tree with fsnotify,
// waits for the burst of events a save or `git checkout` produces to go
// quiet (the same stability-wait debounce a spool watcher uses before
// handing a file to a downstream consumer, applied here to a directory
// of configuration files instead), and collapses concurrent rebuild
// triggers with golang.org/x/sync/singleflight so a storm of fsnotify
// events produces exactly one Matcher.Build call.
//
// The active snapshot is held in an atomic.Pointer so Process callers never
// take a lock on the read path.
package reload

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"

	"github.com/0x4d31/matcherd/internal/accessor"
	"github.com/0x4d31/matcherd/internal/matcher"
)

// Reloader owns a hot-swappable matcher.Matcher built from a configuration
// directory, and a watcher that rebuilds it whenever the directory changes.
type Reloader struct {
	configDir     string
	registry      *accessor.Registry
	matcherOpts   []matcher.Option
	stabilityWait time.Duration
	logger        *slog.Logger

	current atomic.Pointer[matcher.Matcher]
	group   singleflight.Group

	watcher *fsnotify.Watcher

	onReload func(*matcher.Matcher)

	pending   map[string]time.Time
	pendingCh chan struct{}
}

// Option configures a Reloader.
type Option func(*Reloader)

// WithStabilityWait overrides the default 2s debounce window.
func WithStabilityWait(d time.Duration) Option {
	return func(r *Reloader) { r.stabilityWait = d }
}

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reloader) { r.logger = logger }
}

// WithOnReload registers a callback invoked after every successful rebuild,
// receiving the new snapshot. Useful for wiring a trace sink's rule-set
// metadata or logging a rebuild summary.
func WithOnReload(fn func(*matcher.Matcher)) Option {
	return func(r *Reloader) { r.onReload = fn }
}

// WithMatcherOptions passes matcher.Option values (e.g. matcher.WithTraceSink)
// through to every matcher.Build call the Reloader makes, including the
// initial one.
func WithMatcherOptions(opts ...matcher.Option) Option {
	return func(r *Reloader) { r.matcherOpts = append(r.matcherOpts, opts...) }
}

// New builds an initial matcher.Matcher snapshot from configDir and returns
// a Reloader ready to watch it. It does not start watching until Start is
// called.
func New(configDir string, registry *accessor.Registry, opts ...Option) (*Reloader, error) {
	r := &Reloader{
		configDir:     configDir,
		registry:      registry,
		stabilityWait: 2 * time.Second,
		logger:        slog.Default(),
		pending:       make(map[string]time.Time),
		pendingCh:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}

	m, err := matcher.Build(configDir, registry, r.matcherOpts...)
	if err != nil {
		return nil, fmt.Errorf("reload: initial build: %w", err)
	}
	r.current.Store(m)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("reload: fsnotify.NewWatcher: %w", err)
	}
	r.watcher = w

	if err := r.addRecursive(configDir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("reload: watch %s: %w", configDir, err)
	}

	return r, nil
}

// Matcher returns the current snapshot. Safe to call concurrently with
// Start's rebuilds; the returned pointer is never mutated in place.
func (r *Reloader) Matcher() *matcher.Matcher {
	return r.current.Load()
}

func (r *Reloader) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return r.watcher.Add(path)
		}
		return nil
	})
}

// Start runs the fsnotify event loop until ctx is cancelled. Events are
// debounced behind stabilityWait before triggering a rebuild ("wait
// until the file stops changing"), applied here to a whole directory
// tree instead of one file at a time.
func (r *Reloader) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.stabilityWait / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return r.watcher.Close()
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			r.noteChange(ev.Name)
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := r.watcher.Add(ev.Name); err != nil {
						r.logger.Warn("reload: failed to watch new directory", "path", ev.Name, "error", err)
					}
				}
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("reload: fsnotify error", "error", err)
		case <-ticker.C:
			r.maybeRebuild(ctx)
		}
	}
}

func (r *Reloader) noteChange(path string) {
	r.pending[path] = time.Now()
}

// maybeRebuild triggers a rebuild once every pending change has been quiet
// for at least stabilityWait. A single rebuild absorbs every pending path,
// so touching ten files during one `git checkout` still yields one
// Matcher.Build call.
func (r *Reloader) maybeRebuild(ctx context.Context) {
	if len(r.pending) == 0 {
		return
	}
	now := time.Now()
	for _, last := range r.pending {
		if now.Sub(last) < r.stabilityWait {
			return
		}
	}
	r.pending = make(map[string]time.Time)
	r.rebuild(ctx)
}

// rebuild collapses concurrent callers behind singleflight so a rebuild
// already in flight is shared rather than duplicated.
func (r *Reloader) rebuild(_ context.Context) {
	v, err, _ := r.group.Do("build", func() (interface{}, error) {
		return matcher.Build(r.configDir, r.registry, r.matcherOpts...)
	})
	if err != nil {
		r.logger.Warn("reload: rebuild failed, keeping previous snapshot", "config_dir", r.configDir, "error", err)
		return
	}
	m := v.(*matcher.Matcher)
	r.current.Store(m)
	r.logger.Info("reload: configuration rebuilt", "config_dir", r.configDir)
	if r.onReload != nil {
		r.onReload(m)
	}
}

// Close stops the underlying fsnotify watcher.
func (r *Reloader) Close() error {
	return r.watcher.Close()
}
