// Package workspace watches a renderer workspace directory and refreshes the
// store when its documents change on disk.
package workspace

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/mviewer/errors"
	"github.com/grovetools/mviewer/logging"
	"github.com/grovetools/mviewer/pkg/store"
	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 100 * time.Millisecond

// DefaultPatterns are the documents whose changes trigger a refresh.
var DefaultPatterns = []string{store.ViewDocument, store.PickDocument}

// Refresher reloads documents. *store.Store satisfies it.
type Refresher interface {
	RefreshViewState(ctx context.Context) error
	RefreshPickResult(ctx context.Context) error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithPatterns replaces the file patterns that trigger a refresh.
func WithPatterns(patterns ...string) Option {
	return func(w *Watcher) {
		if len(patterns) > 0 {
			w.patterns = patterns
		}
	}
}

// WithDebounce sets how long a file must stay quiet before it is reloaded.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOnRefresh registers a callback run after every refresh attempt.
func WithOnRefresh(fn func(name string, err error)) Option {
	return func(w *Watcher) { w.onRefresh = fn }
}

// WithLogger sets the watcher's logger.
func WithLogger(l *logrus.Entry) Option {
	return func(w *Watcher) { w.logger = l }
}

// Watcher turns file events in the workspace into store refreshes.
type Watcher struct {
	watcher   *fsnotify.Watcher
	matcher   *patternmatcher.PatternMatcher
	refresher Refresher
	dir       string
	patterns  []string
	debounce  time.Duration
	onRefresh func(name string, err error)
	logger    *logrus.Entry

	mu      sync.Mutex
	pending map[string]*time.Timer
	fire    chan string
	done    chan struct{}
	once    sync.Once
}

// NewWatcher starts watching dir. Events are buffered until Start is called.
func NewWatcher(dir string, refresher Refresher, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		refresher: refresher,
		dir:       dir,
		patterns:  DefaultPatterns,
		debounce:  DefaultDebounce,
		pending:   map[string]*time.Timer{},
		fire:      make(chan string, 16),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logging.NewLogger("workspace")
	}

	matcher, err := patternmatcher.New(w.patterns)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid workspace pattern")
	}
	w.matcher = matcher

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create file watcher")
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to watch workspace").
			WithDetail("dir", dir)
	}
	w.watcher = watcher
	return w, nil
}

// Start processes events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Start(ctx context.Context) {
	defer w.stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.handleEvent(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Error("Watcher error")
		case name := <-w.fire:
			w.refresh(ctx, name)
		case <-ctx.Done():
			return
		}
	}
}

// Matches reports whether a workspace-relative name triggers a refresh.
func (w *Watcher) Matches(name string) bool {
	ok, err := w.matcher.MatchesOrParentMatches(name)
	if err != nil {
		w.logger.WithError(err).WithField("file", name).Debug("Pattern match failed")
		return false
	}
	return ok
}

func (w *Watcher) handleEvent(path string) {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	if !w.Matches(rel) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[rel]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[rel] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, rel)
		w.mu.Unlock()
		select {
		case w.fire <- rel:
		case <-w.done:
		}
	})
}

func (w *Watcher) refresh(ctx context.Context, name string) {
	w.logger.WithField("file", name).Debug("Workspace document changed")

	var err error
	if filepath.Base(name) == store.PickDocument {
		err = w.refresher.RefreshPickResult(ctx)
	} else {
		err = w.refresher.RefreshViewState(ctx)
	}
	if err != nil {
		w.logger.WithError(err).WithField("file", name).Warn("Refresh after change failed")
	}
	if w.onRefresh != nil {
		w.onRefresh(name, err)
	}
}

func (w *Watcher) stop() {
	w.once.Do(func() { close(w.done) })
	w.mu.Lock()
	for name, t := range w.pending {
		t.Stop()
		delete(w.pending, name)
	}
	w.mu.Unlock()
	w.watcher.Close()
}

// Close releases the watcher without waiting for Start.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
