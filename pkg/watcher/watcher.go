package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	DefaultDebounce = 3 * time.Second
	DefaultCapacity = 64

	errorsCapacity = 8
)

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period a path needs before its event is
	// delivered.
	Debounce time.Duration
	// Capacity of the events channel.
	Capacity int
	// Ignore lists directory names that are never watched, at any depth.
	Ignore []string
}

// Watcher delivers debounced events for every file below root.
type Watcher struct {
	root   string
	opts   Options
	ignore map[string]bool
	logger zerolog.Logger

	fs     *fsnotify.Watcher
	events chan Event
	errors chan error
	done   chan struct{}
	loop   sync.WaitGroup
	// inflight counts flushes that may still send on events.
	inflight sync.WaitGroup

	mu        sync.Mutex
	debouncer *debouncer
	started   bool
	closed    bool
}

// New creates a watcher for root. Nothing is subscribed until Start.
func New(root string, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}

	ignore := make(map[string]bool, len(opts.Ignore))
	for _, name := range opts.Ignore {
		ignore[name] = true
	}

	return &Watcher{
		root:      root,
		opts:      opts,
		ignore:    ignore,
		logger:    logging.GetLogger("watcher"),
		events:    make(chan Event, opts.Capacity),
		errors:    make(chan error, errorsCapacity),
		done:      make(chan struct{}),
		debouncer: newDebouncer(opts.Debounce),
	}
}

// Start subscribes to root and every directory below it. On failure the
// watcher is unusable and should be closed.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.New(errors.ErrWatch, "watcher is closed")
	}
	if w.started {
		return errors.New(errors.ErrWatch, "watcher already started")
	}

	info, err := os.Stat(w.root)
	if err != nil {
		return errors.Wrapf(err, errors.ErrWatch, "cannot watch %s", w.root).
			WithDetail("path", w.root)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrWatch, "cannot watch %s: not a directory", w.root).
			WithDetail("path", w.root)
	}

	source, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrWatch, "cannot create filesystem watcher")
	}
	w.fs = source

	count, err := w.addTree(w.root)
	if err != nil {
		return errors.Wrapf(err, errors.ErrWatch, "cannot watch %s", w.root).
			WithDetail("path", w.root).
			WithHint("raise fs.inotify.max_user_watches or add large directories to watch.ignore")
	}

	w.started = true
	w.loop.Add(1)
	go w.run()

	w.logger.Debug().
		Str("root", w.root).
		Int("directories", count).
		Dur("debounce", w.opts.Debounce).
		Msg("Watching")
	return nil
}

// Events returns the debounced event stream. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns subscription errors reported while watching.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the subscription, drops pending events and closes the Events
// and Errors channels. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.debouncer.stop()
	w.debouncer = nil
	w.mu.Unlock()

	close(w.done)

	var err error
	if w.fs != nil {
		err = w.fs.Close()
	}
	w.loop.Wait()
	w.inflight.Wait()
	close(w.events)
	close(w.errors)
	return err
}

// addTree adds dir and all non-ignored directories below it.
func (w *Watcher) addTree(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// The directory may vanish between the event and the walk.
			if path != dir && os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != w.root && w.ignore[entry.Name()] {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

func (w *Watcher) ignored(path string) bool {
	if len(w.ignore) == 0 {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if w.ignore[part] {
			return true
		}
	}
	return false
}

func (w *Watcher) run() {
	defer w.loop.Done()
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.handleError(err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	kind := kindOf(event.Op)
	if kind == 0 || w.ignored(event.Name) {
		return
	}

	if kind == KindCreate {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if n, err := w.addTree(event.Name); err != nil {
				w.handleError(err)
			} else {
				w.logger.Debug().Str("path", event.Name).Int("directories", n).Msg("Watching new directory")
			}
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	raw := Event{Path: event.Name, Op: event.Op, Kind: kind, Timestamp: time.Now().UTC()}
	if w.debouncer.schedule(event.Name, raw, w.flush) {
		w.logger.Trace().Str("path", event.Name).Str("op", event.Op.String()).Msg("Coalesced event")
	}
}

func (w *Watcher) flush(path string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	event, ok := w.debouncer.pop(path)
	if !ok {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	w.logger.Debug().
		Str("path", event.Path).
		Str("kind", event.Kind.String()).
		Int("count", event.Count).
		Msg("Event")

	select {
	case w.events <- event:
	case <-w.done:
	}
}

func (w *Watcher) handleError(err error) {
	w.logger.Warn().Err(err).Msg("Watch error")
	select {
	case w.errors <- errors.Wrap(err, errors.ErrWatch, "watch error"):
	case <-w.done:
	default:
		w.logger.Warn().Msg("Dropping watch error, errors channel is full")
	}
}
