package watcher

import (
	"time"
)

type debounceEntry struct {
	timer *time.Timer
	event Event
}

// debouncer keeps one timer per path. It is not safe for concurrent use;
// the Watcher guards it with its mutex.
type debouncer struct {
	duration time.Duration
	entries  map[string]debounceEntry
}

func newDebouncer(duration time.Duration) *debouncer {
	return &debouncer{
		duration: duration,
		entries:  make(map[string]debounceEntry),
	}
}

// schedule folds a raw event into the pending event for its path and
// restarts the path's timer. It reports whether an event was already pending.
func (d *debouncer) schedule(path string, op Event, flush func(string)) bool {
	if d == nil {
		return false
	}
	entry := d.entries[path]
	pending := entry.timer != nil

	entry.event.Path = path
	entry.event.Op |= op.Op
	entry.event.Kind = fold(entry.event.Kind, op.Kind)
	entry.event.Count++
	entry.event.Timestamp = op.Timestamp

	if entry.timer == nil {
		entry.timer = time.AfterFunc(d.duration, func() {
			flush(path)
		})
	} else {
		entry.timer.Reset(d.duration)
	}
	d.entries[path] = entry
	return pending
}

func (d *debouncer) pop(path string) (Event, bool) {
	if d == nil {
		return Event{}, false
	}
	entry, ok := d.entries[path]
	if !ok {
		return Event{}, false
	}
	delete(d.entries, path)
	return entry.event, true
}

func (d *debouncer) stop() {
	if d == nil {
		return
	}
	for _, entry := range d.entries {
		if entry.timer != nil {
			entry.timer.Stop()
		}
	}
	d.entries = nil
}
