package watcher

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// Kind is the folded kind of a debounced event.
type Kind int

const (
	KindChmod Kind = iota + 1
	KindWrite
	KindCreate
	KindRename
	KindRemove
)

func (k Kind) String() string {
	switch k {
	case KindChmod:
		return "chmod"
	case KindWrite:
		return "write"
	case KindCreate:
		return "create"
	case KindRename:
		return "rename"
	case KindRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Dispatchable reports whether events of this kind trigger module commands.
func (k Kind) Dispatchable() bool {
	return k == KindCreate || k == KindWrite
}

// Event is one debounced change to a path.
type Event struct {
	Path string
	// Op accumulates every raw fsnotify op seen in the window.
	Op   fsnotify.Op
	Kind Kind
	// Count is the number of raw events folded into this one.
	Count     int
	Timestamp time.Time
}

func kindOf(op fsnotify.Op) Kind {
	switch {
	case op.Has(fsnotify.Remove):
		return KindRemove
	case op.Has(fsnotify.Rename):
		return KindRename
	case op.Has(fsnotify.Create):
		return KindCreate
	case op.Has(fsnotify.Write):
		return KindWrite
	case op.Has(fsnotify.Chmod):
		return KindChmod
	default:
		return 0
	}
}

// fold merges the kind of a newer raw event into an older one. A later
// remove or rename always wins, and so does anything following one (the
// path came back). Otherwise create beats write beats chmod.
func fold(prev, next Kind) Kind {
	if prev == 0 {
		return next
	}
	if next == KindRemove || next == KindRename {
		return next
	}
	if prev == KindRemove || prev == KindRename {
		return next
	}
	if next > prev {
		return next
	}
	return prev
}
