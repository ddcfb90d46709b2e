// Package watcher subscribes to a directory tree and delivers debounced
// filesystem events.
//
// fsnotify only watches single directories, so the watcher walks the tree on
// Start and adds every directory it finds, skipping ignored names such as
// .git. Directories created later are added when their create event arrives.
//
// Raw events are coalesced per path: every event for a path resets that
// path's timer, and when the timer fires one Event is delivered with the
// folded kind and the number of raw events it stands for. A single save in
// an editor (often create, write, chmod in quick succession) therefore
// yields one Event.
package watcher
