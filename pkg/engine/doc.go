// Package engine routes debounced filesystem events to module commands.
//
// An Engine owns one event source and a fixed list of modules. Run
// subscribes, then consumes events one at a time: for a create or write
// event every module is tested in document order and each matching module's
// commands run sequentially, each waited on before the next. A failing
// command is logged and the pass continues. Remove, rename and chmod events
// are observed but never dispatched.
//
// State transitions:
//
//	Idle -> Watching      subscription succeeded
//	Idle -> Failed        subscription failed (no retry)
//	Watching -> Stopped   event stream closed or context canceled
package engine
