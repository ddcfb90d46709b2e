// Package descriptor reads the .prown.toml project descriptor.
//
// A descriptor is a TOML document whose top-level sections are tables. The
// `commands` section (or its alias `command`) maps names to raw command
// strings for `prown run`. Every other section is a module:
//
//	[commands]
//	build = "make all"
//
//	[src]
//	change = ["*.go", "go.mod"]
//	run = "go build ./..."
//
// Modules keep the order in which they appear in the document and dispatch
// in that order. Parsing stops at the first problem and never returns a
// partial descriptor.
package descriptor
