// Package module holds the unit of dispatch: a named set of change patterns
// and the ordered list of commands to run when one of them matches.
//
// Patterns are glob expressions rooted with a recursive wildcard, so a
// configured `*.go` is compiled as `**/*.go` and matches at any depth:
//
//	[src]
//	change = ["*.go", "go.mod"]
//	run = ["go build ./...", "go test ./..."]
//
// Modules are built once when the descriptor is parsed and are read-only
// afterwards.
package module
