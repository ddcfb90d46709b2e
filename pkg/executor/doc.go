// Package executor spawns external processes for raw command strings.
//
// A raw command is split on whitespace: the first field is the program and
// the rest are its arguments. There is no shell in between, so quoting,
// pipes and variable expansion are not interpreted:
//
//	"go build ./..."    -> go ["build", "./..."]
//	"make all"          -> make ["all"]
//
// A command that exits with a non-zero status is a successful execution with
// a non-zero exit code. Only failing to start the process (unknown program,
// permission denied), an empty command, a timeout or cancellation are
// reported as errors.
package executor
