//go:build !unix

package executor

import "os/exec"

// killProcessGroup keeps the default cancellation, which kills only the
// direct child. WaitDelay still bounds the wait for its output.
func killProcessGroup(cmd *exec.Cmd) {}
