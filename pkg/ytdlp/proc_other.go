//go:build !unix

package ytdlp

import "os/exec"

// setProcessGroup is a no-op where process groups are unavailable; WaitDelay
// still bounds how long orphaned children can hold the pipes.
func setProcessGroup(cmd *exec.Cmd) {}
