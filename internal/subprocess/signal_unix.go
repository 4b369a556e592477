//go:build unix

package subprocess

import (
	"os"
	"syscall"
)

// interrupt sends SIGINT, the equivalent of Ctrl+C at a terminal.
func interrupt(p *os.Process) error {
	return p.Signal(syscall.SIGINT)
}

// terminate asks the process to exit.
func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}

// exitCode returns the exit status, or the negated signal number when the
// process was killed by a signal.
func exitCode(state *os.ProcessState) int {
	if state == nil {
		return -1
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -int(ws.Signal())
	}

	return state.ExitCode()
}
