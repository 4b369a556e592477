//go:build !unix

package subprocess

import (
	"errors"
	"os"
)

// interrupt is not supported: there is no portable way to deliver Ctrl+C to a
// child that does not share our console.
func interrupt(*os.Process) error {
	return errors.ErrUnsupported
}

// terminate kills the process; there is no gentler signal.
func terminate(p *os.Process) error {
	return p.Kill()
}

func exitCode(state *os.ProcessState) int {
	if state == nil {
		return -1
	}

	return state.ExitCode()
}
