// Package config provides configuration types for the Forth kernel.
package config

import (
	"context"
	"time"
)

// Process defines the interface for driving the interpreter process.
// Implement this to provide fakes for testing or alternative backends.
//
// The default implementation is subprocess.Session which spawns the
// interpreter as a child process. Custom implementations can be injected
// via Options.Process.
type Process interface {
	// Start launches the interpreter and begins draining its output.
	// It must be called before any other method.
	Start(ctx context.Context) error

	// SendLine writes text followed by a newline to the interpreter's stdin.
	SendLine(ctx context.Context, text string) error

	// ReadStdout returns the stdout text that arrives within the bounded
	// wait. The window restarts whenever new data arrives.
	ReadStdout(ctx context.Context, wait time.Duration) string

	// ReadStderr is ReadStdout for the error stream.
	ReadStderr(ctx context.Context, wait time.Duration) string

	// PollExitCode reports the exit code without blocking.
	// The boolean is false while the process is alive.
	PollExitCode() (int, bool)

	// Signal delivers an interrupt to the interpreter (best-effort) without
	// reading any output. Use it while another caller is draining stderr.
	Signal() error

	// Interrupt delivers an interrupt to the interpreter (best-effort) and
	// returns the error text it produced within the bounded wait.
	Interrupt(ctx context.Context) (string, error)

	// Terminate stops the interpreter and returns its exit code.
	// The boolean is false when the process was never started.
	// It's safe to call Terminate multiple times.
	Terminate() (int, bool, error)

	// Banner returns the text the interpreter printed at startup.
	Banner() string
}
