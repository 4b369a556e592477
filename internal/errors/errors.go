package errors

import (
	"errors"
	"fmt"
)

// KernelError is the base interface for all kernel errors.
type KernelError interface {
	error
	IsKernelError() bool
}

// Compile-time verification that all error types implement KernelError.
var (
	_ KernelError = (*InterpreterNotFoundError)(nil)
	_ KernelError = (*ProcessSpawnError)(nil)
	_ KernelError = (*WriteError)(nil)
	_ KernelError = (*ProcessError)(nil)
	_ KernelError = (*DecodeError)(nil)
	_ KernelError = (*CommandError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrSessionDead indicates the interpreter process died and the session
	// can no longer execute code.
	ErrSessionDead = errors.New("session dead: interpreter process terminated")

	// ErrSessionNotStarted indicates Start has not been called yet.
	ErrSessionNotStarted = errors.New("session not started")

	// ErrSessionAlreadyStarted indicates Start was called twice.
	ErrSessionAlreadyStarted = errors.New("session already started")

	// ErrSessionClosed indicates the session was shut down and cannot be reused.
	ErrSessionClosed = errors.New("session closed: kernels are single-use, create a new one")

	// ErrProcessNotStarted indicates an operation needed a running process.
	ErrProcessNotStarted = errors.New("interpreter process not started")
)

// InterpreterNotFoundError indicates the interpreter executable was not found.
type InterpreterNotFoundError struct {
	SearchedPaths []string
}

func (e *InterpreterNotFoundError) Error() string {
	return fmt.Sprintf("interpreter not found in: %v", e.SearchedPaths)
}

// IsKernelError implements KernelError.
func (e *InterpreterNotFoundError) IsKernelError() bool { return true }

// ProcessSpawnError indicates the interpreter could not be launched.
type ProcessSpawnError struct {
	Path string
	Err  error
}

func (e *ProcessSpawnError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to spawn interpreter: %v", e.Err)
	}

	return fmt.Sprintf("failed to spawn interpreter %s: %v", e.Path, e.Err)
}

func (e *ProcessSpawnError) Unwrap() error {
	return e.Err
}

// IsKernelError implements KernelError.
func (e *ProcessSpawnError) IsKernelError() bool { return true }

// WriteError indicates a line could not be written to the interpreter's stdin.
// The pipe is closed, which means the process is gone.
type WriteError struct {
	Line string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write to interpreter stdin: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsKernelError implements KernelError.
func (e *WriteError) IsKernelError() bool { return true }

// ProcessError indicates the interpreter process exited.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("interpreter process exited (exit %d): %v", e.ExitCode, e.Err)
	}

	if e.Stderr != "" {
		return fmt.Sprintf("interpreter process exited (exit %d): %s", e.ExitCode, e.Stderr)
	}

	return fmt.Sprintf("interpreter process exited (exit %d)", e.ExitCode)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsKernelError implements KernelError.
func (e *ProcessError) IsKernelError() bool { return true }

// DecodeError records stream bytes that were not valid UTF-8 and had to be
// decoded with the single-byte fallback. It is logged, never returned.
type DecodeError struct {
	Stream string
	Bytes  int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid UTF-8 on %s (%d bytes), decoded as ISO-8859-1", e.Stream, e.Bytes)
}

// IsKernelError implements KernelError.
func (e *DecodeError) IsKernelError() bool { return true }

// CommandError records the line of a batch that produced error output.
// Execution of the batch stopped at this line.
type CommandError struct {
	Index  int
	Line   string
	Stderr string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("line %d %q failed: %s", e.Index+1, e.Line, e.Stderr)
}

// IsKernelError implements KernelError.
func (e *CommandError) IsKernelError() bool { return true }
