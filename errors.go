package forthkernel

import "github.com/wagiedev/forth-kernel-go/internal/errors"

// Re-export error types from internal package

// InterpreterNotFoundError indicates the interpreter executable was not found.
type InterpreterNotFoundError = errors.InterpreterNotFoundError

// ProcessSpawnError indicates the interpreter could not be launched.
type ProcessSpawnError = errors.ProcessSpawnError

// WriteError indicates a line could not be written to the interpreter.
type WriteError = errors.WriteError

// ProcessError indicates the interpreter process exited.
type ProcessError = errors.ProcessError

// DecodeError describes output that was not valid UTF-8.
type DecodeError = errors.DecodeError

// CommandError describes the line that stopped a cell.
type CommandError = errors.CommandError

// KernelError is the base interface for all kernel errors.
type KernelError = errors.KernelError

// Re-export sentinel errors from internal package.
var (
	// ErrSessionDead indicates the interpreter died; create a new kernel.
	ErrSessionDead = errors.ErrSessionDead

	// ErrSessionNotStarted indicates Start has not been called.
	ErrSessionNotStarted = errors.ErrSessionNotStarted

	// ErrSessionAlreadyStarted indicates Start was called twice.
	ErrSessionAlreadyStarted = errors.ErrSessionAlreadyStarted

	// ErrSessionClosed indicates the kernel was shut down and cannot be reused.
	ErrSessionClosed = errors.ErrSessionClosed
)
