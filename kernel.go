package forthkernel

import "context"

// Kernel runs cells against one interpreter process.
//
// Lifecycle: kernels are single-use. After Shutdown, or once the interpreter
// has died, create a new kernel with NewKernel.
//
// Example usage:
//
//	k := NewKernel()
//	defer k.Shutdown()
//
//	if err := k.Start(ctx, WithLogger(slog.Default())); err != nil {
//	    log.Fatal(err)
//	}
//
//	reply, err := k.Execute(ctx, "1 2 + .", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
type Kernel interface {
	// Start launches the interpreter and collects its banner.
	// Must be called before any other methods.
	// Returns InterpreterNotFoundError if the interpreter is not found,
	// ProcessSpawnError if it cannot be launched.
	Start(ctx context.Context, opts ...Option) error

	// Execute runs a cell. Silent cells run but produce no events and do not
	// advance the execution count.
	// Returns ErrSessionDead after the interpreter has died, and the
	// ProcessError or WriteError that revealed the death on the cell where it
	// happened. An interpreter that exited between cells is reported on the
	// next cell with an error matching both ErrSessionDead and ProcessError.
	Execute(ctx context.Context, code string, silent bool) (*Reply, error)

	// Interrupt sends an interrupt signal to the interpreter. Best-effort: a
	// running cell may not stop. When idle it returns the interpreter's error
	// output; during a cell that output fails the interrupted line instead,
	// and the rest of the cell is skipped.
	Interrupt(ctx context.Context) ([]Event, error)

	// Shutdown terminates the interpreter. Safe to call more than once.
	Shutdown() error

	// Info describes the kernel and its interpreter.
	Info() Info

	// Alive reports whether the kernel can still run cells.
	Alive() bool

	// ExitCode returns the interpreter's exit code once it has exited.
	ExitCode() (int, bool)
}

// NewKernel creates a new kernel.
//
// The kernel is not started after creation. Call Start() to launch the
// interpreter.
func NewKernel() Kernel {
	return newKernelImpl()
}
