package forthkernel

import (
	"context"

	"github.com/wagiedev/forth-kernel-go/internal/config"
	"github.com/wagiedev/forth-kernel-go/internal/kernel"
)

// kernelWrapper wraps the internal kernel to adapt it to the public interface.
type kernelWrapper struct {
	impl *kernel.Kernel
}

// Compile-time check that *kernelWrapper implements the Kernel interface.
var _ Kernel = (*kernelWrapper)(nil)

// newKernelImpl creates the internal kernel implementation.
func newKernelImpl() Kernel {
	return &kernelWrapper{impl: kernel.New()}
}

// Start launches the interpreter.
func (k *kernelWrapper) Start(ctx context.Context, opts ...Option) error {
	return k.impl.Start(ctx, applyKernelOptionsToConfig(opts))
}

// Execute runs a cell.
func (k *kernelWrapper) Execute(ctx context.Context, code string, silent bool) (*Reply, error) {
	return k.impl.Execute(ctx, code, silent)
}

// Interrupt signals the interpreter.
func (k *kernelWrapper) Interrupt(ctx context.Context) ([]Event, error) {
	return k.impl.Interrupt(ctx)
}

// Shutdown terminates the interpreter.
func (k *kernelWrapper) Shutdown() error {
	return k.impl.Shutdown()
}

// Info describes the kernel.
func (k *kernelWrapper) Info() Info {
	return k.impl.Info()
}

// Alive reports whether the kernel can run cells.
func (k *kernelWrapper) Alive() bool {
	return k.impl.Alive()
}

// ExitCode returns the interpreter's exit code once it has exited.
func (k *kernelWrapper) ExitCode() (int, bool) {
	return k.impl.ExitCode()
}

// applyKernelOptionsToConfig converts functional options into config.Options.
func applyKernelOptionsToConfig(opts []Option) *config.Options {
	// KernelOptions is a type alias to config.Options
	return applyKernelOptions(opts)
}
