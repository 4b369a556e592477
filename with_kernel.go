package forthkernel

import (
	"context"
	"fmt"
)

// WithKernel manages kernel lifecycle with automatic cleanup.
//
// This helper creates a kernel, starts it with the provided options, executes
// the callback function, and ensures the interpreter is shut down when done.
//
// If the callback returns an error, it is returned to the caller.
// If Shutdown() fails, a warning is logged but does not override the
// callback's error.
//
// Example usage:
//
//	err := forthkernel.WithKernel(ctx, func(k forthkernel.Kernel) error {
//	    reply, err := k.Execute(ctx, "1 2 + .", false)
//	    if err != nil {
//	        return err
//	    }
//	    // process reply...
//	    return nil
//	},
//	    forthkernel.WithLogger(log),
//	    forthkernel.WithDrainWait(500*time.Millisecond),
//	)
func WithKernel(ctx context.Context, fn func(Kernel) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyKernelOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	k := NewKernel()
	if err := k.Start(ctx, opts...); err != nil {
		return fmt.Errorf("failed to start kernel: %w", err)
	}

	defer func() {
		if shutdownErr := k.Shutdown(); shutdownErr != nil {
			log.Warn("failed to shut down kernel", "error", shutdownErr)
		}
	}()

	return fn(k)
}
