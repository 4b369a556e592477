package forthkernel

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
)

// Run executes one cell on a fresh kernel and shuts it down.
//
// Interpreter state does not survive the call. Use NewKernel or WithKernel to
// keep definitions across cells.
func Run(ctx context.Context, code string, opts ...Option) (*Reply, error) {
	var reply *Reply

	err := WithKernel(ctx, func(k Kernel) error {
		var err error

		reply, err = k.Execute(ctx, code, false)

		return err
	}, opts...)

	return reply, err
}

// RunCells executes cells in order on one kernel and yields each reply.
//
// The kernel is started on the first iteration and shut down when iteration
// ends. Iteration stops after the first error: a failed start, a cancelled
// context, or the death of the interpreter. Cells whose lines fail are not
// errors; check Reply.Status.
//
// Example usage:
//
//	for reply, err := range forthkernel.RunCells(ctx, slices.Values(cells)) {
//	    if err != nil {
//	        return err
//	    }
//	    // process reply...
//	}
func RunCells(ctx context.Context, cells iter.Seq[string], opts ...Option) iter.Seq2[*Reply, error] {
	return func(yield func(*Reply, error) bool) {
		log := getLoggerWithComponent(applyKernelOptions(opts), "run")

		k := NewKernel()
		if err := k.Start(ctx, opts...); err != nil {
			yield(nil, fmt.Errorf("failed to start kernel: %w", err))

			return
		}

		defer func() {
			if err := k.Shutdown(); err != nil {
				log.Warn("failed to shut down kernel", "error", err)
			}
		}()

		for code := range cells {
			if err := ctx.Err(); err != nil {
				yield(nil, err)

				return
			}

			reply, err := k.Execute(ctx, code, false)
			if !yield(reply, err) || err != nil {
				return
			}
		}

		log.Debug("All cells executed")
	}
}

// getLoggerWithComponent returns a logger with the component field set.
func getLoggerWithComponent(options *KernelOptions, component string) *slog.Logger {
	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	return log.With("component", component)
}
