// Package forthkernel runs a Forth interpreter as a notebook kernel.
//
// A kernel owns one long-lived interpreter process (gforth by default) and
// turns submitted cells into response events: the interpreter's output with
// the newly computed text emphasized, any error output, and the stack left
// behind by the cell.
//
// # Basic Usage
//
// For a single cell, use Run:
//
//	reply, err := forthkernel.Run(ctx, "1 2 + .")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, e := range reply.Events {
//	    switch ev := e.(type) {
//	    case *forthkernel.RenderedOutput:
//	        fmt.Println(ev.Markup)
//	    case *forthkernel.TextOutput:
//	        fmt.Fprint(os.Stderr, ev.Text)
//	    case *forthkernel.ExpressionValue:
//	        fmt.Println("stack:", ev.Text)
//	    }
//	}
//
// # Interactive Sessions
//
// Interpreter state persists between cells of one kernel. Use NewKernel or
// the WithKernel helper:
//
//	err := forthkernel.WithKernel(ctx, func(k forthkernel.Kernel) error {
//	    if _, err := k.Execute(ctx, ": square dup * ;", false); err != nil {
//	        return err
//	    }
//
//	    reply, err := k.Execute(ctx, "7 square .", false)
//	    if err != nil {
//	        return err
//	    }
//	    // process reply...
//	    return nil
//	},
//	    forthkernel.WithLogger(slog.Default()),
//	    forthkernel.WithMarkup(forthkernel.MarkupTerminal),
//	)
//
// # Failure Model
//
// Lines of a cell run in order and the cell stops at the first line that
// writes to stderr. If the interpreter process dies, the reply carries a
// "process terminated" stderr event and the kernel becomes unusable: every
// later Execute returns ErrSessionDead. Create a new kernel to continue.
//
// # Error Handling
//
// The package defines typed errors for the fatal conditions:
//
//   - InterpreterNotFoundError: the interpreter executable could not be found
//   - ProcessSpawnError: the interpreter could not be launched
//   - WriteError: writing a line to the interpreter failed
//   - ProcessError: the interpreter exited
//
// Use errors.As to check for specific error types:
//
//	if _, ok := errors.AsType[*forthkernel.InterpreterNotFoundError](err); ok {
//	    fmt.Println("Install gforth or set GFORTHPATH")
//	}
package forthkernel
