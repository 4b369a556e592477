// Package kernel implements the session lifecycle of a Forth kernel.
//
// A Kernel owns exactly one interpreter process for its whole lifetime. It
// composes the executor and the formatter into the cell-execution contract
// used by notebook front-ends:
//   - Execute runs a cell and returns a status reply plus response events
//   - Interrupt signals a runaway cell and collects the resulting error text
//   - Shutdown terminates the interpreter
//
// Interpreter death is fatal. The kernel moves to a dead state and every later
// Execute fails with errors.ErrSessionDead without touching the process.
package kernel
