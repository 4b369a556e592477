// Package errors defines error types for the Forth kernel.
//
// Process-level failures (spawn, write after death, unexpected exit) are
// fatal for a session and are returned to the caller. Decode problems and
// per-line command errors are recovered locally and only appear here so they
// can be logged or recorded on an execution result. All error types support
// unwrapping and can be checked using errors.Is, errors.As and errors.AsType.
package errors
