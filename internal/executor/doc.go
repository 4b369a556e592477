// Package executor runs one cell of code against the interpreter.
//
// A cell is split into lines which are sent one at a time. After each line
// both output streams are drained with the bounded wait, so output for a line
// never contains bytes produced by the next one. The first line that writes to
// stderr stops the batch: the interpreter's state after an error is undefined
// and feeding it more input only compounds the damage. A successful batch is
// followed by an introspection command whose output becomes the cell's value.
//
// Cells starting with the shell prefix bypass the interpreter and run as a
// one-shot shell command under a timeout.
package executor
