// Package subprocess runs the interpreter as a child process.
//
// Session spawns the interpreter with piped stdin, stdout and stderr, starts
// one drainer per output stream before anything is written, and exposes
// line-oriented send plus bounded-wait reads. It implements config.Process.
package subprocess
