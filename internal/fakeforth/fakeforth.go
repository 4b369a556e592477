// Package fakeforth is a tiny stand-in for gforth used by tests.
//
// A test binary re-executes itself with EnvHelper set and calls Main from
// TestMain, which turns the process into a line interpreter that echoes each
// line followed by its output and " ok", the way gforth does on a pipe.
//
// Words: integers push, + - * operate, . prints and pops, .s prints the stack,
// bye exits 0, crash exits 3, hang blocks until SIGINT, latin1 prints an
// ISO-8859-1 byte. Anything else is an undefined word on stderr.
package fakeforth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
)

// EnvHelper is the environment variable that switches a test binary into
// fake interpreter mode.
const EnvHelper = "FORTH_KERNEL_FAKE_INTERPRETER"

// Banner is printed on startup.
const Banner = "Gforth 0.7.3, Copyright (C) 1995-2008 Free Software Foundation, Inc.\n" +
	"Type `bye' to exit\n"

// CrashExitCode is the exit code of the crash word.
const CrashExitCode = 3

// Enabled reports whether the current process should act as the interpreter.
func Enabled() bool {
	return os.Getenv(EnvHelper) == "1"
}

// Main runs the interpreter on the process's standard streams and returns the
// exit code.
func Main() int {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	return Run(os.Stdin, os.Stdout, os.Stderr, signals)
}

type machine struct {
	stack   []int
	out     io.Writer
	errOut  io.Writer
	signals <-chan os.Signal
}

// Run interprets lines from in until EOF or bye.
func Run(in io.Reader, out, errOut io.Writer, signals <-chan os.Signal) int {
	m := &machine{out: out, errOut: errOut, signals: signals}

	fmt.Fprint(out, Banner)

	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return 0
			}

			if code, exit := m.line(line); exit {
				return code
			}

		case <-signals:
			fmt.Fprint(errOut, "\n:1: User interrupt\n")
		}
	}
}

// line interprets one input line. It reports whether the process should exit.
func (m *machine) line(line string) (int, bool) {
	var sb strings.Builder

	for word := range strings.FieldsSeq(line) {
		if n, err := strconv.Atoi(word); err == nil {
			m.stack = append(m.stack, n)

			continue
		}

		switch word {
		case "+", "-", "*":
			if len(m.stack) < 2 {
				return m.fail(line, "Stack underflow", word)
			}

			a, b := m.stack[len(m.stack)-2], m.stack[len(m.stack)-1]
			m.stack = m.stack[:len(m.stack)-2]

			switch word {
			case "+":
				m.stack = append(m.stack, a+b)
			case "-":
				m.stack = append(m.stack, a-b)
			default:
				m.stack = append(m.stack, a*b)
			}

		case ".":
			if len(m.stack) == 0 {
				return m.fail(line, "Stack underflow", word)
			}

			fmt.Fprintf(&sb, "%d ", m.stack[len(m.stack)-1])
			m.stack = m.stack[:len(m.stack)-1]

		case ".s":
			fmt.Fprintf(&sb, "<%d> ", len(m.stack))

			for _, n := range m.stack {
				fmt.Fprintf(&sb, "%d ", n)
			}

		case "latin1":
			sb.WriteString("caf\xe9 ")

		case "hang":
			fmt.Fprintf(m.out, "%s ", line)
			<-m.signals
			fmt.Fprint(m.errOut, "\n:1: User interrupt\n")

			return 0, false

		case "bye":
			return 0, true

		case "crash":
			return CrashExitCode, true

		default:
			return m.fail(line, "Undefined word", word)
		}
	}

	fmt.Fprintf(m.out, "%s %s ok\n", line, sb.String())

	return 0, false
}

// fail reports an error the way gforth does and clears the stack.
func (m *machine) fail(line, msg, word string) (int, bool) {
	m.stack = m.stack[:0]

	fmt.Fprintf(m.out, "%s \n", line)
	fmt.Fprintf(m.errOut, ":1: %s\n%s\n>>>%s<<<\n", msg, line, word)

	return 0, false
}
