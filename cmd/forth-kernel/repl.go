package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	forthkernel "github.com/wagiedev/forth-kernel-go"
)

const (
	prompt         = "forth> "
	continuePrompt = "  ...> "
)

// readCells splits r into cells. A blank line ends a cell and so does the end
// of input. Runs of blank lines produce no empty cells.
func readCells(r io.Reader) iter.Seq[string] {
	return readCellsWithPrompt(r, nil)
}

// readCellsWithPrompt is readCells that calls prompt before every line. Its
// argument reports whether the line continues a cell.
func readCellsWithPrompt(r io.Reader, showPrompt func(continuation bool)) iter.Seq[string] {
	return func(yield func(string) bool) {
		scanner := bufio.NewScanner(r)

		var lines []string

		for {
			if showPrompt != nil {
				showPrompt(len(lines) > 0)
			}

			if !scanner.Scan() {
				break
			}

			line := strings.TrimRight(scanner.Text(), "\r")

			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)

				continue
			}

			if len(lines) == 0 {
				continue
			}

			if !yield(strings.Join(lines, "\n")) {
				return
			}

			lines = lines[:0]
		}

		if len(lines) > 0 {
			yield(strings.Join(lines, "\n"))
		}
	}
}

// repl runs an interactive session until end of input or interpreter death.
func repl(log *slog.Logger, opts []forthkernel.Option, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	k := forthkernel.NewKernel()
	if err := k.Start(ctx, opts...); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)

		if _, ok := errors.AsType[*forthkernel.InterpreterNotFoundError](err); ok {
			fmt.Fprintf(stderr, "Install gforth or set %s.\n", forthkernel.InterpreterPathEnv)
		}

		return 1
	}

	defer func() {
		if err := k.Shutdown(); err != nil {
			log.Warn("failed to shut down kernel", "error", err)
		}
	}()

	interactive := isTerminal(stdin)

	if interactive {
		fmt.Fprint(stdout, k.Info().Banner)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	defer signal.Stop(signals)

	go forwardInterrupts(ctx, k, signals, stderr)

	var showPrompt func(bool)
	if interactive {
		showPrompt = func(continuation bool) {
			if continuation {
				fmt.Fprint(stdout, continuePrompt)
			} else {
				fmt.Fprint(stdout, prompt)
			}
		}
	}

	for code := range readCellsWithPrompt(stdin, showPrompt) {
		reply, err := k.Execute(ctx, code, false)
		if reply != nil {
			printReply(stdout, stderr, reply)
		}

		if err != nil {
			if errors.Is(err, forthkernel.ErrSessionDead) {
				break
			}

			if !k.Alive() {
				fmt.Fprintf(stderr, "Error: %v\n", err)

				break
			}
		}
	}

	return exitStatus(k)
}

// forwardInterrupts turns Ctrl-C into kernel interrupts until ctx is done or
// the kernel dies.
func forwardInterrupts(ctx context.Context, k forthkernel.Kernel, signals <-chan os.Signal, stderr io.Writer) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
		}

		if !k.Alive() {
			return
		}

		events, err := k.Interrupt(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)

			continue
		}

		fmt.Fprint(stderr, forthkernel.StreamText(events, forthkernel.Stderr))
	}
}

// printReply writes the events of a reply to the terminal streams.
func printReply(stdout, stderr io.Writer, reply *forthkernel.Reply) {
	for _, e := range reply.Events {
		switch ev := e.(type) {
		case *forthkernel.RenderedOutput:
			fmt.Fprint(stdout, ensureNewline(ev.Markup))
		case *forthkernel.TextOutput:
			w := stdout
			if ev.Stream == forthkernel.Stderr {
				w = stderr
			}

			fmt.Fprint(w, ensureNewline(ev.Text))
		case *forthkernel.ExpressionValue:
			fmt.Fprintf(stdout, "Out[%d]: %s\n", reply.ExecutionCount, ev.Text)
		}
	}
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}

	return s + "\n"
}
