// Package main is the entry point for the forth-kernel command.
//
// By default it runs an interactive session on stdin: a blank line ends a
// cell, and Ctrl-C interrupts the interpreter. With -script it runs a file
// cell by cell, and with -mcp it serves the kernel to an MCP client on stdio.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/term"

	forthkernel "github.com/wagiedev/forth-kernel-go"
)

type cliOptions struct {
	configPath  string
	interpreter string
	drainWait   time.Duration
	logLevel    string
	logFile     string
	markup      string
	script      string
	mcp         bool
	showVersion bool

	file *forthkernel.ConfigFile
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		return 2
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "forth-kernel %s\n", forthkernel.Version)

		return 0
	}

	kernelOpts, err := buildOptions(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return 1
	}

	log, closeLog, err := newLogger(opts.logLevel, opts.logFile, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return 1
	}
	defer closeLog()

	kernelOpts = append(kernelOpts, forthkernel.WithLogger(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case opts.mcp:
		return serveMCP(ctx, log, kernelOpts, stderr)
	case opts.script != "":
		return runScript(ctx, opts.script, kernelOpts, stdout, stderr)
	default:
		// The session handles interrupts itself.
		stop()

		return repl(log, kernelOpts, stdin, stdout, stderr)
	}
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	opts := &cliOptions{}

	fs := flag.NewFlagSet("forth-kernel", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file")
	fs.StringVar(&opts.interpreter, "interpreter", "", "Path to the interpreter (default: $GFORTHPATH or gforth on PATH)")
	fs.DurationVar(&opts.drainWait, "drain-wait", 0, "Quiet window for collecting output after each line")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (default warn)")
	fs.StringVar(&opts.logFile, "log-file", "", "Write logs to this file instead of stderr")
	fs.StringVar(&opts.markup, "markup", "", "Output markup: terminal or html (default terminal, html with -mcp)")
	fs.StringVar(&opts.script, "script", "", "Run the cells of this file and exit")
	fs.BoolVar(&opts.mcp, "mcp", false, "Serve the kernel over MCP on stdio")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.configPath != "" {
		file, err := forthkernel.LoadConfigFile(opts.configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)

			return nil, err
		}

		opts.applyFile(file)
	}

	return opts, nil
}

// applyFile fills logging settings from the file where no flag set them.
func (o *cliOptions) applyFile(file *forthkernel.ConfigFile) {
	o.file = file

	if o.logLevel == "" {
		o.logLevel = file.LogLevel
	}

	if o.logFile == "" {
		o.logFile = file.LogFile
	}
}

// buildOptions layers defaults, the config file, and flags, in that order.
func buildOptions(opts *cliOptions) ([]forthkernel.Option, error) {
	base := &forthkernel.KernelOptions{Markup: forthkernel.MarkupTerminal}
	if opts.mcp {
		base.Markup = forthkernel.MarkupHTML
	}

	if opts.file != nil {
		opts.file.Apply(base)
	}

	result := []forthkernel.Option{forthkernel.WithOptions(base)}

	if opts.interpreter != "" {
		result = append(result, forthkernel.WithInterpreterPath(opts.interpreter))
	}

	if opts.drainWait > 0 {
		result = append(result, forthkernel.WithDrainWait(opts.drainWait))
	}

	switch forthkernel.Markup(opts.markup) {
	case "":
	case forthkernel.MarkupHTML, forthkernel.MarkupTerminal:
		result = append(result, forthkernel.WithMarkup(forthkernel.Markup(opts.markup)))
	default:
		return nil, fmt.Errorf("unknown markup %q", opts.markup)
	}

	return result, nil
}

// newLogger creates the slog logger. Logs go to stderr unless a file is named.
func newLogger(level, file string, stderr io.Writer) (*slog.Logger, func(), error) {
	var lvl slog.Level

	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "", "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, nil, fmt.Errorf("unknown log level %q", level)
	}

	out := stderr
	closeFn := func() {}

	if file != "" {
		//nolint:gosec // G304: the log file path comes from the user
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}

		out = f
		closeFn = func() { _ = f.Close() }
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl})), closeFn, nil
}

func serveMCP(ctx context.Context, log *slog.Logger, opts []forthkernel.Option, stderr io.Writer) int {
	status := 0

	err := forthkernel.WithKernel(ctx, func(k forthkernel.Kernel) error {
		err := forthkernel.ServeMCP(ctx, k, &mcp.StdioTransport{}, log)

		// Read before WithKernel shuts the interpreter down.
		status = exitStatus(k)

		return err
	}, opts...)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return 1
	}

	return status
}

func runScript(ctx context.Context, path string, opts []forthkernel.Option, stdout, stderr io.Writer) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return 1
	}
	defer f.Close()

	status := 0

	for reply, err := range forthkernel.RunCells(ctx, readCells(f), opts...) {
		if reply != nil {
			printReply(stdout, stderr, reply)

			if reply.Status == forthkernel.StatusError {
				status = 1
			}
		}

		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)

			if pe, ok := errors.AsType[*forthkernel.ProcessError](err); ok && pe.ExitCode > 0 {
				return pe.ExitCode
			}

			return 1
		}
	}

	return status
}

// exitStatus returns the interpreter's exit code if it died, else 0.
// A process killed by a signal maps to 128 plus the signal number.
func exitStatus(k forthkernel.Kernel) int {
	if k == nil {
		return 0
	}

	code, exited := k.ExitCode()

	switch {
	case !exited:
		return 0
	case code < 0:
		return 128 - code
	default:
		return code
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}
