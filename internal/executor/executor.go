package executor

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/wagiedev/forth-kernel-go/internal/config"
	"github.com/wagiedev/forth-kernel-go/internal/errors"
)

// promptMarker is the prompt the interpreter prints after a successful line.
const promptMarker = "ok"

// Batch is a cell split into the lines that will be sent.
type Batch struct {
	Raw   string
	Lines []string
}

// Split normalizes line endings and drops whitespace-only lines.
func Split(code string) Batch {
	batch := Batch{Raw: code}

	normalized := strings.ReplaceAll(code, "\r\n", "\n")
	for line := range strings.SplitSeq(normalized, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		batch.Lines = append(batch.Lines, line)
	}

	return batch
}

// LineResult is the output captured for one line.
type LineResult struct {
	Line   string
	Stdout string
	Stderr string
}

// OK reports whether the line produced no error output.
func (r LineResult) OK() bool {
	return r.Stderr == ""
}

// Result is the outcome of one cell.
type Result struct {
	// Lines holds the lines that were actually sent, in order.
	Lines []LineResult

	// Stdout and Stderr concatenate the per-line output in send order.
	Stdout string
	Stderr string

	// Value is the cleaned introspection output; HasValue is false when there
	// was nothing to report.
	Value    string
	HasValue bool

	// Failed is set when a line produced error output and stopped the batch.
	Failed *errors.CommandError

	// Shell is true for shell-escape cells.
	Shell bool
}

// Executor sends cells to the interpreter.
type Executor struct {
	log        *slog.Logger
	process    config.Process
	options    *config.Options
	emptyValue *regexp.Regexp
}

// New creates an executor bound to process.
// Options must already have defaults applied.
func New(log *slog.Logger, process config.Process, options *config.Options) (*Executor, error) {
	emptyValue, err := regexp.Compile(options.EmptyValuePattern)
	if err != nil {
		return nil, fmt.Errorf("compile empty value pattern: %w", err)
	}

	return &Executor{
		log:        log.With("component", "executor"),
		process:    process,
		options:    options,
		emptyValue: emptyValue,
	}, nil
}

// Execute runs code and returns its result.
//
// The returned error is non-nil only for fatal conditions: a *errors.WriteError
// when stdin could not be written, or a *errors.ProcessError when the
// interpreter exited. The partial result is returned alongside it. Per-line
// failures are reported through Result.Failed and Result.Stderr.
func (e *Executor) Execute(ctx context.Context, code string) (*Result, error) {
	if rest, ok := strings.CutPrefix(code, e.options.ShellPrefix); ok {
		return e.runShell(ctx, rest), nil
	}

	batch := Split(code)
	result := &Result{}

	if len(batch.Lines) == 0 {
		e.log.Debug("Empty cell, nothing to send")

		return result, nil
	}

	for i, line := range batch.Lines {
		lr, err := e.runLine(ctx, line)
		if lr != nil {
			result.add(*lr)
		}

		if err != nil {
			return result, err
		}

		if !lr.OK() {
			result.Failed = &errors.CommandError{Index: i, Line: line, Stderr: lr.Stderr}

			e.log.Debug("Line failed, skipping the rest of the cell",
				"line", line, "skipped", len(batch.Lines)-i-1)

			return result, nil
		}
	}

	if e.options.NoIntrospection || e.options.IntrospectionCommand == "" {
		return result, nil
	}

	return result, e.introspect(ctx, result)
}

// runLine sends one line and collects its output. A fatal error is returned
// with whatever output was collected.
func (e *Executor) runLine(ctx context.Context, line string) (*LineResult, error) {
	if err := e.process.SendLine(ctx, line); err != nil {
		return nil, err
	}

	lr := &LineResult{
		Line:   line,
		Stdout: e.process.ReadStdout(ctx, e.options.DrainWait),
		Stderr: e.process.ReadStderr(ctx, e.options.DrainWait),
	}

	if code, exited := e.process.PollExitCode(); exited {
		e.log.Warn("Interpreter exited while running a cell", "exit_code", code, "line", line)

		return lr, &errors.ProcessError{ExitCode: code, Stderr: lr.Stderr}
	}

	return lr, nil
}

// introspect sends the introspection command and records its value.
// Its error output is surfaced and suppresses the value.
func (e *Executor) introspect(ctx context.Context, result *Result) error {
	cmd := e.options.IntrospectionCommand

	lr, err := e.runLine(ctx, cmd)
	if lr != nil && lr.Stderr != "" {
		result.Stderr += lr.Stderr
	}

	if err != nil {
		return err
	}

	if !lr.OK() {
		e.log.Debug("Introspection command failed", "stderr", lr.Stderr)

		return nil
	}

	value := e.cleanValue(cmd, lr.Stdout)
	if value == "" || e.emptyValue.MatchString(value) {
		return nil
	}

	result.Value = value
	result.HasValue = true

	return nil
}

// cleanValue strips the echoed command and the trailing prompt.
func (e *Executor) cleanValue(cmd, out string) string {
	value := strings.TrimSpace(out)
	value = strings.TrimSpace(strings.TrimPrefix(value, cmd))
	value = strings.TrimSpace(strings.TrimSuffix(value, promptMarker))

	return value
}

func (r *Result) add(lr LineResult) {
	r.Lines = append(r.Lines, lr)
	r.Stdout += lr.Stdout
	r.Stderr += lr.Stderr
}
