package kernel

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/forth-kernel-go/internal/config"
	"github.com/wagiedev/forth-kernel-go/internal/errors"
	"github.com/wagiedev/forth-kernel-go/internal/event"
	"github.com/wagiedev/forth-kernel-go/internal/executor"
	"github.com/wagiedev/forth-kernel-go/internal/interp"
	"github.com/wagiedev/forth-kernel-go/internal/render"
	"github.com/wagiedev/forth-kernel-go/internal/subprocess"
)

// Version is the kernel implementation version.
const Version = "0.1.0"

// Status values of a Reply.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// terminatedMessage is reported on stderr when the interpreter dies.
const terminatedMessage = "process terminated"

type state int

const (
	stateNew state = iota
	stateStarting
	stateRunning
	stateDead
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateNew:
		return "new"
	case stateStarting:
		return "starting"
	case stateRunning:
		return "running"
	case stateDead:
		return "dead"
	case stateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Reply is the status record returned for an executed cell.
type Reply struct {
	Status          string         `json:"status"`
	ExecutionCount  int            `json:"execution_count"`
	Payload         []any          `json:"payload"`
	UserExpressions map[string]any `json:"user_expressions"`

	// Events are the response events, emitted before the status record.
	// Empty for silent executions.
	Events []event.Event `json:"-"`

	// ExecutionID identifies the execution in logs.
	ExecutionID string `json:"-"`

	// Failed is the line that stopped the cell, if any.
	Failed *errors.CommandError `json:"-"`
}

// Info describes the kernel and its interpreter.
type Info struct {
	Implementation        string `json:"implementation"`
	ImplementationVersion string `json:"implementation_version"`
	Language              string `json:"language"`
	LanguageVersion       string `json:"language_version"`
	FileExtension         string `json:"file_extension"`
	MIMEType              string `json:"mimetype"`
	Banner                string `json:"banner"`
}

// Kernel is a single-use Forth kernel.
type Kernel struct {
	log       *slog.Logger
	options   *config.Options
	process   config.Process
	executor  *executor.Executor
	formatter *render.Formatter

	execMu sync.Mutex // Serializes cell executions

	mu             sync.Mutex // Protects the fields below
	state          state
	executionCount int
	closeOnce      sync.Once
}

// New creates a kernel. Call Start to launch the interpreter.
func New() *Kernel {
	return &Kernel{
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Start launches the interpreter described by options.
//
// Returns InterpreterNotFoundError if the interpreter cannot be located,
// or ProcessSpawnError if the process fails to start. If Shutdown is called
// while the interpreter is starting, the new process is terminated and
// ErrSessionClosed is returned.
func (k *Kernel) Start(ctx context.Context, options *config.Options) error {
	k.mu.Lock()

	switch k.state {
	case stateNew:
	case stateClosed:
		k.mu.Unlock()

		return errors.ErrSessionClosed
	default:
		k.mu.Unlock()

		return errors.ErrSessionAlreadyStarted
	}

	// Copy so defaults never leak into the caller's options.
	opts := &config.Options{}
	if options != nil {
		*opts = *options
	}

	opts.ApplyDefaults()

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	k.log = log.With("component", "kernel")
	k.options = opts

	process := opts.Process
	if process == nil {
		process = subprocess.NewSession(log, opts)
	} else {
		k.log.Debug("Using injected custom process")
	}

	ex, err := executor.New(log, process, opts)
	if err != nil {
		k.mu.Unlock()

		return err
	}

	k.state = stateStarting
	k.mu.Unlock()

	// The banner drain can take a full DrainWait; Alive, Info and Shutdown
	// stay responsive meanwhile.
	if err := process.Start(ctx); err != nil {
		k.mu.Lock()
		if k.state == stateStarting {
			k.state = stateNew
		}
		k.mu.Unlock()

		return fmt.Errorf("start interpreter: %w", err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.state != stateStarting {
		// Shutdown ran while the interpreter was starting.
		if _, _, err := process.Terminate(); err != nil {
			k.log.Warn("Failed to terminate interpreter", "error", err)
		}

		return errors.ErrSessionClosed
	}

	k.process = process
	k.executor = ex
	k.formatter = render.NewFormatter(render.ForOptions(opts.Markup))
	k.state = stateRunning

	k.log.Info("Kernel started", "language_version", interp.LanguageVersion(process.Banner()))

	return nil
}

// check returns the sentinel error for a kernel that cannot run cells.
// Caller must hold k.mu.
func (k *Kernel) check() error {
	switch k.state {
	case stateNew, stateStarting:
		return errors.ErrSessionNotStarted
	case stateDead:
		return errors.ErrSessionDead
	case stateClosed:
		return errors.ErrSessionClosed
	default:
		return nil
	}
}

// Execute runs code and returns the reply.
//
// Silent executions run the code but produce no events and do not advance the
// execution count. If the interpreter dies during the cell, the reply carries a
// "process terminated" stderr event and the returned error is the
// *errors.ProcessError or *errors.WriteError that revealed it. If it was
// already gone before the cell, nothing is sent and the error also matches
// errors.ErrSessionDead.
func (k *Kernel) Execute(ctx context.Context, code string, silent bool) (*Reply, error) {
	k.execMu.Lock()
	defer k.execMu.Unlock()

	k.mu.Lock()
	err := k.check()
	k.mu.Unlock()

	if err != nil {
		return nil, err
	}

	if exitCode, exited := k.process.PollExitCode(); exited {
		return k.exitedBetweenCells(exitCode, silent)
	}

	k.mu.Lock()
	if err := k.check(); err != nil {
		k.mu.Unlock()

		return nil, err
	}

	reply := k.newReply(silent)
	k.mu.Unlock()

	log := k.log.With("execution_id", reply.ExecutionID)
	log.Debug("Executing cell", "silent", silent, "execution_count", reply.ExecutionCount)

	result, err := k.executor.Execute(ctx, code)

	events := k.formatter.Format(code, result)

	if err != nil && !fatal(err) {
		log.Debug("Cell cancelled", "error", err)

		reply.Status = StatusError
		if !silent {
			reply.Events = events
		}

		return reply, err
	}

	if err != nil {
		log.Error("Interpreter died", "error", err)

		k.mu.Lock()
		if k.state == stateRunning {
			k.state = stateDead
		}
		k.mu.Unlock()

		reply.Status = StatusError
		if !silent {
			reply.Events = append(events, event.Stdio(event.Stderr, terminatedMessage))
		}

		return reply, err
	}

	if result.Failed != nil {
		log.Debug("Cell failed", "line", result.Failed.Line)

		reply.Status = StatusError
		reply.Failed = result.Failed
	}

	if !silent {
		reply.Events = events
	}

	return reply, nil
}

// newReply advances the execution count unless silent and returns an ok reply.
// Caller must hold k.mu.
func (k *Kernel) newReply(silent bool) *Reply {
	if !silent {
		k.executionCount++
	}

	return &Reply{
		Status:          StatusOK,
		ExecutionCount:  k.executionCount,
		Payload:         []any{},
		UserExpressions: map[string]any{},
		ExecutionID:     ulid.Make().String(),
	}
}

// exitedBetweenCells marks the kernel dead after the interpreter exited while
// idle, and reports it without sending anything.
func (k *Kernel) exitedBetweenCells(exitCode int, silent bool) (*Reply, error) {
	k.mu.Lock()
	if k.state == stateRunning {
		k.state = stateDead
	}

	reply := k.newReply(silent)
	k.mu.Unlock()

	k.log.Error("Interpreter exited between cells", "exit_code", exitCode, "execution_id", reply.ExecutionID)

	reply.Status = StatusError
	if !silent {
		reply.Events = []event.Event{event.Stdio(event.Stderr, terminatedMessage)}
	}

	return reply, stderrors.Join(errors.ErrSessionDead, &errors.ProcessError{ExitCode: exitCode})
}

// fatal reports whether err means the interpreter can no longer be used.
func fatal(err error) bool {
	if _, ok := stderrors.AsType[*errors.ProcessError](err); ok {
		return true
	}

	_, ok := stderrors.AsType[*errors.WriteError](err)

	return ok
}

// Interrupt signals the interpreter. Delivery is best-effort and does not
// guarantee that a running cell stops.
//
// While a cell is running, its own drain collects the error text: the
// interrupted line fails, the rest of the cell is skipped, and Interrupt
// returns no events. When idle, Interrupt collects the text itself and returns
// it as a stderr event.
func (k *Kernel) Interrupt(ctx context.Context) ([]event.Event, error) {
	k.mu.Lock()
	err := k.check()
	k.mu.Unlock()

	if err != nil {
		return nil, err
	}

	if !k.execMu.TryLock() {
		k.log.Info("Interrupting running cell")

		if err := k.process.Signal(); err != nil {
			return nil, fmt.Errorf("interrupt interpreter: %w", err)
		}

		return nil, nil
	}
	defer k.execMu.Unlock()

	k.mu.Lock()
	err = k.check()
	k.mu.Unlock()

	if err != nil {
		return nil, err
	}

	k.log.Info("Interrupting interpreter")

	text, err := k.process.Interrupt(ctx)
	if err != nil {
		return nil, fmt.Errorf("interrupt interpreter: %w", err)
	}

	if code, exited := k.process.PollExitCode(); exited {
		k.log.Warn("Interpreter exited after interrupt", "exit_code", code)

		k.mu.Lock()
		if k.state == stateRunning {
			k.state = stateDead
		}
		k.mu.Unlock()
	}

	if text == "" {
		return nil, nil
	}

	return []event.Event{event.Stdio(event.Stderr, text)}, nil
}

// Shutdown terminates the interpreter if it is alive. It is safe to call more
// than once; later calls are no-ops.
func (k *Kernel) Shutdown() error {
	var shutdownErr error

	k.closeOnce.Do(func() {
		k.mu.Lock()
		prev := k.state
		k.state = stateClosed
		k.mu.Unlock()

		// A starting kernel terminates its own process once Start returns.
		if prev == stateNew || prev == stateStarting {
			return
		}

		k.log.Info("Shutting down kernel", "state", prev.String())

		code, ok, err := k.process.Terminate()
		if err != nil {
			shutdownErr = fmt.Errorf("terminate interpreter: %w", err)

			return
		}

		if ok {
			k.log.Info("Interpreter exited", "exit_code", code)
		}
	})

	return shutdownErr
}

// ExitCode returns the interpreter's exit code once it has exited.
func (k *Kernel) ExitCode() (int, bool) {
	k.mu.Lock()
	process := k.process
	k.mu.Unlock()

	if process == nil {
		return 0, false
	}

	return process.PollExitCode()
}

// Alive reports whether the kernel can run cells.
func (k *Kernel) Alive() bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.state == stateRunning
}

// Info describes the kernel. Banner fields are empty before Start.
func (k *Kernel) Info() Info {
	info := Info{
		Implementation:        "forth-kernel",
		ImplementationVersion: Version,
		Language:              "forth",
		FileExtension:         ".4th",
		MIMEType:              "text/x-forth",
	}

	k.mu.Lock()
	process := k.process
	k.mu.Unlock()

	if process != nil {
		info.Banner = process.Banner()
		info.LanguageVersion = interp.LanguageVersion(info.Banner)
	}

	return info
}
