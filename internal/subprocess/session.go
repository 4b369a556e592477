package subprocess

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/forth-kernel-go/internal/config"
	"github.com/wagiedev/forth-kernel-go/internal/drain"
	"github.com/wagiedev/forth-kernel-go/internal/errors"
	"github.com/wagiedev/forth-kernel-go/internal/interp"
)

// writeAbandonTimeout bounds how long SendLine waits for a blocked write
// goroutine after closing stdin.
const writeAbandonTimeout = time.Second

// reapWait bounds how long PollExitCode waits for a process whose output
// streams have both ended.
const reapWait = time.Second

// Session owns the interpreter child process.
type Session struct {
	log     *slog.Logger
	options *config.Options
	path    string
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *drain.Drainer
	stderr  *drain.Drainer
	banner  string

	eg errgroup.Group // Drainer goroutines

	mu          sync.Mutex // Protects stdin writes and the flags below
	started     bool
	stdinClosed bool

	exited   chan struct{} // Closed once the process has been reaped
	exitCode int           // Valid after exited is closed
	waitErr  error         // Valid after exited is closed
}

// Compile-time verification that Session implements the Process interface.
var _ config.Process = (*Session)(nil)

// NewSession creates a session for the interpreter described by options.
// The process is not started until Start is called.
func NewSession(log *slog.Logger, options *config.Options) *Session {
	return &Session{
		log:     log.With("component", "session"),
		options: options,
		exited:  make(chan struct{}),
	}
}

// Start locates and spawns the interpreter.
//
// Both drainers are running before Start returns, and before anything is
// written to stdin, so a chatty child can never block on a full pipe. The
// banner is collected with one bounded-wait drain of stdout.
//
// Returns InterpreterNotFoundError if the interpreter cannot be located,
// or ProcessSpawnError if the process fails to start.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.started {
		s.mu.Unlock()

		return errors.ErrSessionAlreadyStarted
	}

	s.log.Info("Starting interpreter subprocess")

	path, err := interp.NewDiscoverer(&interp.Config{
		Path:   s.options.InterpreterPath,
		Logger: s.log,
	}).Discover(ctx)
	if err != nil {
		s.mu.Unlock()

		return fmt.Errorf("discover interpreter: %w", err)
	}

	s.path = path

	// Not CommandContext: the child outlives the context used to start it.
	//nolint:gosec // G204: the interpreter path is configuration, not user input
	cmd := exec.Command(path, s.options.Args...)
	cmd.Dir = s.options.Cwd
	cmd.Env = interp.BuildEnvironment(s.options)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		s.mu.Unlock()
		s.log.Error("Failed to create stdin pipe", "error", err)

		return &errors.ProcessSpawnError{Path: path, Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.mu.Unlock()
		s.log.Error("Failed to create stdout pipe", "error", err)

		return &errors.ProcessSpawnError{Path: path, Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.mu.Unlock()
		s.log.Error("Failed to create stderr pipe", "error", err)

		return &errors.ProcessSpawnError{Path: path, Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		s.log.Error("Failed to start interpreter process", "error", err)

		return &errors.ProcessSpawnError{Path: path, Err: fmt.Errorf("start process: %w", err)}
	}

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = drain.New(s.log, "stdout", stdout)
	s.stderr = drain.New(s.log, "stderr", stderr)

	s.eg.Go(s.stdout.Run)
	s.eg.Go(s.stderr.Run)

	go s.wait()

	s.started = true
	s.mu.Unlock()

	s.log.Info("Interpreter subprocess started", "pid", cmd.Process.Pid, "path", path)

	s.banner = s.stdout.Drain(ctx, s.options.DrainWait)
	s.log.Debug("Collected interpreter banner", "banner", s.banner)

	return nil
}

// wait reaps the process once both streams are exhausted.
// Reads from the pipes must complete before cmd.Wait, see exec.Cmd.StdoutPipe.
func (s *Session) wait() {
	if err := s.eg.Wait(); err != nil {
		s.log.Debug("Drainer finished with error", "error", err)
	}

	err := s.cmd.Wait()

	s.exitCode = exitCode(s.cmd.ProcessState)
	s.waitErr = err

	close(s.exited)

	s.log.Info("Interpreter process exited", "exit_code", s.exitCode, "error", err)
}

// SendLine writes text followed by a newline to the interpreter's stdin.
//
// Writes are serialized. If ctx is cancelled while a write is blocked, stdin is
// closed to unblock it and the session can no longer be written to.
func (s *Session) SendLine(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return errors.ErrProcessNotStarted
	}

	if s.stdinClosed {
		return &errors.WriteError{Line: text, Err: os.ErrClosed}
	}

	select {
	case <-s.exited:
		return &errors.WriteError{
			Line: text,
			Err:  &errors.ProcessError{ExitCode: s.exitCode, Err: s.waitErr},
		}
	default:
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.log.Debug("Sending line to interpreter", "line", text)

	done := make(chan error, 1)

	go func() {
		_, err := io.WriteString(s.stdin, text+"\n")
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			s.log.Error("Failed to write line to interpreter", "error", err)

			return &errors.WriteError{Line: text, Err: err}
		}

		return nil

	case <-ctx.Done():
		s.log.Debug("Context cancelled during write, closing stdin")

		_ = s.stdin.Close()
		s.stdinClosed = true

		select {
		case <-done:
		case <-time.After(writeAbandonTimeout):
			s.log.Warn("Write goroutine did not exit after stdin close, potential leak")
		}

		return ctx.Err()
	}
}

// ReadStdout drains stdout with the bounded wait.
func (s *Session) ReadStdout(ctx context.Context, wait time.Duration) string {
	if s.stdout == nil {
		return ""
	}

	return s.stdout.Drain(ctx, wait)
}

// ReadStderr drains stderr with the bounded wait.
func (s *Session) ReadStderr(ctx context.Context, wait time.Duration) string {
	if s.stderr == nil {
		return ""
	}

	return s.stderr.Drain(ctx, wait)
}

// PollExitCode reports the exit code without blocking on a live process.
// Once both output streams have ended the process is exiting, so it waits up
// to reapWait for the exit status instead of reporting a dying process alive.
func (s *Session) PollExitCode() (int, bool) {
	select {
	case <-s.exited:
		return s.exitCode, true
	default:
	}

	if s.stdout == nil || s.stderr == nil || !ended(s.stdout) || !ended(s.stderr) {
		return 0, false
	}

	select {
	case <-s.exited:
		return s.exitCode, true
	case <-time.After(reapWait):
		return 0, false
	}
}

func ended(d *drain.Drainer) bool {
	select {
	case <-d.Closed():
		return true
	default:
		return false
	}
}

// Signal sends an interrupt to the interpreter without reading its output.
//
// Delivery is best-effort: some platforms cannot deliver an interrupt and
// some interpreter states ignore it. The in-flight command may keep running.
func (s *Session) Signal() error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	if !started {
		return errors.ErrProcessNotStarted
	}

	if code, exited := s.PollExitCode(); exited {
		return &errors.ProcessError{ExitCode: code, Err: s.waitErr}
	}

	s.log.Info("Interrupting interpreter", "pid", s.cmd.Process.Pid)

	if err := interrupt(s.cmd.Process); err != nil {
		s.log.Warn("Could not deliver interrupt", "error", err)
	}

	return nil
}

// Interrupt sends an interrupt to the interpreter and returns the error text
// it printed within the drain window.
//
// The caller must be the only reader of stderr for the duration of the call.
func (s *Session) Interrupt(ctx context.Context) (string, error) {
	if err := s.Signal(); err != nil {
		return "", err
	}

	return s.stderr.Drain(ctx, s.options.DrainWait), nil
}

// Terminate stops the interpreter and returns its exit code.
//
// Stdin is closed and a termination signal is sent; if the process has not
// exited after TerminateTimeout it is killed. It's safe to call Terminate
// multiple times: later calls return the same exit code. The boolean is false
// when the process was never started.
func (s *Session) Terminate() (int, bool, error) {
	s.mu.Lock()

	if !s.started {
		s.mu.Unlock()

		return 0, false, nil
	}

	if !s.stdinClosed {
		_ = s.stdin.Close()
		s.stdinClosed = true
	}

	s.mu.Unlock()

	if code, exited := s.PollExitCode(); exited {
		return code, true, nil
	}

	s.log.Debug("Terminating interpreter", "pid", s.cmd.Process.Pid)

	if err := terminate(s.cmd.Process); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		s.log.Debug("Terminate signal failed", "error", err)
	}

	select {
	case <-s.exited:
		return s.exitCode, true, nil
	case <-time.After(s.options.TerminateTimeout):
	}

	s.log.Warn("Interpreter did not exit, killing it", "pid", s.cmd.Process.Pid)

	if err := s.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		return -1, true, fmt.Errorf("kill interpreter (pid %d): %w", s.cmd.Process.Pid, err)
	}

	select {
	case <-s.exited:
		return s.exitCode, true, nil
	case <-time.After(s.options.TerminateTimeout):
		return -1, true, fmt.Errorf("interpreter (pid %d) did not exit after kill", s.cmd.Process.Pid)
	}
}

// Banner returns the text the interpreter printed at startup.
func (s *Session) Banner() string {
	return s.banner
}

// Path returns the resolved interpreter path. Empty before Start.
func (s *Session) Path() string {
	return s.path
}

// PID returns the interpreter's process ID, or 0 before Start.
func (s *Session) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}

	return s.cmd.Process.Pid
}
