package executor

import (
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/wagiedev/forth-kernel-go/internal/drain"
)

// runShell runs a shell-escape cell. It shares the bounded-wait discipline of
// the interpreter path through ShellTimeout.
func (e *Executor) runShell(ctx context.Context, command string) *Result {
	result := &Result{Shell: true}

	command = strings.TrimSpace(command)
	if command == "" {
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, e.options.ShellTimeout)
	defer cancel()

	e.log.Info("Running shell command", "command", command)

	out, err := shellCommand(ctx, command).CombinedOutput()
	result.Stdout = drain.Decode(e.log, "shell", out)

	switch {
	case err == nil:
	case stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		result.Stderr = fmt.Sprintf("shell command timed out after %s\n", e.options.ShellTimeout)
	default:
		result.Stderr = fmt.Sprintf("shell command failed: %v\n", err)
	}

	if result.Stderr != "" {
		e.log.Debug("Shell command failed", "error", err)
	}

	return result
}

// shellWaitDelay bounds how long output is awaited after the shell is killed,
// in case a background child still holds the pipe open.
const shellWaitDelay = time.Second

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	var cmd *exec.Cmd

	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		//nolint:gosec // G204: running the user's shell command is the feature
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}

	cmd.WaitDelay = shellWaitDelay

	return cmd
}
