package forthkernel

import (
	"log/slog"
	"time"
)

// Option configures KernelOptions using the functional options pattern.
type Option func(*KernelOptions)

// applyKernelOptions applies functional options to a KernelOptions struct.
func applyKernelOptions(opts []Option) *KernelOptions {
	options := &KernelOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *KernelOptions) {
		o.Logger = logger
	}
}

// WithOptions replaces all options with a copy of options, typically loaded
// from a configuration file. Options given after it still apply.
func WithOptions(options *KernelOptions) Option {
	return func(o *KernelOptions) {
		if options != nil {
			*o = *options
		}
	}
}

// ===== Interpreter Process =====

// WithInterpreterPath sets the path to the interpreter executable.
// If not set, GFORTHPATH and then PATH are searched for gforth.
func WithInterpreterPath(path string) Option {
	return func(o *KernelOptions) {
		o.InterpreterPath = path
	}
}

// WithArgs sets extra arguments passed to the interpreter.
func WithArgs(args ...string) Option {
	return func(o *KernelOptions) {
		o.Args = args
	}
}

// WithEnv provides additional environment variables for the interpreter.
func WithEnv(env map[string]string) Option {
	return func(o *KernelOptions) {
		o.Env = env
	}
}

// WithCwd sets the working directory of the interpreter.
func WithCwd(cwd string) Option {
	return func(o *KernelOptions) {
		o.Cwd = cwd
	}
}

// WithTerminateTimeout sets how long shutdown waits for a graceful exit
// before killing the interpreter.
func WithTerminateTimeout(timeout time.Duration) Option {
	return func(o *KernelOptions) {
		o.TerminateTimeout = timeout
	}
}

// WithProcess injects a custom process implementation.
// This is primarily useful for testing.
func WithProcess(process Process) Option {
	return func(o *KernelOptions) {
		o.Process = process
	}
}

// ===== Execution =====

// WithDrainWait sets the quiet window used when collecting output after each
// line. Output keeps being collected while new data arrives within it.
func WithDrainWait(wait time.Duration) Option {
	return func(o *KernelOptions) {
		o.DrainWait = wait
	}
}

// WithIntrospectionCommand sets the command whose output is reported as the
// expression value after each successful cell. Defaults to ".s".
func WithIntrospectionCommand(command string) Option {
	return func(o *KernelOptions) {
		o.IntrospectionCommand = command
	}
}

// WithoutIntrospection disables the expression value.
func WithoutIntrospection() Option {
	return func(o *KernelOptions) {
		o.NoIntrospection = true
	}
}

// WithEmptyValuePattern sets the regular expression matching introspection
// output that means "nothing to report". Defaults to `^<0>$`.
func WithEmptyValuePattern(pattern string) Option {
	return func(o *KernelOptions) {
		o.EmptyValuePattern = pattern
	}
}

// WithShellPrefix sets the prefix that routes a cell to the system shell.
// Defaults to "!".
func WithShellPrefix(prefix string) Option {
	return func(o *KernelOptions) {
		o.ShellPrefix = prefix
	}
}

// WithShellTimeout bounds the runtime of shell-escape cells.
func WithShellTimeout(timeout time.Duration) Option {
	return func(o *KernelOptions) {
		o.ShellTimeout = timeout
	}
}

// ===== Rendering =====

// WithMarkup selects how rendered output is marked up.
func WithMarkup(markup Markup) Option {
	return func(o *KernelOptions) {
		o.Markup = markup
	}
}
