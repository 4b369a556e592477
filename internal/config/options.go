package config

import (
	"log/slog"
	"time"
)

// Markup selects how rendered output is marked up.
type Markup string

const (
	// MarkupHTML escapes output and emphasizes new text with <b> inside <pre>.
	MarkupHTML Markup = "html"
	// MarkupTerminal emphasizes new text with terminal styling.
	MarkupTerminal Markup = "terminal"
)

// Default values applied to zero-valued Options fields.
const (
	DefaultDrainWait            = 2 * time.Second
	DefaultIntrospectionCommand = ".s"
	DefaultEmptyValuePattern    = `^<0>$`
	DefaultShellPrefix          = "!"
	DefaultShellTimeout         = 30 * time.Second
	DefaultTerminateTimeout     = 2 * time.Second
)

// InterpreterPathEnv names the environment variable that overrides the
// interpreter executable path.
const InterpreterPathEnv = "GFORTHPATH"

// Options configures the behavior of the kernel.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// InterpreterPath is the explicit path to the interpreter executable.
	// If empty, GFORTHPATH and then PATH are searched.
	InterpreterPath string

	// Args are extra arguments passed to the interpreter.
	Args []string

	// Env provides additional environment variables for the interpreter.
	Env map[string]string

	// Cwd sets the working directory for the interpreter process.
	Cwd string

	// DrainWait is the quiet window used when collecting output after each
	// line. Output keeps being collected as long as new data arrives within
	// the window.
	DrainWait time.Duration

	// IntrospectionCommand is sent after a successful batch; its stdout is
	// reported as the expression value. Set NoIntrospection to disable it.
	IntrospectionCommand string

	// NoIntrospection disables the introspection command.
	NoIntrospection bool

	// EmptyValuePattern is a regular expression matched against the trimmed
	// introspection output. A match means "nothing to report".
	EmptyValuePattern string

	// ShellPrefix marks a cell as a shell command instead of interpreter input.
	ShellPrefix string

	// ShellTimeout bounds the runtime of a shell-escape command.
	ShellTimeout time.Duration

	// TerminateTimeout is how long Terminate waits for a graceful exit before
	// killing the process.
	TerminateTimeout time.Duration

	// Markup selects the rendering of cell output. Defaults to MarkupHTML.
	Markup Markup

	// Process allows injecting a custom process implementation.
	// If nil, the default subprocess.Session is created automatically.
	Process Process `json:"-" yaml:"-"`
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (o *Options) ApplyDefaults() {
	if o.DrainWait <= 0 {
		o.DrainWait = DefaultDrainWait
	}

	if o.IntrospectionCommand == "" {
		o.IntrospectionCommand = DefaultIntrospectionCommand
	}

	if o.EmptyValuePattern == "" {
		o.EmptyValuePattern = DefaultEmptyValuePattern
	}

	if o.ShellPrefix == "" {
		o.ShellPrefix = DefaultShellPrefix
	}

	if o.ShellTimeout <= 0 {
		o.ShellTimeout = DefaultShellTimeout
	}

	if o.TerminateTimeout <= 0 {
		o.TerminateTimeout = DefaultTerminateTimeout
	}

	if o.Markup == "" {
		o.Markup = MarkupHTML
	}
}
