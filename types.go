package forthkernel

import (
	"github.com/wagiedev/forth-kernel-go/internal/config"
	"github.com/wagiedev/forth-kernel-go/internal/event"
	"github.com/wagiedev/forth-kernel-go/internal/kernel"
)

// Re-export types from internal packages

// ===== Options and Configuration =====

// KernelOptions configures the behavior of the kernel.
type KernelOptions = config.Options

// Process is the interface of the interpreter process a kernel drives.
// Implement it to run cells against something other than a local gforth.
type Process = config.Process

// ConfigFile is the YAML configuration file format.
type ConfigFile = config.File

// LoadConfigFile reads and parses a YAML configuration file.
var LoadConfigFile = config.LoadFile

// Markup selects how rendered output is marked up.
type Markup = config.Markup

const (
	// MarkupHTML escapes output and emphasizes new text with <b> inside <pre>.
	MarkupHTML = config.MarkupHTML
	// MarkupTerminal emphasizes new text with terminal styling.
	MarkupTerminal = config.MarkupTerminal
)

// InterpreterPathEnv names the environment variable that overrides the
// interpreter path.
const InterpreterPathEnv = config.InterpreterPathEnv

// ===== Replies =====

// Reply is the status record returned for an executed cell.
type Reply = kernel.Reply

// Info describes the kernel and its interpreter.
type Info = kernel.Info

// Reply status values.
const (
	StatusOK    = kernel.StatusOK
	StatusError = kernel.StatusError
)

// Version is the kernel implementation version.
const Version = kernel.Version

// ===== Events =====

// Event is one piece of cell output.
// Use a type switch to determine the concrete type.
type Event = event.Event

// Stream names an interpreter output stream.
type Stream = event.Stream

const (
	// Stdout is the standard output stream.
	Stdout = event.Stdout
	// Stderr is the standard error stream.
	Stderr = event.Stderr
)

// TextOutput is plain text written to a stream.
type TextOutput = event.TextOutput

// RenderedOutput is cell output marked up for display.
type RenderedOutput = event.RenderedOutput

// ExpressionValue is the stack left behind by a cell.
type ExpressionValue = event.ExpressionValue

// StreamText concatenates the text of every TextOutput event on stream.
func StreamText(events []Event, stream Stream) string {
	return event.Text(events, stream)
}
