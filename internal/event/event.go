// Package event defines the response events produced for each executed cell.
package event

// Stream names an output stream of the interpreter.
type Stream string

const (
	// Stdout is the standard output stream.
	Stdout Stream = "stdout"
	// Stderr is the standard error stream.
	Stderr Stream = "stderr"
)

// Event is one piece of cell output.
// Use a type switch to determine the concrete type.
type Event interface {
	EventType() string
}

// Compile-time verification that all event types implement Event.
var (
	_ Event = (*TextOutput)(nil)
	_ Event = (*RenderedOutput)(nil)
	_ Event = (*ExpressionValue)(nil)
)

// TextOutput is plain text written to a stream.
type TextOutput struct {
	Stream Stream `json:"name"`
	Text   string `json:"text"`
}

// EventType implements Event.
func (*TextOutput) EventType() string { return "stream" }

// RenderedOutput is cell output marked up for display.
type RenderedOutput struct {
	MIMEType string `json:"mime_type"`
	Markup   string `json:"data"`
}

// EventType implements Event.
func (*RenderedOutput) EventType() string { return "display_data" }

// ExpressionValue is the value left behind by a cell, reported separately
// from ordinary output.
type ExpressionValue struct {
	Text string `json:"text/plain"`
}

// EventType implements Event.
func (*ExpressionValue) EventType() string { return "execute_result" }

// Stdio returns a TextOutput event for the given stream.
func Stdio(stream Stream, text string) *TextOutput {
	return &TextOutput{Stream: stream, Text: text}
}

// Text concatenates the text of every TextOutput event on stream.
func Text(events []Event, stream Stream) string {
	var out string

	for _, e := range events {
		if t, ok := e.(*TextOutput); ok && t.Stream == stream {
			out += t.Text
		}
	}

	return out
}
