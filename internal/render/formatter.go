package render

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/wagiedev/forth-kernel-go/internal/event"
	"github.com/wagiedev/forth-kernel-go/internal/executor"
)

// Formatter converts cell results into events.
type Formatter struct {
	markup Markup
}

// NewFormatter creates a formatter. A nil markup selects HTML.
func NewFormatter(markup Markup) *Formatter {
	if markup == nil {
		markup = HTML{}
	}

	return &Formatter{markup: markup}
}

// Markup returns the formatter's markup.
func (f *Formatter) Markup() Markup {
	return f.markup
}

// Format builds the events for one executed cell, in order: the rendered
// output, then stderr text, then the expression value.
func (f *Formatter) Format(code string, result *executor.Result) []event.Event {
	if result == nil {
		return nil
	}

	if result.Shell {
		return f.formatShell(result)
	}

	var events []event.Event

	if len(result.Lines) > 0 || result.Stdout != "" {
		events = append(events, &event.RenderedOutput{
			MIMEType: f.markup.MIMEType(),
			Markup:   f.markup.Wrap(f.Highlight(code, result.Stdout)),
		})
	}

	if result.Stderr != "" {
		events = append(events, event.Stdio(event.Stderr, result.Stderr))
	}

	if result.HasValue {
		events = append(events, &event.ExpressionValue{Text: result.Value})
	}

	return events
}

func (f *Formatter) formatShell(result *executor.Result) []event.Event {
	events := []event.Event{event.Stdio(event.Stdout, result.Stdout)}

	if result.Stderr != "" {
		events = append(events, event.Stdio(event.Stderr, result.Stderr))
	}

	return events
}

// Highlight escapes code and output, diffs them, and emphasizes every run of
// output that was inserted or replaced relative to the code. The result is
// not wrapped.
func (f *Formatter) Highlight(code, output string) string {
	code = strings.ReplaceAll(code, "\r\n", "\n")

	a := runes(f.markup.Escape(code))
	b := runes(f.markup.Escape(output))

	var sb strings.Builder

	matcher := difflib.NewMatcher(a, b)
	for _, op := range matcher.GetOpCodes() {
		run := strings.Join(b[op.J1:op.J2], "")

		switch op.Tag {
		case 'e':
			sb.WriteString(run)
		case 'r', 'i':
			sb.WriteString(f.markup.Emphasize(run))
		}
	}

	return sb.String()
}

// runes splits s into one element per rune for the sequence matcher.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}

	return out
}
