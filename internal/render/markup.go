// Package render turns executed cells into response events.
//
// Interpreter output echoes the submitted code, so the formatter diffs the
// output against the code and emphasizes only what the interpreter added.
package render

import (
	"html"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wagiedev/forth-kernel-go/internal/config"
)

// Markup describes how rendered output is marked up.
type Markup interface {
	// Escape makes text safe to embed in the markup. It runs before diffing.
	Escape(text string) string
	// Emphasize marks a run of new output.
	Emphasize(text string) string
	// Wrap encloses the complete rendering.
	Wrap(text string) string
	// MIMEType is the type reported on the rendered event.
	MIMEType() string
}

// Compile-time verification that all markups implement Markup.
var (
	_ Markup = HTML{}
	_ Markup = Terminal{}
)

// HTML renders preformatted HTML with new output in bold.
type HTML struct{}

// Escape implements Markup.
func (HTML) Escape(text string) string { return html.EscapeString(text) }

// Emphasize implements Markup.
func (HTML) Emphasize(text string) string { return "<b>" + text + "</b>" }

// Wrap implements Markup.
func (HTML) Wrap(text string) string { return "<pre>" + text + "</pre>" }

// MIMEType implements Markup.
func (HTML) MIMEType() string { return "text/html" }

// Terminal renders plain text with new output styled for a terminal.
type Terminal struct {
	Style lipgloss.Style
}

// NewTerminal returns a Terminal markup that renders new output in bold.
func NewTerminal() Terminal {
	return Terminal{Style: lipgloss.NewStyle().Bold(true)}
}

// Escape implements Markup.
func (Terminal) Escape(text string) string { return text }

// Emphasize implements Markup. Lines are styled one at a time so lipgloss
// does not pad them to a common width.
func (t Terminal) Emphasize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = t.Style.Render(line)
		}
	}

	return strings.Join(lines, "\n")
}

// Wrap implements Markup.
func (Terminal) Wrap(text string) string { return text }

// MIMEType implements Markup.
func (Terminal) MIMEType() string { return "text/plain" }

// ForOptions returns the markup selected in the configuration.
func ForOptions(markup config.Markup) Markup {
	if markup == config.MarkupTerminal {
		return NewTerminal()
	}

	return HTML{}
}
