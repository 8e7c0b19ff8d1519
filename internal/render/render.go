// Package render turns untrusted agent question text into terminal output.
// Questions are treated as markdown; anything the renderer chokes on falls
// back to the plain text so a malformed question is never an error.
package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// NewMarkdownRenderer initializes a glamour renderer for the given color
// mode. Returns nil for "never" or when glamour cannot be initialized;
// callers pass the nil renderer to Markdown and get plain text back.
func NewMarkdownRenderer(colorMode string) *glamour.TermRenderer {
	var opts []glamour.TermRendererOption

	switch colorMode {
	case "never":
		return nil
	case "always":
		// Force TrueColor when the user explicitly requests colors,
		// bypassing TTY detection for piped output
		opts = append(opts,
			glamour.WithAutoStyle(),
			glamour.WithColorProfile(termenv.TrueColor),
			glamour.WithWordWrap(0),
		)
	default: // "auto"
		opts = append(opts,
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(0),
		)
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil
	}
	return renderer
}

// Markdown renders text with renderer, or returns it untouched when no
// renderer is available or rendering fails.
func Markdown(renderer *glamour.TermRenderer, text string) string {
	if renderer == nil {
		return text
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		return text
	}
	// glamour pads with leading/trailing newlines, trim them
	return strings.TrimSpace(rendered)
}
