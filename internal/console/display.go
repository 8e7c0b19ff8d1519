package console

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"askconsole/internal/localize"
	"askconsole/internal/render"
)

// printQuestion draws the console header (with the badge), the question
// title and the markdown-rendered question body.
func (s *Server) printQuestion(renderer *glamour.TermRenderer, useColors bool, question, title string) {
	headerStyle := lipgloss.NewStyle().Bold(true)
	titleStyle := lipgloss.NewStyle().Bold(true).MarginTop(1)
	tooltipStyle := lipgloss.NewStyle().Faint(true)

	if useColors {
		headerStyle = headerStyle.Foreground(lipgloss.Color("6"))   // Cyan
		titleStyle = titleStyle.Foreground(lipgloss.Color("3"))     // Yellow
		tooltipStyle = tooltipStyle.Foreground(lipgloss.Color("8")) // Dim
	}

	count, tooltip := s.badge()
	header := localize.Localize("panel.header")
	if count > 0 {
		header = fmt.Sprintf("%s (%d)", header, count)
	}
	lines := []string{headerStyle.Render(header)}
	if tooltip != "" && count > 0 {
		lines = append(lines, tooltipStyle.Render(tooltip))
	}
	if title != "" {
		lines = append(lines, titleStyle.Render(title))
	}
	lines = append(lines, render.Markdown(renderer, question))

	fmt.Fprintln(s.out, lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// PrintWaiting shows the idle banner when the panel starts.
func (s *Server) PrintWaiting() {
	style := lipgloss.NewStyle().Faint(true)
	fmt.Fprintln(s.out, style.Render(localize.Localize("panel.waiting")))
}

// requireContent rejects whitespace-only submissions so a surface submit is
// never empty; the user cancels with Esc instead.
func requireContent(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("enter a response, or press Esc to cancel")
	}
	return nil
}
