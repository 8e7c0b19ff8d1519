// Package fallback collects an answer directly on the terminal when no
// console panel is attached. It holds no state; every call is an
// independent confirm-then-type sequence.
package fallback

import (
	"strings"

	"github.com/charmbracelet/huh"

	"askconsole/internal/broker"
	"askconsole/internal/localize"
)

// Prompter abstracts the two interactive steps so they can be stubbed in
// tests. Confirm reports whether the user pressed the affirmative action;
// Input returns an error when the entry was dismissed without submitting.
type Prompter interface {
	Confirm(title, question string) (bool, error)
	Input(title, placeholder string) (string, error)
}

// Prompt shows the question with a single affirmative action, then a
// free-text entry. Dismissing either step yields a non-responded outcome
// with an empty response; a submitted answer is responded only when it has
// non-whitespace content, and the raw text is passed through either way.
func Prompt(question, title string) broker.Outcome {
	return PromptWith(huhPrompter{}, question, title)
}

// PromptWith runs the fallback sequence against an explicit prompter.
func PromptWith(p Prompter, question, title string) broker.Outcome {
	confirmed, err := p.Confirm(title, question)
	if err != nil || !confirmed {
		return broker.Outcome{Responded: false, Response: ""}
	}

	text, err := p.Input(title, localize.Localize("fallback.placeholder"))
	if err != nil {
		return broker.Outcome{Responded: false, Response: ""}
	}
	return broker.Outcome{
		Responded: strings.TrimSpace(text) != "",
		Response:  text,
	}
}

// huhPrompter backs the fallback with huh forms.
type huhPrompter struct{}

func (huhPrompter) Confirm(title, question string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(question).
				Affirmative(localize.Localize("fallback.answer")).
				Negative(localize.Localize("fallback.dismiss")).
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

func (huhPrompter) Input(title, placeholder string) (string, error) {
	var text string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder(placeholder).
				Value(&text),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return text, nil
}
