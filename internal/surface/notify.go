package surface

import (
	"fmt"
	"io"

	"askconsole/internal/broker"
	"askconsole/internal/localize"
)

// Notifier writes an attention line (with a terminal bell) to out when a
// question starts waiting, then asks the surface to reveal itself. It is
// the terminal analogue of a desktop notification with a jump-to-view
// button.
type Notifier struct {
	out io.Writer
}

// NewNotifier returns a notifier writing to out, normally stderr so the
// line stays off the MCP stdio channel.
func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

var _ broker.Notifier = (*Notifier)(nil)

// Attention announces the waiting question and invokes reveal.
func (n *Notifier) Attention(q broker.Question, reveal func()) {
	title := q.Title
	if title == "" {
		title = localize.Localize("ask.defaultAgent")
	}
	fmt.Fprintf(n.out, "\a%s\n", localize.Localize("notify.question", title))
	if reveal != nil {
		reveal()
	}
}
