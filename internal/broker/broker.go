// Package broker owns the single in-flight question slot between an agent
// tool call and the console surface. A call to Ask parks the calling
// goroutine until the human submits an answer, cancels, or the surface goes
// away; every call resolves exactly once.
//
// The slot is a three-state machine: Idle (no pending request),
// AwaitingUserInput (slot occupied, caller parked), and back to Idle the
// moment any of the four resolution triggers fires (submit, cancel, surface
// closed, caller context cancelled). The resolver channel reference is
// dropped atomically with the state transition, so late triggers for an
// already-resolved question are no-ops.
package broker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"askconsole/internal/localize"
)

// ErrUnavailable is returned by Ask when no console surface is attached.
// Callers use it to decide whether to degrade to a fallback prompt; it is
// deliberately a tagged sentinel rather than a matchable response string.
var ErrUnavailable = errors.New("console view is not available")

const (
	busyResponse   = "Another request is already pending."
	closedResponse = "View was closed"
)

// Question is the immutable value pushed to the surface. ID correlates
// surface events back to the request that displayed the question.
type Question struct {
	ID      string
	Text    string
	Title   string
	AskedAt time.Time
}

// Outcome is what a caller gets back from Ask. When Responded is false,
// Response carries a short diagnostic (busy, view closed) or is empty for a
// plain user cancellation.
type Outcome struct {
	Responded bool   `json:"responded"`
	Response  string `json:"response"`
}

// Surface is the console panel as the broker sees it. All pushes are
// fire-and-forget; the broker only calls them while a surface is attached.
type Surface interface {
	ShowQuestion(q Question)
	Clear()
	Reveal()
}

// Events is the surface-to-broker half of the protocol. The broker
// implements it; surface adapters call it with the ID of the question the
// event belongs to, which lets the broker drop events for superseded
// questions.
type Events interface {
	Submit(questionID, text string)
	Cancel(questionID string)
	SurfaceClosed(questionID string)
}

// Notifier raises an out-of-band attention signal when a question starts
// waiting. reveal asks the host to bring the surface into view.
type Notifier interface {
	Attention(q Question, reveal func())
}

// BadgeFunc receives the pending-request count (0 or 1) and a tooltip on
// every occupy/clear transition.
type BadgeFunc func(count int, tooltip string)

type pendingRequest struct {
	questionID string
	outcome    chan Outcome // buffered, capacity 1
}

// Broker serializes agent questions through a single pending slot.
type Broker struct {
	mu       sync.Mutex
	surface  Surface
	pending  *pendingRequest
	badge    BadgeFunc
	notifier Notifier
}

var _ Events = (*Broker)(nil)

// New creates an idle broker with no surface attached.
func New() *Broker {
	return &Broker{}
}

// SetBadgeFunc installs the badge callback. Pass nil to disable.
func (b *Broker) SetBadgeFunc(f BadgeFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.badge = f
}

// SetNotifier installs the attention notifier. Pass nil to disable.
func (b *Broker) SetNotifier(n Notifier) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifier = n
}

// AttachSurface makes s the active console surface.
func (b *Broker) AttachSurface(s Surface) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.surface = s
}

// DetachSurface removes the active surface. A request pending at detach
// time resolves as if the view had been closed.
func (b *Broker) DetachSurface() {
	b.mu.Lock()
	p := b.pending
	b.pending = nil
	b.surface = nil
	badge := b.badgeUpdateLocked()
	b.mu.Unlock()

	notifyBadge(badge)
	deliver(p, Outcome{Responded: false, Response: closedResponse})
}

// Pending reports whether a question is currently awaiting user input.
func (b *Broker) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending != nil
}

// Ask displays question on the surface and parks until the human answers or
// cancels. If another question is already pending the new caller gets an
// immediate busy outcome and the original request is untouched. If no
// surface is attached Ask returns ErrUnavailable without occupying the
// slot. Cancelling ctx clears the slot and returns ctx.Err().
func (b *Broker) Ask(ctx context.Context, question, title string) (Outcome, error) {
	q := Question{
		ID:      uuid.New().String(),
		Text:    question,
		Title:   title,
		AskedAt: time.Now(),
	}

	b.mu.Lock()
	if b.pending != nil {
		b.mu.Unlock()
		return Outcome{Responded: false, Response: busyResponse}, nil
	}
	if b.surface == nil {
		b.mu.Unlock()
		return Outcome{}, ErrUnavailable
	}
	p := &pendingRequest{questionID: q.ID, outcome: make(chan Outcome, 1)}
	b.pending = p
	badge := b.badgeUpdateLocked()
	surface := b.surface
	notifier := b.notifier
	b.mu.Unlock()

	notifyBadge(badge)
	surface.ShowQuestion(q)
	surface.Reveal()
	if notifier != nil {
		notifier.Attention(q, surface.Reveal)
	}

	select {
	case out := <-p.outcome:
		return out, nil
	case <-ctx.Done():
		cleared, badge := b.clear(q.ID)
		notifyBadge(badge)
		if cleared != nil {
			surface.Clear()
		}
		return Outcome{}, ctx.Err()
	}
}

// Submit resolves the pending request with the user's answer. The text is
// passed through exactly as the surface delivered it.
func (b *Broker) Submit(questionID, text string) {
	b.resolve(questionID, Outcome{Responded: true, Response: text})
}

// Cancel resolves the pending request as a user cancellation.
func (b *Broker) Cancel(questionID string) {
	b.resolve(questionID, Outcome{Responded: false, Response: ""})
}

// SurfaceClosed resolves the pending request after the surface was torn
// down while the question was displayed.
func (b *Broker) SurfaceClosed(questionID string) {
	b.resolve(questionID, Outcome{Responded: false, Response: closedResponse})
}

// resolve delivers out to the caller parked on questionID. Events for a
// question other than the pending one, or arriving after the slot was
// already cleared, do nothing.
func (b *Broker) resolve(questionID string, out Outcome) {
	p, badge := b.clear(questionID)
	notifyBadge(badge)
	deliver(p, out)
}

// clear empties the slot if questionID is the pending question and returns
// the request that was parked there (or nil) plus the badge update to run
// once the lock is released.
func (b *Broker) clear(questionID string) (*pendingRequest, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil || b.pending.questionID != questionID {
		return nil, nil
	}
	p := b.pending
	b.pending = nil
	return p, b.badgeUpdateLocked()
}

// badgeUpdateLocked snapshots the badge callback and slot state. The
// returned func must run after b.mu is released: the console surface's
// badge callback dials the panel socket, and a caller racing for the slot
// must never wait behind that. Caller holds b.mu.
func (b *Broker) badgeUpdateLocked() func() {
	if b.badge == nil {
		return nil
	}
	badge := b.badge
	count := 0
	if b.pending != nil {
		count = 1
	}
	return func() { badge(count, localize.Localize("badge.tooltip")) }
}

func notifyBadge(f func()) {
	if f != nil {
		f()
	}
}

func deliver(p *pendingRequest, out Outcome) {
	if p == nil {
		return
	}
	p.outcome <- out
	close(p.outcome)
}
