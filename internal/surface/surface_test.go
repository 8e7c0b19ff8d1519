package surface

import (
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"askconsole/internal/broker"
)

type recordedEvent struct {
	kind string // "submit", "cancel", "closed"
	id   string
	text string
}

type eventRecorder struct {
	events chan recordedEvent
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{events: make(chan recordedEvent, 4)}
}

func (r *eventRecorder) Submit(questionID, text string) {
	r.events <- recordedEvent{"submit", questionID, text}
}

func (r *eventRecorder) Cancel(questionID string) {
	r.events <- recordedEvent{"cancel", questionID, ""}
}

func (r *eventRecorder) SurfaceClosed(questionID string) {
	r.events <- recordedEvent{"closed", questionID, ""}
}

func (r *eventRecorder) next(t *testing.T) recordedEvent {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no surface event arrived")
		return recordedEvent{}
	}
}

func (r *eventRecorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case ev := <-r.events:
		t.Fatalf("unexpected surface event %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

// fakePanel accepts surface connections and hands them to the test.
type fakePanel struct {
	listener net.Listener
	conns    chan net.Conn
}

func newFakePanel(t *testing.T) (*fakePanel, string) {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "panel.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	p := &fakePanel{listener: listener, conns: make(chan net.Conn, 4)}
	t.Cleanup(func() { _ = listener.Close() })
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			p.conns <- conn
		}
	}()
	return p, socketPath
}

func (p *fakePanel) accept(t *testing.T) (net.Conn, Request) {
	t.Helper()
	select {
	case conn := <-p.conns:
		var req Request
		if err := json.NewDecoder(conn).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		return conn, req
	case <-time.After(2 * time.Second):
		t.Fatal("panel never received a connection")
		return nil, Request{}
	}
}

func question(id string) broker.Question {
	return broker.Question{ID: id, Text: "Q", Title: "T", AskedAt: time.Now()}
}

func TestShowQuestion_SubmitReply(t *testing.T) {
	panel, socketPath := newFakePanel(t)
	events := newEventRecorder()
	s := NewWithPath(socketPath, events)

	s.ShowQuestion(question("q1"))

	conn, req := panel.accept(t)
	if req.Type != TypeShowQuestion || req.ID != "q1" || req.Question != "Q" || req.Title != "T" {
		t.Fatalf("unexpected request %+v", req)
	}

	if err := json.NewEncoder(conn).Encode(Response{ID: "q1", Event: EventSubmit, Text: "hi"}); err != nil {
		t.Fatalf("failed to reply: %v", err)
	}

	ev := events.next(t)
	if ev.kind != "submit" || ev.id != "q1" || ev.text != "hi" {
		t.Errorf("expected submit q1/hi, got %+v", ev)
	}
	events.expectNone(t)
}

func TestShowQuestion_CancelReply(t *testing.T) {
	panel, socketPath := newFakePanel(t)
	events := newEventRecorder()
	s := NewWithPath(socketPath, events)

	s.ShowQuestion(question("q1"))
	conn, _ := panel.accept(t)

	if err := json.NewEncoder(conn).Encode(Response{ID: "q1", Event: EventCancel}); err != nil {
		t.Fatalf("failed to reply: %v", err)
	}

	ev := events.next(t)
	if ev.kind != "cancel" || ev.id != "q1" {
		t.Errorf("expected cancel q1, got %+v", ev)
	}
}

func TestShowQuestion_ConnectionDropIsClosed(t *testing.T) {
	panel, socketPath := newFakePanel(t)
	events := newEventRecorder()
	s := NewWithPath(socketPath, events)

	s.ShowQuestion(question("q1"))
	conn, _ := panel.accept(t)

	// Panel goes away without replying
	_ = conn.Close()

	ev := events.next(t)
	if ev.kind != "closed" || ev.id != "q1" {
		t.Errorf("expected closed q1, got %+v", ev)
	}
	events.expectNone(t)
}

func TestShowQuestion_UnreachablePanelIsClosed(t *testing.T) {
	events := newEventRecorder()
	s := NewWithPath(filepath.Join(t.TempDir(), "nobody.sock"), events)

	s.ShowQuestion(question("q1"))

	ev := events.next(t)
	if ev.kind != "closed" || ev.id != "q1" {
		t.Errorf("expected closed q1, got %+v", ev)
	}
}

func TestClear_SupersedesQuestion(t *testing.T) {
	panel, socketPath := newFakePanel(t)
	events := newEventRecorder()
	s := NewWithPath(socketPath, events)

	s.ShowQuestion(question("q1"))
	conn, _ := panel.accept(t)

	s.Clear()

	// A late reply for the withdrawn question must not become an event
	_ = json.NewEncoder(conn).Encode(Response{ID: "q1", Event: EventSubmit, Text: "late"})
	events.expectNone(t)
}

func TestClear_IdleIsNoop(t *testing.T) {
	_, socketPath := newFakePanel(t)
	events := newEventRecorder()
	s := NewWithPath(socketPath, events)

	s.Clear()
	events.expectNone(t)
}

func TestBadgeAndReveal(t *testing.T) {
	panel, socketPath := newFakePanel(t)
	events := newEventRecorder()
	s := NewWithPath(socketPath, events)

	s.Badge(1, "waiting")
	conn, req := panel.accept(t)
	_ = conn.Close()
	if req.Type != TypeBadge || req.Count != 1 || req.Tooltip != "waiting" {
		t.Errorf("unexpected badge request %+v", req)
	}

	s.Reveal()
	conn, req = panel.accept(t)
	_ = conn.Close()
	if req.Type != TypeReveal {
		t.Errorf("unexpected reveal request %+v", req)
	}

	events.expectNone(t)
}

func TestNew_RequiresEnv(t *testing.T) {
	t.Setenv(SocketEnvVar, "")
	if s := New(newEventRecorder()); s != nil {
		t.Error("expected nil surface without the socket env var")
	}

	t.Setenv(SocketEnvVar, "/tmp/some.sock")
	if s := New(newEventRecorder()); s == nil {
		t.Error("expected a surface when the socket env var is set")
	}
}

func TestProbe(t *testing.T) {
	_, socketPath := newFakePanel(t)
	s := NewWithPath(socketPath, newEventRecorder())
	if err := s.Probe(); err != nil {
		t.Errorf("probe against a live panel failed: %v", err)
	}

	dead := NewWithPath(filepath.Join(t.TempDir(), "dead.sock"), newEventRecorder())
	if err := dead.Probe(); err == nil {
		t.Error("probe against a missing panel should fail")
	}
}
