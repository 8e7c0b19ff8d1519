package surface

import (
	"encoding/json"
	"net"
	"os"
	"sync"
	"time"

	"askconsole/internal/broker"
)

const dialTimeout = 5 * time.Second

// Surface pushes questions to the panel host and converts its replies into
// broker events. It emits at most one event per displayed question and
// stays silent for questions superseded by Clear.
type Surface struct {
	socketPath string
	events     broker.Events

	mu         sync.Mutex
	conn       net.Conn
	questionID string
}

// New returns a surface connected to the panel socket named by
// ASKCONSOLE_SOCK, or nil when the variable is not set.
func New(events broker.Events) *Surface {
	socketPath := os.Getenv(SocketEnvVar)
	if socketPath == "" {
		return nil
	}
	return NewWithPath(socketPath, events)
}

// NewWithPath returns a surface using an explicit socket path.
func NewWithPath(socketPath string, events broker.Events) *Surface {
	return &Surface{socketPath: socketPath, events: events}
}

var _ broker.Surface = (*Surface)(nil)

// Probe checks that the panel host is actually listening.
func (s *Surface) Probe() error {
	conn, err := net.DialTimeout("unix", s.socketPath, dialTimeout)
	if err != nil {
		return err
	}
	return conn.Close()
}

// ShowQuestion sends q to the panel and starts waiting for its reply. A
// panel that cannot be reached counts as a closed view.
func (s *Surface) ShowQuestion(q broker.Question) {
	conn, err := net.DialTimeout("unix", s.socketPath, dialTimeout)
	if err != nil {
		s.events.SurfaceClosed(q.ID)
		return
	}

	req := Request{Type: TypeShowQuestion, ID: q.ID, Question: q.Text, Title: q.Title}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		_ = conn.Close()
		s.events.SurfaceClosed(q.ID)
		return
	}

	s.mu.Lock()
	s.conn = conn
	s.questionID = q.ID
	s.mu.Unlock()

	go s.await(conn, q.ID)
}

// await reads the panel's single reply for questionID and forwards it to
// the broker, unless the question was superseded in the meantime.
func (s *Surface) await(conn net.Conn, questionID string) {
	var resp Response
	err := json.NewDecoder(conn).Decode(&resp)

	s.mu.Lock()
	superseded := s.questionID != questionID
	if !superseded {
		s.conn = nil
		s.questionID = ""
	}
	s.mu.Unlock()
	_ = conn.Close()

	if superseded {
		return
	}
	if err != nil {
		// Connection dropped without a reply: the panel went away.
		s.events.SurfaceClosed(questionID)
		return
	}
	switch resp.Event {
	case EventSubmit:
		s.events.Submit(questionID, resp.Text)
	default:
		s.events.Cancel(questionID)
	}
}

// Clear withdraws the displayed question. Closing the connection tells the
// panel the question is gone; any late reply is dropped. Calling Clear with
// nothing displayed does nothing.
func (s *Surface) Clear() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.questionID = ""
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

// Badge forwards the pending-request badge to the panel host, which shows
// it in the console header. Best effort, like Reveal.
func (s *Surface) Badge(count int, tooltip string) {
	conn, err := net.DialTimeout("unix", s.socketPath, dialTimeout)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()
	_ = json.NewEncoder(conn).Encode(Request{Type: TypeBadge, Count: count, Tooltip: tooltip})
}

// Reveal asks the panel host to draw the user's eye to the console. Best
// effort: a panel that cannot be reached is ignored, since presence was
// already checked when the question was shown.
func (s *Surface) Reveal() {
	conn, err := net.DialTimeout("unix", s.socketPath, dialTimeout)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()
	_ = json.NewEncoder(conn).Encode(Request{Type: TypeReveal})
}
