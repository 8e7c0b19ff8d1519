// Package console hosts the interactive panel on the process that owns the
// terminal. It listens on a per-process Unix socket; the MCP server side
// connects through internal/surface to display questions and collect the
// human's answer.
package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/huh"

	"askconsole/internal/localize"
	"askconsole/internal/render"
	"askconsole/internal/surface"
)

// promptFunc collects an answer for a displayed question. It returns the
// submitted text, huh.ErrUserAborted when the user cancelled, or the ctx
// error when the question was withdrawn while displayed.
type promptFunc func(ctx context.Context, question, title string) (string, error)

// Server accepts surface connections and turns each show_question request
// into exactly one submit or cancel reply. Questions are handled one at a
// time; the broker on the client side already gates concurrent asks, so the
// mutex here only protects against a misbehaving client.
type Server struct {
	socketPath string
	listener   net.Listener
	mu         sync.Mutex
	done       chan struct{}
	out        io.Writer
	prompt     promptFunc

	badgeMu      sync.Mutex
	badgeCount   int
	badgeTooltip string
}

// New creates a panel server with a unique socket path in the temp
// directory. colorMode controls question rendering ("auto", "always",
// "never").
func New(out io.Writer, colorMode string) *Server {
	s := &Server{
		socketPath: filepath.Join(os.TempDir(), fmt.Sprintf("askconsole-%d.sock", os.Getpid())),
		done:       make(chan struct{}),
		out:        out,
	}
	renderer := render.NewMarkdownRenderer(colorMode)
	useColors := render.ShouldUseColors(colorMode)
	s.prompt = func(ctx context.Context, question, title string) (string, error) {
		s.printQuestion(renderer, useColors, question, title)
		return runInputForm(ctx)
	}
	return s
}

// SocketPath returns the path surface clients should dial.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for surface connections.
func (s *Server) Start(ctx context.Context) error {
	// Remove any stale socket file from a previous run with this pid
	_ = os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	s.listener = listener

	go s.acceptLoop(ctx)

	return nil
}

// Stop closes the server and removes the socket.
func (s *Server) Stop() {
	close(s.done)
	if s.listener != nil {
		_ = s.listener.Close()
	}
	_ = os.Remove(s.socketPath)
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		default:
		}

		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}

		go s.handleConnection(conn)
	}
}

// handleConnection processes a single surface connection. Badge and reveal
// requests are one-shot; a show_question request keeps the connection open
// until the reply is written or the client withdraws the question by
// closing its end.
func (s *Server) handleConnection(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	var req surface.Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		return
	}

	switch req.Type {
	case surface.TypeShowQuestion:
		s.handleShowQuestion(conn, req)
	case surface.TypeReveal:
		s.ringBell()
	case surface.TypeBadge:
		s.setBadge(req.Count, req.Tooltip)
	}
}

func (s *Server) handleShowQuestion(conn net.Conn, req surface.Request) {
	// One question on screen at a time
	s.mu.Lock()
	defer s.mu.Unlock()

	// Withdraw the prompt when the client closes its end of the
	// connection. The client never sends a second message on a question
	// connection, so any read completion means the question is gone.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_, _ = conn.Read(make([]byte, 1))
		cancel()
	}()

	text, err := s.prompt(ctx, req.Question, req.Title)
	if ctx.Err() != nil {
		// Superseded: the question no longer has a waiter, say nothing
		return
	}

	resp := surface.Response{ID: req.ID, Event: surface.EventCancel}
	if err == nil {
		resp = surface.Response{ID: req.ID, Event: surface.EventSubmit, Text: text}
	} else if !errors.Is(err, huh.ErrUserAborted) {
		// Form failure counts as a cancel rather than a panel crash
		fmt.Fprintf(os.Stderr, "askconsole: prompt failed: %v\n", err)
	}
	_ = json.NewEncoder(conn).Encode(resp)
}

func (s *Server) setBadge(count int, tooltip string) {
	s.badgeMu.Lock()
	s.badgeCount = count
	s.badgeTooltip = tooltip
	s.badgeMu.Unlock()
}

func (s *Server) badge() (int, string) {
	s.badgeMu.Lock()
	defer s.badgeMu.Unlock()
	return s.badgeCount, s.badgeTooltip
}

func (s *Server) ringBell() {
	fmt.Fprint(s.out, "\a")
}

// runInputForm collects the free-text answer. Submission requires
// non-whitespace content; Esc aborts, which the server reports as a cancel.
func runInputForm(ctx context.Context) (string, error) {
	var text string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(localize.Localize("panel.submit")).
				Placeholder(localize.Localize("fallback.placeholder")).
				Description(localize.Localize("panel.cancelHint")).
				Validate(requireContent).
				Value(&text),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}
	return text, nil
}
