// Package mcpserver exposes the ask_user tool to the agent runtime over
// MCP stdio and translates broker outcomes into tool results.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"askconsole/internal/broker"
	"askconsole/internal/fallback"
	"askconsole/internal/localize"
	"askconsole/internal/surface"
)

const version = "0.1.0"

// AskInput is the input structure for the ask_user tool.
type AskInput struct {
	Question  string `json:"question"`
	Title     string `json:"title,omitempty"`
	AgentName string `json:"agentName,omitempty"`
}

// AskOutput is the serialized tool result payload.
type AskOutput struct {
	Responded bool   `json:"responded"`
	Response  string `json:"response"`
}

// Asker is the broker operation the adapter depends on.
type Asker interface {
	Ask(ctx context.Context, question, title string) (broker.Outcome, error)
}

// FallbackFunc collects an answer when no console surface is attached.
type FallbackFunc func(question, title string) broker.Outcome

// Adapter routes ask_user invocations to the broker, degrading to the
// fallback prompt when the console is unavailable.
type Adapter struct {
	asker    Asker
	fallback FallbackFunc
}

// NewAdapter creates an adapter over the given broker operation and
// fallback prompt.
func NewAdapter(asker Asker, fb FallbackFunc) *Adapter {
	return &Adapter{asker: asker, fallback: fb}
}

// Run wires a broker to the console surface (when ASKCONSOLE_SOCK is set)
// and serves the ask_user tool over stdio until the agent runtime
// disconnects.
func Run() error {
	b := broker.New()
	connectSurface(b)
	b.SetNotifier(surface.NewNotifier(os.Stderr))

	adapter := NewAdapter(b, fallback.Prompt)

	s := server.NewMCPServer(
		"askconsole",
		version,
		server.WithToolCapabilities(false),
	)

	tool := mcp.NewTool("ask_user",
		mcp.WithDescription("Ask the user a question and wait for their typed response"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to ask the user"),
		),
		mcp.WithString("title",
			mcp.Description("Short title displayed above the question"),
		),
		mcp.WithString("agentName",
			mcp.Description("Name of the agent asking, prefixed to the title"),
		),
	)

	s.AddTool(tool, adapter.HandleAskUser)

	return server.ServeStdio(s)
}

// connectSurface attaches the console surface when the panel socket is
// both configured and reachable. A stale ASKCONSOLE_SOCK left by an exited
// panel must look like no surface at all, so ask_user degrades to the
// fallback prompt instead of reporting a closed view nobody ever saw.
func connectSurface(b *broker.Broker) {
	s := surface.New(b)
	if s == nil {
		return
	}
	if err := s.Probe(); err != nil {
		return
	}
	b.AttachSurface(s)
	b.SetBadgeFunc(s.Badge)
}

// HandleAskUser handles an ask_user invocation. Every user-driven path
// (busy, cancel, view closed, fallback dismissal) produces a normal result
// payload; only runtime faults surface as errors.
func (a *Adapter) HandleAskUser(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input AskInput
	inputBytes, err := json.Marshal(req.Params.Arguments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(inputBytes, &input); err != nil {
		return nil, fmt.Errorf("failed to parse ask_user input: %w", err)
	}
	if input.Question == "" {
		return mcp.NewToolResultError("question is required"), nil
	}

	title := displayTitle(input)

	outcome, err := a.asker.Ask(ctx, input.Question, title)
	if errors.Is(err, broker.ErrUnavailable) {
		outcome = a.fallback(input.Question, title)
	} else if err != nil {
		return nil, err
	}

	outputBytes, err := json.Marshal(AskOutput{
		Responded: outcome.Responded,
		Response:  outcome.Response,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}

	return mcp.NewToolResultText(string(outputBytes)), nil
}

// displayTitle builds "<agent>: <title>", defaulting the agent name and
// falling back to the localized confirmation title.
func displayTitle(input AskInput) string {
	agent := input.AgentName
	if agent == "" {
		agent = localize.Localize("ask.defaultAgent")
	}
	title := input.Title
	if title == "" {
		title = localize.Localize("ask.confirmationRequired")
	}
	return fmt.Sprintf("%s: %s", agent, title)
}
