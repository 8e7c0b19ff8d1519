// Package surface implements the broker's console surface over the Unix
// socket published by the panel host. The MCP server process has no TTY of
// its own; the panel host owns the terminal, and this package is the client
// half of the wire between them. One connection carries one question.
package surface

// SocketEnvVar names the environment variable holding the panel socket
// path. When unset, no surface is attached and the broker reports
// unavailability.
const SocketEnvVar = "ASKCONSOLE_SOCK"

// Request types sent from the surface client to the panel host.
const (
	TypeShowQuestion = "show_question"
	TypeReveal       = "reveal"
	TypeBadge        = "badge"
)

// Response events sent from the panel host back to the surface client.
const (
	EventSubmit = "submit"
	EventCancel = "cancel"
)

// Request is a surface-to-panel message. ID correlates the eventual
// response with the question that was displayed.
type Request struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Question string `json:"question,omitempty"`
	Title    string `json:"title,omitempty"`
	Count    int    `json:"count,omitempty"`   // badge count for "badge"
	Tooltip  string `json:"tooltip,omitempty"` // badge tooltip for "badge"
}

// Response is the panel's single reply for a displayed question.
type Response struct {
	ID    string `json:"id"`
	Event string `json:"event"`          // "submit" or "cancel"
	Text  string `json:"text,omitempty"` // answer text for "submit"
}
