// Package executor spawns the agent CLI from the panel host with the
// console socket exported in its environment, so the agent's MCP server
// child can find the panel.
package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"askconsole/internal/surface"
)

// Config holds the resolved agent invocation.
type Config struct {
	Command    []string // agent command line, first element is the binary
	SocketPath string   // exported as ASKCONSOLE_SOCK
}

// Executor executes the agent CLI.
type Executor struct {
	config Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// New creates a new Executor.
func New(config Config, stdin io.Reader, stdout, stderr io.Writer) *Executor {
	return &Executor{
		config: config,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
}

// Execute runs the agent command until it exits or ctx is cancelled.
func (e *Executor) Execute(ctx context.Context) error {
	if len(e.config.Command) == 0 {
		return fmt.Errorf("no agent command given")
	}
	cmd := exec.CommandContext(ctx, e.config.Command[0], e.config.Command[1:]...)
	cmd.Env = append(os.Environ(), surface.SocketEnvVar+"="+e.config.SocketPath)
	cmd.Stdin = e.stdin
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	return cmd.Run()
}

// GetCommand returns the command string that would be executed (for
// dry-run), including the socket environment variable.
func (e *Executor) GetCommand() string {
	quoted := make([]string, len(e.config.Command))
	for i, arg := range e.config.Command {
		if strings.Contains(arg, " ") || strings.Contains(arg, "\n") {
			quoted[i] = fmt.Sprintf("%q", arg)
		} else {
			quoted[i] = arg
		}
	}
	return surface.SocketEnvVar + "=" + e.config.SocketPath + " " + strings.Join(quoted, " ")
}
