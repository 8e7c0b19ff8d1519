package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"askconsole/internal/console"
	"askconsole/internal/executor"
	"askconsole/internal/mcpserver"
	"askconsole/internal/render"
)

const version = "0.1.0"

func main() {
	if err := run(os.Args, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// separateFlags separates flag arguments from positional arguments so flags
// can appear anywhere before the agent command. Returns (flagArgs, posArgs).
func separateFlags(args []string) ([]string, []string) {
	var flagArgs []string
	var posArgs []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// Everything after the first positional argument belongs to the
		// agent command line, flags included
		if len(posArgs) > 0 || len(arg) == 0 || arg[0] != '-' {
			posArgs = append(posArgs, arg)
			continue
		}

		flagArgs = append(flagArgs, arg)

		// --color may take its value as the next argument
		if (arg == "-color" || arg == "--color") && i+1 < len(args) {
			i++
			flagArgs = append(flagArgs, args[i])
		}
	}

	return flagArgs, posArgs
}

func run(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet(args[0], flag.ExitOnError)
	flags.SetOutput(stderr)

	var (
		showVersion = flags.Bool("version", false, "Show version information")
		showHelp    = flags.Bool("help", false, "Show help information")
		dryRun      = flags.Bool("dry-run", false, "Show the agent command that would be executed without running it")
		color       = flags.String("color", "auto", "Control color output (auto, always, never)")
	)

	flagArgs, posArgs := separateFlags(args[1:])

	if err := flags.Parse(flagArgs); err != nil {
		return err
	}

	if *showVersion {
		_, _ = fmt.Fprintf(stdout, "askconsole version %s\n", version)
		return nil
	}

	if *showHelp {
		printHelp(stdout, *color)
		return nil
	}

	// "askconsole mcp" runs the MCP server half; it is started by the
	// agent runtime, not by the user
	if len(posArgs) > 0 && posArgs[0] == "mcp" {
		return mcpserver.Run()
	}

	render.ConfigureColorProfile(*color)

	srv := console.New(stdout, *color)

	agentCommand := posArgs
	if *dryRun {
		if len(agentCommand) == 0 {
			return fmt.Errorf("dry-run needs an agent command")
		}
		exec := executor.New(executor.Config{
			Command:    agentCommand,
			SocketPath: srv.SocketPath(),
		}, os.Stdin, stdout, stderr)
		_, _ = fmt.Fprintf(stdout, "Would execute:\n%s\n", exec.GetCommand())
		return nil
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start console: %w", err)
	}
	defer srv.Stop()

	srv.PrintWaiting()

	if len(agentCommand) > 0 {
		exec := executor.New(executor.Config{
			Command:    agentCommand,
			SocketPath: srv.SocketPath(),
		}, os.Stdin, stdout, stderr)
		if err := exec.Execute(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("agent execution failed: %w", err)
		}
		return nil
	}

	// No agent command: host the panel until interrupted. The socket path
	// is printed so an externally started agent can be pointed at it.
	_, _ = fmt.Fprintf(stdout, "ASKCONSOLE_SOCK=%s\n", srv.SocketPath())
	<-ctx.Done()
	return nil
}

func printHelp(w io.Writer, colorMode string) {
	useColors := render.ShouldUseColors(colorMode)

	var mdRenderer *glamour.TermRenderer
	if useColors {
		mdRenderer = render.NewMarkdownRenderer(colorMode)
	}

	renderMarkdown := func(text string) string {
		return render.Markdown(mdRenderer, text)
	}

	// Styles for help text (with conditional colors)
	titleStyle := lipgloss.NewStyle().Bold(true).MarginBottom(1)
	sectionStyle := lipgloss.NewStyle().Bold(true).MarginTop(1)
	optionStyle := lipgloss.NewStyle()
	descStyle := lipgloss.NewStyle()

	if useColors {
		titleStyle = titleStyle.Foreground(lipgloss.Color("6"))     // Cyan
		sectionStyle = sectionStyle.Foreground(lipgloss.Color("3")) // Yellow
		optionStyle = optionStyle.Foreground(lipgloss.Color("2"))   // Green
		descStyle = descStyle.Foreground(lipgloss.Color("7"))       // Light gray
	}

	title := titleStyle.Render("askconsole - Let AI agents ask you questions from the terminal")

	usage := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Usage:"),
		"  askconsole [options] [agent command...]",
		"  askconsole mcp",
	)

	description := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Description:"),
		descStyle.Render("  Askconsole hosts an interactive console panel where AI agents can"),
		descStyle.Render("  pause mid-task and ask you a question, blocking the tool call until"),
		descStyle.Render("  you answer or cancel."),
		"",
		descStyle.Render("  When given an agent command, askconsole starts the panel and runs the"),
		descStyle.Render("  agent with ASKCONSOLE_SOCK set. The agent runtime starts the MCP half"),
		descStyle.Render("  with 'askconsole mcp', which exposes the ask_user tool."),
	)

	options := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Options:"),
		fmt.Sprintf("  %s      Show this help message", optionStyle.Render("--help")),
		fmt.Sprintf("  %s   Show version information", optionStyle.Render("--version")),
		fmt.Sprintf("  %s   Show the agent command that would be executed without running it", optionStyle.Render("--dry-run")),
		fmt.Sprintf("  %s     Control color output (auto, always, never)", optionStyle.Render("--color")),
	)

	examplesBlock := `~~~sh
# Host the panel and run an agent under it
askconsole claude -p "refactor the parser"

# Host the panel alone; point an already-running agent at the printed socket
askconsole

# Show what would be executed
askconsole --dry-run claude -p "refactor the parser"
~~~`

	examples := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Examples:"),
		renderMarkdown(examplesBlock),
	)

	toolBlock := `~~~json
{
  "question": "Which database should the migration target?",
  "title": "Migration target",
  "agentName": "Refactor Agent"
}
~~~`

	toolFormat := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("ask_user tool input:"),
		"  The MCP half registers a single ask_user tool. The result payload is",
		"  {\"responded\": bool, \"response\": string}.",
		"",
		renderMarkdown(toolBlock),
	)

	help := lipgloss.JoinVertical(lipgloss.Left,
		title,
		usage,
		description,
		options,
		examples,
		toolFormat,
	)

	_, _ = fmt.Fprintln(w, help)
}
