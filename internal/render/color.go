package render

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ShouldUseColors determines if colors should be used based on the color
// setting ("auto", "always", "never").
func ShouldUseColors(colorMode string) bool {
	switch colorMode {
	case "always":
		return true
	case "never":
		return false
	case "auto":
		// Check if output is a terminal
		if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) != 0 {
			if os.Getenv("NO_COLOR") != "" {
				return false
			}
			return true
		}
		return false
	default:
		return true
	}
}

// ConfigureColorProfile sets the global lipgloss color profile for the
// color mode. Must run before any lipgloss/glamour rendering so piped
// output honors the mode.
func ConfigureColorProfile(colorMode string) {
	switch colorMode {
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
		// "auto" - let lipgloss use its default TTY-based detection
	}
}
