// Package tui holds the pieces shared by mviewer's terminal front ends.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// InitializeTUI picks the color profile before the console starts.
// NO_COLOR turns styling off. CLICOLOR_FORCE=1 or COLORTERM=truecolor
// forces full color, which keeps the console styled when stdout is not a
// terminal. Otherwise lipgloss detects the profile itself.
func InitializeTUI() termenv.Profile {
	switch {
	case os.Getenv("NO_COLOR") != "":
		lipgloss.SetColorProfile(termenv.Ascii)
	case os.Getenv("CLICOLOR_FORCE") == "1" || os.Getenv("COLORTERM") == "truecolor":
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
	return lipgloss.ColorProfile()
}
