package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestInitializeTUI(t *testing.T) {
	prev := lipgloss.ColorProfile()
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	tests := []struct {
		name string
		env  map[string]string
		want termenv.Profile
	}{
		{"forced", map[string]string{"NO_COLOR": "", "CLICOLOR_FORCE": "1"}, termenv.TrueColor},
		{"truecolor terminal", map[string]string{"NO_COLOR": "", "CLICOLOR_FORCE": "", "COLORTERM": "truecolor"}, termenv.TrueColor},
		{"no color wins", map[string]string{"NO_COLOR": "1", "CLICOLOR_FORCE": "1"}, termenv.Ascii},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, InitializeTUI())
			assert.Equal(t, tt.want, lipgloss.ColorProfile())
		})
	}
}
