package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/mviewer/config"
)

const defaultThemeName = "nebula"

// --- Nebula (dark) palette ---
const (
	nebulaDarkGreen                = "#98BB6C"
	nebulaDarkYellow               = "#FF9E3B"
	nebulaDarkRed                  = "#FF5D62"
	nebulaDarkOrange               = "#FFA066"
	nebulaDarkCyan                 = "#7E9CD8"
	nebulaDarkViolet               = "#957FB8"
	nebulaDarkLightText            = "#DCD7BA"
	nebulaDarkMutedText            = "#727169"
	nebulaDarkBorder               = "#363646"
	nebulaDarkSelectedBackground   = "#223249"
	nebulaDarkVerySubtleBackground = "#181820"
)

// --- Nebula (light) palette ---
const (
	nebulaLightGreen                = "#4E7C5A"
	nebulaLightYellow               = "#A68A64"
	nebulaLightRed                  = "#C34043"
	nebulaLightOrange               = "#CC6B4E"
	nebulaLightCyan                 = "#5B8BBE"
	nebulaLightViolet               = "#674D7A"
	nebulaLightLightText            = "#2B2F42"
	nebulaLightMutedText            = "#6C7086"
	nebulaLightBorder               = "#B5BDC5"
	nebulaLightSelectedBackground   = "#E2E6F3"
	nebulaLightVerySubtleBackground = "#EFF1F8"
)

// Colors encapsulates the palette used by a theme.
type Colors struct {
	Green                lipgloss.TerminalColor
	Yellow               lipgloss.TerminalColor
	Red                  lipgloss.TerminalColor
	Orange               lipgloss.TerminalColor
	Cyan                 lipgloss.TerminalColor
	Violet               lipgloss.TerminalColor
	LightText            lipgloss.TerminalColor
	MutedText            lipgloss.TerminalColor
	Border               lipgloss.TerminalColor
	SelectedBackground   lipgloss.TerminalColor
	VerySubtleBackground lipgloss.TerminalColor
}

// Color shortcuts populated from DefaultTheme.
var (
	Border               lipgloss.TerminalColor
	MutedText            lipgloss.TerminalColor
	VerySubtleBackground lipgloss.TerminalColor
)

// Theme holds the pre-configured styles used by the console and CLI output.
type Theme struct {
	Name   string
	Colors Colors

	Header lipgloss.Style
	Title  lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Bold        lipgloss.Style
	Muted       lipgloss.Style
	SelectedRow lipgloss.Style

	TableHeader        lipgloss.Style
	TableRow           lipgloss.Style
	UseAlternatingRows bool

	Box lipgloss.Style

	Highlight lipgloss.Style
	Accent    lipgloss.Style

	// Busy dims the whole view while a request is outstanding.
	Busy lipgloss.Style
}

var themeRegistry = map[string]func() Colors{
	"nebula":   newNebulaColors,
	"terminal": newTerminalColors,
}

// DefaultTheme is the theme selected by MVIEWER_THEME or the "tui.theme" config key.
var DefaultTheme = initDefaultTheme()

// NewThemeWithName constructs a theme from a specific palette name.
func NewThemeWithName(name string) *Theme {
	return newThemeFromColors(resolveThemeColors(name), name)
}

// RenderHeader renders a header with the default styling.
func RenderHeader(title string) string {
	return DefaultTheme.Header.Render(title)
}

// RenderStatus renders text with the appropriate status style.
func RenderStatus(status, text string) string {
	switch status {
	case "success":
		return DefaultTheme.Success.Render(text)
	case "error":
		return DefaultTheme.Error.Render(text)
	case "warning":
		return DefaultTheme.Warning.Render(text)
	case "info":
		return DefaultTheme.Info.Render(text)
	default:
		return text
	}
}

// Swatch renders a small block in an overlay's hex color, e.g. "#ff0000".
// Unparseable colors render as the raw text.
func Swatch(hex string) string {
	h := strings.TrimSpace(hex)
	if h == "" {
		return ""
	}
	if !strings.HasPrefix(h, "#") {
		h = "#" + h
	}
	if len(h) != 7 && len(h) != 4 {
		return hex
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(h)).Render("██") + " " + hex
}

func initDefaultTheme() *Theme {
	name := getThemeName()
	t := NewThemeWithName(name)
	Border = t.Colors.Border
	MutedText = t.Colors.MutedText
	VerySubtleBackground = t.Colors.VerySubtleBackground
	return t
}

func newThemeFromColors(colors Colors, themeName string) *Theme {
	name := normalizeThemeName(themeName)
	return &Theme{
		Name:   name,
		Colors: colors,

		Header: lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1),

		Title: lipgloss.NewStyle().
			Bold(true).
			Underline(true),

		Success: lipgloss.NewStyle().Foreground(colors.Green).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(colors.Red).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(colors.Yellow).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(colors.Cyan).Bold(true),

		Bold:  lipgloss.NewStyle().Bold(true),
		Muted: lipgloss.NewStyle().Faint(true),

		SelectedRow: lipgloss.NewStyle().
			Background(colors.SelectedBackground).
			Foreground(colors.LightText),

		TableHeader: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1),

		TableRow: lipgloss.NewStyle().Padding(0, 1),

		// ANSI themes can't guarantee a readable alternating background.
		UseAlternatingRows: name != "terminal",

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Border).
			Padding(0, 1),

		Highlight: lipgloss.NewStyle().Foreground(colors.Orange).Bold(true),
		Accent:    lipgloss.NewStyle().Foreground(colors.Violet).Bold(true),

		Busy: lipgloss.NewStyle().Faint(true).Foreground(colors.MutedText),
	}
}

func resolveThemeColors(name string) Colors {
	if builder, ok := themeRegistry[normalizeThemeName(name)]; ok {
		return builder()
	}
	return themeRegistry[defaultThemeName]()
}

func normalizeThemeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, " ", "-")
	return strings.ReplaceAll(normalized, "_", "-")
}

func getThemeName() string {
	if theme := normalizeThemeName(os.Getenv("MVIEWER_THEME")); theme != "" {
		return theme
	}

	cfg, err := config.LoadDefault()
	if err != nil || cfg == nil {
		return defaultThemeName
	}

	var tuiCfg struct {
		Theme string `yaml:"theme"`
	}
	if err := cfg.UnmarshalExtension("tui", &tuiCfg); err == nil {
		if theme := normalizeThemeName(tuiCfg.Theme); theme != "" {
			return theme
		}
	}
	return defaultThemeName
}

func newNebulaColors() Colors {
	return Colors{
		Green:                lipgloss.AdaptiveColor{Light: nebulaLightGreen, Dark: nebulaDarkGreen},
		Yellow:               lipgloss.AdaptiveColor{Light: nebulaLightYellow, Dark: nebulaDarkYellow},
		Red:                  lipgloss.AdaptiveColor{Light: nebulaLightRed, Dark: nebulaDarkRed},
		Orange:               lipgloss.AdaptiveColor{Light: nebulaLightOrange, Dark: nebulaDarkOrange},
		Cyan:                 lipgloss.AdaptiveColor{Light: nebulaLightCyan, Dark: nebulaDarkCyan},
		Violet:               lipgloss.AdaptiveColor{Light: nebulaLightViolet, Dark: nebulaDarkViolet},
		LightText:            lipgloss.AdaptiveColor{Light: nebulaLightLightText, Dark: nebulaDarkLightText},
		MutedText:            lipgloss.AdaptiveColor{Light: nebulaLightMutedText, Dark: nebulaDarkMutedText},
		Border:               lipgloss.AdaptiveColor{Light: nebulaLightBorder, Dark: nebulaDarkBorder},
		SelectedBackground:   lipgloss.AdaptiveColor{Light: nebulaLightSelectedBackground, Dark: nebulaDarkSelectedBackground},
		VerySubtleBackground: lipgloss.AdaptiveColor{Light: nebulaLightVerySubtleBackground, Dark: nebulaDarkVerySubtleBackground},
	}
}

func newTerminalColors() Colors {
	return Colors{
		Green:                lipgloss.Color("2"),
		Yellow:               lipgloss.Color("3"),
		Red:                  lipgloss.Color("1"),
		Orange:               lipgloss.Color("208"),
		Cyan:                 lipgloss.Color("6"),
		Violet:               lipgloss.Color("5"),
		LightText:            lipgloss.Color("7"),
		MutedText:            lipgloss.Color("8"),
		Border:               lipgloss.Color("8"),
		SelectedBackground:   lipgloss.Color("8"),
		VerySubtleBackground: lipgloss.Color("0"),
	}
}
