// Package theme defines color themes for the footprint TUI dashboard.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name         string
	Background   lipgloss.Color
	Surface      lipgloss.Color // card and bar backgrounds
	SurfaceHover lipgloss.Color // active tab, selected row
	Border       lipgloss.Color
	BorderAccent lipgloss.Color
	TextDim      lipgloss.Color
	TextMuted    lipgloss.Color
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color
	AccentBright lipgloss.Color

	// Budget semantics
	Under lipgloss.Color
	Near  lipgloss.Color
	Over  lipgloss.Color

	// Projection bars: before and after optimization
	Before lipgloss.Color
	After  lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	SurfaceHover: lipgloss.Color("#282726"),
	Border:       lipgloss.Color("#403E3C"),
	BorderAccent: lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Under:        lipgloss.Color("#879A39"),
	Near:         lipgloss.Color("#D0A215"),
	Over:         lipgloss.Color("#D14D41"),
	Before:       lipgloss.Color("#DA702C"),
	After:        lipgloss.Color("#879A39"),
}

// Canopy is a green-leaning dark theme.
var Canopy = Theme{
	Name:         "canopy",
	Background:   lipgloss.Color("#0F1410"),
	Surface:      lipgloss.Color("#18201A"),
	SurfaceHover: lipgloss.Color("#233026"),
	Border:       lipgloss.Color("#34463A"),
	BorderAccent: lipgloss.Color("#6FBF73"),
	TextDim:      lipgloss.Color("#4E6354"),
	TextMuted:    lipgloss.Color("#8FA596"),
	TextPrimary:  lipgloss.Color("#E8F2EA"),
	Accent:       lipgloss.Color("#6FBF73"),
	AccentBright: lipgloss.Color("#9BE39E"),
	Under:        lipgloss.Color("#6FBF73"),
	Near:         lipgloss.Color("#E0B04F"),
	Over:         lipgloss.Color("#E06A5A"),
	Before:       lipgloss.Color("#C98B4A"),
	After:        lipgloss.Color("#6FBF73"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	SurfaceHover: lipgloss.Color("8"),
	Border:       lipgloss.Color("8"),
	BorderAccent: lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Under:        lipgloss.Color("2"),
	Near:         lipgloss.Color("3"),
	Over:         lipgloss.Color("1"),
	Before:       lipgloss.Color("3"),
	After:        lipgloss.Color("2"),
}

// All available themes.
var All = []Theme{FlexokiDark, Canopy, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name. Terminals that cannot render
// 256 colors always get the ANSI theme.
func SetActive(name string) {
	Active = ForProfile(ByName(name), termenv.EnvColorProfile())
}

// ForProfile downgrades t to Terminal when the color profile is ANSI or worse.
func ForProfile(t Theme, p termenv.Profile) Theme {
	if p == termenv.ANSI || p == termenv.Ascii {
		return Terminal
	}
	return t
}

// Names lists the selectable theme names.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}
