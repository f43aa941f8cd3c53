package components

import (
	"github.com/theirongolddev/footprint/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left and the
// payload source plus reload state on the right.
func RenderStatusBar(width int, hints, source string, reloading, autoReload bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	accent := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	left := style.Render(" " + hints)

	right := style.Render(source)
	switch {
	case reloading:
		right = accent.Render("reloading… ") + right
	case autoReload:
		right = accent.Render("● ") + right
	}
	right += style.Render(" ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	filler := lipgloss.NewStyle().Background(t.Surface).Width(gap).Render("")

	return lipgloss.NewStyle().MaxWidth(width).Render(left + filler + right)
}
