package tui

import (
	"strings"

	"github.com/theirongolddev/footprint/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// column describes one column of a card table. The first column is left
// aligned; the rest are right aligned unless left is set.
type column struct {
	title string
	width int
	left  bool
}

// renderTable lays out rows inside a card. Cells are truncated to their column
// width. The last column absorbs any remaining width.
func renderTable(cols []column, rows [][]string, innerWidth int) string {
	t := theme.Active
	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	used := 0
	for i, c := range cols {
		if i < len(cols)-1 {
			used += c.width + 1
		}
	}
	if last := len(cols) - 1; last >= 0 {
		cols[last].width = max(cols[last].width, innerWidth-used)
	}

	var b strings.Builder
	b.WriteString(tableLine(cols, titles(cols), head))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(tableLine(cols, row, cell))
	}
	return b.String()
}

func titles(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.title
	}
	return out
}

func tableLine(cols []column, cells []string, style lipgloss.Style) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		v := ""
		if i < len(cells) {
			v = ansi.Truncate(cells[i], c.width, "…")
		}
		pad := strings.Repeat(" ", max(0, c.width-ansi.StringWidth(v)))
		if i == 0 || c.left {
			parts[i] = v + pad
		} else {
			parts[i] = pad + v
		}
	}
	return style.Render(strings.Join(parts, " "))
}

// surfaceText returns a text style on the card surface.
func surfaceText(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Background(theme.Active.Surface)
}
