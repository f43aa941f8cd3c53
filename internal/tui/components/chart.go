package components

import (
	"strings"

	"github.com/theirongolddev/footprint/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Bar is one row of a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
	Text  string // value text shown after the bar
}

// BarChart renders labelled horizontal bars scaled to the largest value.
func BarChart(bars []Bar, color lipgloss.Color, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW, textW := 0, 0
	peak := 0.0
	for _, b := range bars {
		labelW = max(labelW, lipgloss.Width(b.Label))
		textW = max(textW, lipgloss.Width(b.Text))
		peak = max(peak, b.Value)
	}
	labelW = min(labelW, max(8, width/3))
	barMax := width - labelW - textW - 3
	if barMax < 4 {
		barMax = 4
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	lines := make([]string, len(bars))
	for i, b := range bars {
		label := ansi.Truncate(b.Label, labelW, "…")
		n := barLength(b.Value, peak, barMax)
		lines[i] = labelStyle.Render(padRight(label, labelW)) +
			space.Render(" ") +
			barStyle.Render(strings.Repeat("█", n)) +
			space.Render(strings.Repeat(" ", barMax-n+1)) +
			textStyle.Render(strings.Repeat(" ", max(0, textW-lipgloss.Width(b.Text)))+b.Text)
	}
	return strings.Join(lines, "\n")
}

// CompareBars renders paired before/after bars per row on a shared scale.
func CompareBars(labels []string, before, after []float64, width int) string {
	if len(labels) == 0 || len(before) != len(labels) || len(after) != len(labels) {
		return ""
	}
	t := theme.Active

	labelW := 0
	peak := 0.0
	for i, l := range labels {
		labelW = max(labelW, lipgloss.Width(l))
		peak = max(peak, before[i], after[i])
	}
	labelW = min(labelW, max(8, width/3))
	barMax := max(4, width-labelW-1)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	beforeStyle := lipgloss.NewStyle().Foreground(t.Before).Background(t.Surface)
	afterStyle := lipgloss.NewStyle().Foreground(t.After).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)
	blank := labelStyle.Render(strings.Repeat(" ", labelW))

	var b strings.Builder
	for i, l := range labels {
		if i > 0 {
			b.WriteString("\n")
		}
		nb := barLength(before[i], peak, barMax)
		na := barLength(after[i], peak, barMax)
		b.WriteString(labelStyle.Render(padRight(ansi.Truncate(l, labelW, "…"), labelW)))
		b.WriteString(space.Render(" "))
		b.WriteString(beforeStyle.Render(strings.Repeat("█", nb)))
		b.WriteString("\n")
		b.WriteString(blank)
		b.WriteString(space.Render(" "))
		b.WriteString(afterStyle.Render(strings.Repeat("▓", na)))
	}
	return b.String()
}

// padRight pads s with spaces to w terminal cells.
func padRight(s string, w int) string {
	return s + strings.Repeat(" ", max(0, w-lipgloss.Width(s)))
}

func barLength(v, peak float64, width int) int {
	if peak <= 0 || v <= 0 {
		return 0
	}
	n := int(v / peak * float64(width))
	if n == 0 {
		n = 1
	}
	return min(n, width)
}
