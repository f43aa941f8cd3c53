package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/footprint/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a block progress bar with a percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := min(width, int(pct*float64(width)))

	filledStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		pctStyle.Render(fmt.Sprintf(" %.0f%%", pct*100))
}

// UsageColor returns the budget color for actual/budgeted usage.
func UsageColor(usage float64) lipgloss.Color {
	t := theme.Active
	switch {
	case usage > 1:
		return t.Over
	case usage >= 0.85:
		return t.Near
	default:
		return t.Under
	}
}

// BudgetBar renders one category's actual emission against its budget. The bar
// fills to actual/budgeted, capped at full; the color follows the status the
// producer assigned, falling back to the usage ratio.
func BudgetBar(label, status string, actual, budgeted float64, labelW, barWidth int) string {
	t := theme.Active

	usage := 0.0
	if budgeted > 0 {
		usage = actual / budgeted
	}
	color := UsageColor(usage)
	switch status {
	case "over":
		color = t.Over
	case "under":
		if usage <= 1 {
			color = t.Under
		}
	}

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(padRight(label, labelW)) +
		space.Render(" ") +
		bar.ViewAs(clamp01(usage)) +
		space.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%4.0f%%", usage*100))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
