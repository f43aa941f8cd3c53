package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/footprint/internal/cli"
	"github.com/theirongolddev/footprint/internal/tui/components"
	"github.com/theirongolddev/footprint/internal/tui/theme"

	"github.com/charmbracelet/x/ansi"
)

func (a App) renderBudgetTab(cw int) string {
	t := theme.Active
	d := a.derived
	var b strings.Builder

	if len(d.Budget) == 0 {
		return components.ContentCard("Budget", surfaceText(t.TextDim).Render("The payload has no budget comparison."), cw)
	}

	inner := components.CardInnerWidth(cw)
	labelW := 4
	for _, e := range d.Budget {
		labelW = max(labelW, ansi.StringWidth(e.Category))
	}
	labelW = min(labelW, 20)
	barW := max(10, inner-labelW-8)

	bars := make([]string, len(d.Budget))
	for i, e := range d.Budget {
		bars[i] = components.BudgetBar(ansi.Truncate(e.Category, labelW, "…"), e.Status, e.ActualKg, e.BudgetedKg, labelW, barW)
	}
	b.WriteString(components.ContentCard("Actual vs budget", strings.Join(bars, "\n"), cw))
	b.WriteString("\n")

	rows := make([][]string, len(d.Budget))
	for i, e := range d.Budget {
		rows[i] = []string{
			e.Category,
			cli.FormatKg(e.BudgetedKg),
			cli.FormatKg(e.ActualKg),
			cli.FormatDeltaKg(e.DeltaKg),
			cli.FormatPercent(e.DeltaPct),
			e.Status,
		}
	}
	cols := []column{
		{title: "Category", width: 18},
		{title: "Budgeted", width: 12},
		{title: "Actual", width: 12},
		{title: "Delta", width: 12},
		{title: "Delta %", width: 8},
		{title: "Status", width: 8},
	}
	b.WriteString(components.ContentCard("Comparison", renderTable(cols, rows, inner), cw))

	if len(d.Recommendations) > 0 {
		b.WriteString("\n")
		var rec strings.Builder
		for i, r := range d.Recommendations {
			if i > 0 {
				rec.WriteString("\n\n")
			}
			rec.WriteString(surfaceText(t.Over).Bold(true).Render(r.Category))
			rec.WriteString(surfaceText(t.TextMuted).Render("  " + r.Problem))
			for _, tip := range r.Tips {
				rec.WriteString("\n")
				rec.WriteString(surfaceText(t.TextPrimary).Render(ansi.Truncate("  • "+tip, inner, "…")))
			}
		}
		title := fmt.Sprintf("Recommendations (%d)", len(d.Recommendations))
		b.WriteString(components.ContentCard(title, rec.String(), cw))
	}

	return b.String()
}
