package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/footprint/internal/cli"
	"github.com/theirongolddev/footprint/internal/tui/components"
	"github.com/theirongolddev/footprint/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	d := a.derived
	tot := d.Totals
	var b strings.Builder

	emissionColor := t.Under
	if tot.ActualEmission > tot.AllottedEmission {
		emissionColor = t.Over
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Total spend", Value: cli.FormatAmount(d.TotalAmount()), Note: fmt.Sprintf("%d categories", len(d.Categories))},
		{Label: "Actual emission", Value: cli.FormatKg(tot.ActualEmission), Note: "allotted " + cli.FormatKg(tot.AllottedEmission), Color: emissionColor},
		{Label: "Transactions", Value: cli.FormatCount(d.TransactionsCount), Note: fmt.Sprintf("%d subcategories", len(d.Subcategories))},
		{Label: "Uncategorized", Value: cli.FormatAmount(d.Uncategorized)},
	}, cw))
	b.WriteString("\n")

	if len(d.Categories) == 0 {
		b.WriteString(components.ContentCard("Categories", surfaceText(t.TextDim).Render("The payload has no summary."), cw))
		return b.String()
	}

	halves := components.LayoutRow(cw, 2)

	spend := make([]components.Bar, len(d.Categories))
	emission := make([]components.Bar, len(d.Categories))
	for i, c := range d.Categories {
		spend[i] = components.Bar{Label: c.Name, Value: c.TotalAmount, Text: cli.FormatAmount(c.TotalAmount)}
		emission[i] = components.Bar{Label: c.Name, Value: c.TotalEmission, Text: cli.FormatKg(c.TotalEmission)}
	}
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Spend by category", components.BarChart(spend, t.Accent, components.CardInnerWidth(halves[0])), halves[0]),
		components.ContentCard("Emission by category", components.BarChart(emission, t.Before, components.CardInnerWidth(halves[1])), halves[1]),
	}))
	b.WriteString("\n")

	total := d.TotalAmount()
	rows := make([][]string, len(d.Categories))
	for i, c := range d.Categories {
		share := 0.0
		if total > 0 {
			share = c.TotalAmount / total * 100
		}
		rows[i] = []string{c.Name, cli.FormatAmount(c.TotalAmount), cli.FormatPercent(share), cli.FormatKg(c.TotalEmission)}
	}
	cols := []column{
		{title: "Category", width: 22},
		{title: "Amount", width: 14},
		{title: "Share", width: 8},
		{title: "Emission", width: 14},
	}
	b.WriteString(components.ContentCard("Categories", renderTable(cols, rows, components.CardInnerWidth(cw)), cw))

	return b.String()
}
