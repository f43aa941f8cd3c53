package tui

import (
	"strings"

	"github.com/theirongolddev/footprint/internal/cli"
	"github.com/theirongolddev/footprint/internal/tui/components"
	"github.com/theirongolddev/footprint/internal/tui/theme"
)

func (a App) renderProjectionTab(cw int) string {
	t := theme.Active
	p := a.derived.Projection
	pt := p.Totals
	var b strings.Builder

	verdict, verdictColor := "within budget", t.Under
	if !pt.Compliant {
		verdict, verdictColor = "over budget", t.Over
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Actual", Value: cli.FormatKg(pt.Actual), Note: "allotted " + cli.FormatKg(pt.Allotted)},
		{Label: "After optimization", Value: cli.FormatKg(pt.AfterActual), Note: cli.FormatPercent(pt.OverallReductionPct) + " reduction", Color: t.After},
		{Label: "Budget delta", Value: cli.FormatDeltaKg(pt.Delta), Note: verdict, Color: verdictColor},
		{Label: "Offset needed", Value: cli.FormatKg(p.Offset.OffsetKg), Note: cli.FormatUSD(p.Offset.EstimatedCreditCostUSD) + " · " + cli.FormatCount(p.Offset.EstimatedTrees) + " trees"},
	}, cw))
	b.WriteString("\n")

	if len(p.Categories) == 0 {
		return b.String()
	}

	labels := make([]string, len(p.Categories))
	before := make([]float64, len(p.Categories))
	after := make([]float64, len(p.Categories))
	for i, c := range p.Categories {
		labels[i] = c.Name
		before[i] = c.Emission
		after[i] = c.AfterEmission
	}
	legend := surfaceText(t.Before).Render("█ current") + surfaceText(t.TextDim).Render("  ") +
		surfaceText(t.After).Render("▓ after")
	chart := components.CompareBars(labels, before, after, components.CardInnerWidth(cw))
	b.WriteString(components.ContentCard("Emission before and after", legend+"\n"+chart, cw))
	b.WriteString("\n")

	rows := make([][]string, len(p.Categories))
	for i, c := range p.Categories {
		rows[i] = []string{
			c.Name,
			cli.FormatKg(c.Emission),
			cli.FormatFraction(c.ReductionFraction),
			cli.FormatKg(c.AfterEmission),
			cli.FormatTips(c.Tips),
		}
	}
	cols := []column{
		{title: "Category", width: 16},
		{title: "Current", width: 12},
		{title: "Cut", width: 5},
		{title: "After", width: 12},
		{title: "Tips", width: 20, left: true},
	}
	b.WriteString(components.ContentCard("Suggestions", renderTable(cols, rows, components.CardInnerWidth(cw)), cw))

	return b.String()
}
