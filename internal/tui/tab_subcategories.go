package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/footprint/internal/cli"
	"github.com/theirongolddev/footprint/internal/pipeline"
	"github.com/theirongolddev/footprint/internal/tui/components"
	"github.com/theirongolddev/footprint/internal/tui/theme"
)

func (a App) renderSubcategoriesTab(cw int) string {
	t := theme.Active
	all := a.derived.Subcategories
	top := pipeline.TopSubcategories(all, a.opts.TopSubcategories)
	var b strings.Builder

	if len(all) == 0 {
		return components.ContentCard("Subcategories", surfaceText(t.TextDim).Render("No subcategories in this payload."), cw)
	}

	bars := make([]components.Bar, len(top))
	for i, s := range top {
		bars[i] = components.Bar{Label: s.Name, Value: s.Amount, Text: cli.FormatAmount(s.Amount)}
	}
	title := fmt.Sprintf("Top %d of %d subcategories by amount", len(top), len(all))
	b.WriteString(components.ContentCard(title, components.BarChart(bars, t.Accent, components.CardInnerWidth(cw)), cw))
	b.WriteString("\n")

	rows := make([][]string, len(all))
	for i, s := range all {
		perUnit := ""
		if s.Amount > 0 {
			perUnit = fmt.Sprintf("%.3f", s.Emission/s.Amount)
		}
		rows[i] = []string{s.Name, s.Category, cli.FormatAmount(s.Amount), cli.FormatKg(s.Emission), perUnit}
	}
	cols := []column{
		{title: "Subcategory", width: 24},
		{title: "Category", width: 16, left: true},
		{title: "Amount", width: 14},
		{title: "Emission", width: 14},
		{title: "kg / unit", width: 10},
	}
	b.WriteString(components.ContentCard("All subcategories", renderTable(cols, rows, components.CardInnerWidth(cw)), cw))

	return b.String()
}
