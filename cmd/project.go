package cmd

import (
	"fmt"

	"github.com/theirongolddev/footprint/internal/cli"

	"github.com/spf13/cobra"
)

var flagProjectTips bool

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projection"},
	Short:   "Projected emission after suggested reductions, with offset estimate",
	RunE:    runProject,
}

func init() {
	projectCmd.Flags().BoolVar(&flagProjectTips, "tips", true, "Show reduction tips per category")
	rootCmd.AddCommand(projectCmd)
}

func runProject(_ *cobra.Command, _ []string) error {
	d, df, err := loadPayload()
	if err != nil {
		return err
	}
	p := d.Projection
	pt := p.Totals

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROJECTION  " + statementLabel(d, df)))
	fmt.Println()

	if len(p.Categories) > 0 {
		headers := []string{"Category", "Amount", "Emission", "Cut", "After"}
		if flagProjectTips {
			headers = append(headers, "Tips")
		}
		rows := make([][]string, 0, len(p.Categories))
		for _, c := range p.Categories {
			row := []string{
				c.Name,
				cli.FormatAmount(c.Amount),
				cli.FormatKg(c.Emission),
				cli.FormatFraction(c.ReductionFraction),
				cli.FormatKg(c.AfterEmission),
			}
			if flagProjectTips {
				row = append(row, cli.Truncate(cli.FormatTips(c.Tips), 60))
			}
			rows = append(rows, row)
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:    "Suggestions",
			Headers:  headers,
			Rows:     rows,
			TextCols: []int{5},
		}))
		fmt.Println()
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Totals",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Allotted", cli.FormatKg(pt.Allotted)},
			{"Actual", cli.FormatKg(pt.Actual)},
			{"Delta (allotted - actual)", cli.FormatDeltaKg(pt.Delta)},
			{"Budget", cli.RenderCompliance(pt.Compliant)},
			{"---"},
			{"After optimization", cli.FormatKg(pt.AfterActual)},
			{"Overall reduction", cli.FormatPercent(pt.OverallReductionPct)},
			{"---"},
			{"Offset needed", cli.FormatKg(p.Offset.OffsetKg)},
			{"Credit cost (est)", cli.FormatUSD(p.Offset.EstimatedCreditCostUSD)},
			{"Trees for a year", cli.FormatCount(p.Offset.EstimatedTrees)},
		},
		TextCols: []int{1},
	}))
	return nil
}
