package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/footprint/internal/cli"
	"github.com/theirongolddev/footprint/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Category rollups and emission totals",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	d, df, err := loadPayload()
	if err != nil {
		if errors.Is(err, pipeline.ErrNoPayloadFiles) {
			fmt.Println("\n  No payloads found.")
			fmt.Println("  Pass one with --file, or run `footprint fetch <statement-id>`.")
			return nil
		}
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("FOOTPRINT  " + statementLabel(d, df)))
	fmt.Println()

	tot := d.Totals
	rows := [][]string{
		{"Transactions", cli.FormatCount(d.TransactionsCount)},
		{"Categories", cli.FormatCount(len(d.Categories))},
		{"Subcategories", cli.FormatCount(len(d.Subcategories))},
		{"---"},
		{"Total spend", cli.FormatAmount(d.TotalAmount())},
		{"Uncategorized", cli.FormatAmount(d.Uncategorized)},
		{"---"},
		{"Allotted emission", cli.FormatKg(tot.AllottedEmission)},
		{"Actual emission", cli.FormatKg(tot.ActualEmission)},
		{"Budget", cli.RenderCompliance(tot.ActualEmission <= tot.AllottedEmission)},
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Metric", "Value"},
		Rows:     rows,
		TextCols: []int{1},
	}))

	if len(d.Categories) == 0 {
		fmt.Println("\n  The payload has no summary.")
		return nil
	}

	total := d.TotalAmount()
	catRows := make([][]string, 0, len(d.Categories))
	for _, c := range d.Categories {
		share := 0.0
		if total > 0 {
			share = c.TotalAmount / total * 100
		}
		catRows = append(catRows, []string{
			c.Name,
			cli.FormatAmount(c.TotalAmount),
			cli.FormatPercent(share),
			cli.FormatKg(c.TotalEmission),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Categories",
		Headers: []string{"Category", "Amount", "Share", "Emission"},
		Rows:    catRows,
	}))

	return nil
}
