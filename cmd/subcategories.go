package cmd

import (
	"fmt"

	"github.com/theirongolddev/footprint/internal/cli"
	"github.com/theirongolddev/footprint/internal/pipeline"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
)

var flagSubCategory string

var subcategoriesCmd = &cobra.Command{
	Use:     "subcategories",
	Aliases: []string{"subs"},
	Short:   "Top subcategories by amount",
	RunE:    runSubcategories,
}

func init() {
	subcategoriesCmd.Flags().StringVarP(&flagSubCategory, "category", "c", "", "Only subcategories of this category")
	rootCmd.AddCommand(subcategoriesCmd)
}

func runSubcategories(_ *cobra.Command, _ []string) error {
	d, df, err := loadPayload()
	if err != nil {
		return err
	}

	subs := d.Subcategories
	if flagSubCategory != "" {
		subs = pipeline.SubcategoriesOf(subs, flagSubCategory)
	}
	if len(subs) == 0 {
		fmt.Println("\n  No subcategories found.")
		return nil
	}

	n := topN(loadConfig())
	top := pipeline.TopSubcategories(subs, n)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TOP %d SUBCATEGORIES  %s", len(top), statementLabel(d, df))))
	fmt.Println()

	labelW := 0
	for _, s := range top {
		labelW = max(labelW, ansi.StringWidth(s.Name))
	}
	labelW = min(labelW, 24)
	peak := top[0].Amount
	for _, s := range top {
		fmt.Println(cli.RenderHorizontalBar(s.Name, s.Amount, peak, labelW, 30, cli.FormatAmount(s.Amount)))
	}
	fmt.Println()

	rows := make([][]string, 0, len(top))
	for _, s := range top {
		rows = append(rows, []string{s.Name, s.Category, cli.FormatAmount(s.Amount), cli.FormatKg(s.Emission)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Subcategory", "Category", "Amount", "Emission"},
		Rows:     rows,
		TextCols: []int{1},
	}))

	if len(subs) > len(top) {
		fmt.Println(cli.Muted(fmt.Sprintf("  %d more not shown (use --top)", len(subs)-len(top))))
	}
	return nil
}
