package cmd

import (
	"fmt"

	"github.com/theirongolddev/footprint/internal/cli"

	"github.com/spf13/cobra"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Budget vs actual emission by category, with recommendations",
	RunE:  runBudget,
}

func init() {
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(_ *cobra.Command, _ []string) error {
	d, df, err := loadPayload()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET  " + statementLabel(d, df)))
	fmt.Println()

	if len(d.Budget) == 0 {
		fmt.Println("  The payload has no budget comparison.")
		return nil
	}

	rows := make([][]string, 0, len(d.Budget)+2)
	var budgeted, actual float64
	for _, e := range d.Budget {
		budgeted += e.BudgetedKg
		actual += e.ActualKg
		rows = append(rows, []string{
			e.Category,
			cli.FormatKg(e.BudgetedKg),
			cli.FormatKg(e.ActualKg),
			cli.FormatDeltaKg(e.DeltaKg),
			cli.FormatPercent(e.DeltaPct),
			cli.RenderStatus(e.Status),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"Total", cli.FormatKg(budgeted), cli.FormatKg(actual), "", "", ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Category", "Budgeted", "Actual", "Delta", "Delta %", "Status"},
		Rows:     rows,
		TextCols: []int{5},
	}))

	if len(d.Recommendations) == 0 {
		fmt.Println()
		fmt.Println(cli.Muted("  No category is over budget."))
		return nil
	}

	fmt.Println()
	for _, r := range d.Recommendations {
		fmt.Printf("  %s  %s\n", cli.Warn(r.Category), r.Problem)
		for _, tip := range r.Tips {
			fmt.Printf("    - %s\n", tip)
		}
		fmt.Println()
	}
	return nil
}
