package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/footprint/internal/cli"
	"github.com/theirongolddev/footprint/internal/pipeline"
	"github.com/theirongolddev/footprint/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagHistoryLimit   int
	flagHistoryRefresh string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Emission totals for every payload in the data dir",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Rows to show, newest first (0 = all)")
	historyCmd.Flags().StringVar(&flagHistoryRefresh, "refresh", "", "Drop the cached snapshot of a statement (or snapshot ID) so it is recomputed")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	if flagHistoryRefresh != "" {
		if err := refreshCached(flagHistoryRefresh); err != nil {
			return err
		}
	}

	result, err := loadHistory()
	if err != nil {
		return err
	}

	if len(result.Snapshots) == 0 {
		fmt.Println("\n  No payloads found.")
		return nil
	}

	snaps := result.Snapshots
	if flagHistoryLimit > 0 && len(snaps) > flagHistoryLimit {
		snaps = snaps[:flagHistoryLimit]
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("HISTORY  %d payloads", len(result.Snapshots))))
	fmt.Println()

	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, []string{
			s.StatementID,
			s.AnalyzedAt.Local().Format("2006-01-02"),
			cli.FormatAmount(s.TotalAmount),
			cli.FormatKg(s.Actual),
			cli.FormatKg(s.AfterActual),
			cli.FormatKg(s.OffsetKg),
			fmt.Sprintf("%d", s.OverBudget),
			cli.RenderCompliance(s.Compliant),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Statement", "Analyzed", "Spend", "Actual", "After", "Offset", "Over", "Budget"},
		Rows:     rows,
		TextCols: []int{1, 7},
	}))

	// Oldest on the left.
	trend := make([]float64, len(snaps))
	for i, s := range snaps {
		trend[len(snaps)-1-i] = s.Actual
	}
	if len(trend) > 1 {
		fmt.Printf("\n  Actual emission trend  %s\n", cli.RenderSparkline(trend))
	}

	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d files could not be parsed\n", result.FileErrors)
	}
	return nil
}

func refreshCached(key string) error {
	if flagNoCache {
		warnf("--refresh has no effect with --no-cache")
		return nil
	}
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer func() { _ = cache.Close() }()

	n, err := forgetSnapshots(cache, key)
	if err != nil {
		return err
	}
	if n == 0 {
		warnf("no cached snapshot matches %s", key)
	} else if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Dropped %d cached snapshot(s) for %s\n", n, key)
	}
	return nil
}

// forgetSnapshots deletes every cached snapshot whose ID or statement ID is key.
// Their files are re-parsed on the next cached load.
func forgetSnapshots(cache *store.Cache, key string) (int, error) {
	snaps, err := cache.LoadSnapshots()
	if err != nil {
		return 0, fmt.Errorf("reading cache: %w", err)
	}
	n := 0
	for _, s := range snaps {
		if s.ID != key && s.StatementID != key {
			continue
		}
		if err := cache.DeleteSnapshot(s.ID); err != nil {
			return n, fmt.Errorf("dropping %s: %w", s.ID, err)
		}
		n++
	}
	return n, nil
}
