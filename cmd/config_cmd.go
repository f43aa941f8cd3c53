package cmd

import (
	"fmt"
	"sort"

	"github.com/theirongolddev/footprint/internal/cli"
	"github.com/theirongolddev/footprint/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Payload dir:       %s\n", config.PayloadDir(cfg))
	fmt.Printf("    Top subcategories: %d\n", cfg.General.TopSubcategories)
	fmt.Printf("    Recommendations:   %d\n", cfg.General.Recommendations)
	fmt.Printf("    Auto reload:       %v\n", cfg.General.AutoReload)
	fmt.Println()

	fmt.Println("  [Remote]")
	if base := config.RemoteBaseURL(cfg); base != "" {
		fmt.Printf("    Base URL: %s\n", base)
	} else {
		fmt.Println("    Base URL: not configured")
	}
	if token := config.RemoteToken(cfg); token != "" {
		fmt.Printf("    Token:    %s\n", maskToken(token))
	} else {
		fmt.Println("    Token:    not configured")
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval:      %ds\n", cfg.Daemon.IntervalSec)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	if url := config.AMQPURL(cfg); url != "" {
		fmt.Printf("    AMQP:          %s -> %s/%s\n", maskToken(url), cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
	} else {
		fmt.Println("    AMQP:          disabled")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	table := config.ReductionsWithOverrides(cfg)
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		r := table[name]
		rows = append(rows, []string{name, cli.FormatFraction(r.Fraction), reductionSource(cfg, table, name), cli.Truncate(cli.FormatTips(r.Tips), 60)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Reductions",
		Headers:  []string{"Category", "Cut", "Source", "Tips"},
		Rows:     rows,
		TextCols: []int{2, 3},
	}))
	fmt.Println()

	fmt.Println("  Run `footprint setup` to reconfigure.")
	return nil
}

// reductionSource labels where a reduction table entry comes from.
func reductionSource(cfg config.Config, table config.ReductionTable, name string) string {
	if _, ok := cfg.Reductions.Overrides[name]; ok {
		return "override"
	}
	if !table.Known(name) {
		return "fallback"
	}
	return "built-in"
}

func maskToken(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
