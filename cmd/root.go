// Package cmd implements the footprint CLI commands.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/footprint/internal/cli"
	"github.com/theirongolddev/footprint/internal/config"
	"github.com/theirongolddev/footprint/internal/model"
	"github.com/theirongolddev/footprint/internal/pipeline"
	"github.com/theirongolddev/footprint/internal/source"
	"github.com/theirongolddev/footprint/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagFile    string
	flagDataDir string
	flagTop     int
	flagNoCache bool
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "footprint",
	Short: "Spending emissions dashboard",
	Long: "Analyze a categorized spending payload: category rollups, budget vs actual,\n" +
		"and the projected emission after suggested reductions.",
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "  Warning: reading .env: %v\n", err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// RunE is assigned here rather than in the literal to avoid an
	// initialization cycle (runSummary → dataDir → rootCmd).
	rootCmd.RunE = runSummary
	rootCmd.PersistentFlags().StringVarP(&flagFile, "file", "f", "", "Payload file (default: newest in the data dir)")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", config.DefaultPayloadDir(), "Payload directory")
	rootCmd.PersistentFlags().IntVarP(&flagTop, "top", "t", 0, "Subcategories to show (default from config, 8)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite history cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// loadConfig returns the config file, or defaults when it cannot be read.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		warnf("%v (using defaults)", err)
		return config.DefaultConfig()
	}
	return cfg
}

// dataDir prefers an explicit --data-dir, then the config file, then the default.
func dataDir(cfg config.Config) string {
	if rootCmd.PersistentFlags().Changed("data-dir") {
		return flagDataDir
	}
	return config.PayloadDir(cfg)
}

func topN(cfg config.Config) int {
	switch {
	case flagTop > 0:
		return flagTop
	case cfg.General.TopSubcategories > 0:
		return cfg.General.TopSubcategories
	}
	return config.SubcategoryChartLimit
}

func pipelineOptions(cfg config.Config) pipeline.Options {
	return pipeline.Options{
		Reductions:      config.ReductionsWithOverrides(cfg),
		Recommendations: cfg.General.Recommendations,
	}
}

// loadPayload is the shared path of the single-payload commands: resolve the
// payload file, parse it and derive its state.
func loadPayload() (model.DerivedState, source.DiscoveredFile, error) {
	cfg := loadConfig()

	df, err := pipeline.Resolve(flagFile, dataDir(cfg))
	if err != nil {
		return model.DerivedState{}, df, err
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Reading %s (%s, %s)\n",
			df.Path, cli.FormatBytes(df.SizeBytes), cli.FormatAgo(analyzedTime(df)))
	}

	d, err := pipeline.LoadFile(df, pipelineOptions(cfg))
	if err != nil {
		return model.DerivedState{}, df, fmt.Errorf("parsing %s: %w", df.Path, err)
	}
	return d, df, nil
}

// loadHistory loads a snapshot per payload in the data dir. Uses the SQLite
// cache when available for fast subsequent runs.
func loadHistory() (*pipeline.LoadResult, error) {
	cfg := loadConfig()
	dir := dataDir(cfg)
	opts := pipelineOptions(cfg)

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", dir)
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%25 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing %s", cli.RenderProgressBar(current, total, 20))
		}
	}

	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			warnf("cache unavailable, doing full parse")
		} else {
			defer func() { _ = cache.Close() }()

			cr, err := pipeline.LoadWithCache(dir, opts, cache, progressFn)
			if err == nil {
				if !flagQuiet && cr.TotalFiles > 0 {
					fmt.Fprintf(os.Stderr, "\r  %s cached + %d reparsed, %d pruned    \n",
						cli.FormatCount(cr.CacheHits), cr.Reparsed, cr.Pruned)
				}
				return &cr.LoadResult, nil
			}
			warnf("cache error, falling back to full parse: %v", err)
		}
	}

	result, err := pipeline.Load(dir, opts, progressFn)
	if err != nil {
		return nil, err
	}
	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s payloads    \n", cli.FormatCount(result.ParsedFiles))
	}
	return result, nil
}

func warnf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}

func statementLabel(d model.DerivedState, df source.DiscoveredFile) string {
	if d.StatementID != "" {
		return d.StatementID
	}
	return df.Name
}

func analyzedTime(df source.DiscoveredFile) time.Time {
	if df.ModTimeNs == 0 {
		return time.Time{}
	}
	return time.Unix(0, df.ModTimeNs)
}
