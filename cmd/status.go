package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/footprint/internal/cli"
	"github.com/theirongolddev/footprint/internal/config"
	"github.com/theirongolddev/footprint/internal/pipeline"
	"github.com/theirongolddev/footprint/internal/remote"
	"github.com/theirongolddev/footprint/internal/source"
	"github.com/theirongolddev/footprint/internal/store"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show data dir, history cache and backend status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	dir := dataDir(cfg)

	fmt.Println()
	fmt.Println(cli.RenderTitle("FOOTPRINT STATUS"))
	fmt.Println()

	rows := [][]string{{"Data dir", dir}}

	files, err := source.ScanDir(dir)
	switch {
	case err != nil:
		rows = append(rows, []string{"Payloads", cli.Warn(err.Error())})
	default:
		rows = append(rows, []string{"Payloads", cli.FormatCount(len(files))})
		if newest, ok := source.Newest(files); ok {
			rows = append(rows, []string{"Newest", fmt.Sprintf("%s (%s)", newest.Name, cli.FormatAgo(analyzedTime(newest)))})
		}
	}

	rows = append(rows, []string{"---"}, []string{"History cache", pipeline.CachePath()})
	if cache, err := store.Open(pipeline.CachePath()); err != nil {
		rows = append(rows, []string{"Snapshots", cli.Warn("unavailable")})
	} else {
		n, err := cache.SnapshotCount()
		_ = cache.Close()
		if err != nil {
			rows = append(rows, []string{"Snapshots", cli.Warn(err.Error())})
		} else {
			rows = append(rows, []string{"Snapshots", cli.FormatCount(n)})
		}
	}

	rows = append(rows, []string{"---"}, []string{"Backend", backendStatus(cfg)})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Item", "Value"},
		Rows:     rows,
		TextCols: []int{1},
	}))
	return nil
}

func backendStatus(cfg config.Config) string {
	client, err := remote.NewClient(config.RemoteBaseURL(cfg), config.RemoteToken(cfg))
	if errors.Is(err, remote.ErrNoBaseURL) {
		return cli.Muted("not configured")
	}
	if err != nil {
		return cli.Warn(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return cli.Warn(err.Error())
	}
	return config.RemoteBaseURL(cfg) + " (ok)"
}
