package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/theirongolddev/footprint/internal/cli"
	"github.com/theirongolddev/footprint/internal/config"
	"github.com/theirongolddev/footprint/internal/remote"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <statement-id>",
	Short: "Download an analysis payload from the backend into the data dir",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(_ *cobra.Command, args []string) error {
	cfg := loadConfig()

	client, err := remote.NewClient(config.RemoteBaseURL(cfg), config.RemoteToken(cfg))
	if err != nil {
		if errors.Is(err, remote.ErrNoBaseURL) {
			return fmt.Errorf("%w: set %s or [remote] base_url in %s", err, config.EnvAPIURL, config.Path())
		}
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fetched, err := client.FetchAnalysis(ctx, args[0])
	switch {
	case errors.Is(err, remote.ErrUnauthorized):
		return fmt.Errorf("%w: check %s", err, config.EnvAPIToken)
	case err != nil:
		return err
	}

	dir := dataDir(cfg)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	name := fetched.Payload.StatementID
	if name == "" {
		name = args[0]
	}
	path := filepath.Join(dir, filepath.Base(name)+".json")
	if err := os.WriteFile(path, fetched.Raw, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Printf("  Saved %s (%s)\n", path, cli.FormatBytes(int64(len(fetched.Raw))))
	fmt.Printf("  %d categories, %d subcategories\n",
		len(fetched.Payload.Summary), fetched.Payload.Summary.Leaves())
	return nil
}
