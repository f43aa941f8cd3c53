package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/theirongolddev/footprint/internal/amqp"
	"github.com/theirongolddev/footprint/internal/cli"
	"github.com/theirongolddev/footprint/internal/config"
	"github.com/theirongolddev/footprint/internal/daemon"
	"github.com/theirongolddev/footprint/internal/log"
	"github.com/theirongolddev/footprint/internal/pipeline"
	"github.com/theirongolddev/footprint/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
	flagDaemonLogLevel     string
	flagDaemonNoPublish    bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Watch the payload and serve derived state over HTTP/SSE",
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	// RunE is assigned here rather than in the literal to avoid an
	// initialization cycle (runDaemon → daemonAddr → daemonCmd).
	daemonCmd.RunE = runDaemon
	defaults := config.DefaultConfig().Daemon
	defaultPID := filepath.Join(pipeline.CacheDir(), "footprintd.pid")
	defaultLog := filepath.Join(pipeline.CacheDir(), "footprintd.log")

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", defaults.Addr, "HTTP listen address")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", time.Duration(defaults.IntervalSec)*time.Second, "Polling interval")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Log file path for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", defaults.EventsBuffer, "Max in-memory events retained")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().StringVar(&flagDaemonLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	daemonCmd.Flags().BoolVar(&flagDaemonNoPublish, "no-publish", false, "Do not publish events to AMQP even if configured")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}

	if flagDaemonDetach {
		return startDaemonDetached()
	}

	return runDaemonForeground()
}

func pidFiles() daemonFiles {
	return daemonFiles{pidPath: flagDaemonPIDFile}
}

func startDaemonDetached() error {
	files := pidFiles()
	if err := files.EnsureFree(); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, childArgs(os.Args[1:])...) //nolint:gosec // re-runs the current invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  Watching: %s\n", watchTarget(dataDir(loadConfig())))
	fmt.Printf("  API: http://%s/v1/status\n", flagDaemonAddr)
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

func watchTarget(dir string) string {
	if flagFile != "" {
		return flagFile
	}
	return "newest payload in " + dir
}

func runDaemonForeground() error {
	files := pidFiles()
	pid := os.Getpid()
	if err := files.Claim(pid); err != nil {
		return err
	}
	defer files.Release()

	cfg := loadConfig()
	dir := dataDir(cfg)
	addr := daemonAddr(cfg)
	interval := daemonInterval(cfg)

	_ = files.SaveState(daemonRuntimeState{
		PID:       pid,
		Addr:      addr,
		StartedAt: time.Now(),
		DataDir:   dir,
		File:      flagFile,
	})

	logger := log.New(log.Config{
		Level:     log.ParseLevel(flagDaemonLogLevel),
		Component: "daemon",
		Output:    os.Stderr,
	})

	svcCfg := daemon.Config{
		PayloadPath:      flagFile,
		DataDir:          dir,
		Interval:         interval,
		Addr:             addr,
		EventsBuffer:     daemonEventsBuffer(cfg),
		TopSubcategories: topN(cfg),
		Options:          pipelineOptions(cfg),
		Logger:           logger,
	}

	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			logger.Warn("history cache unavailable", "error", err)
		} else {
			defer func() { _ = cache.Close() }()
			svcCfg.History = cache
		}
	}

	if url := config.AMQPURL(cfg); url != "" && !flagDaemonNoPublish {
		pub, err := amqp.NewClient(url, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey, logger.WithComponent("amqp"))
		if err != nil {
			return fmt.Errorf("connect amqp: %w", err)
		}
		defer func() { _ = pub.Close() }()
		svcCfg.Publisher = pub
	}

	fmt.Printf("  footprint daemon listening on http://%s\n", addr)
	fmt.Printf("  Polling every %s: %s\n", interval, watchTarget(dir))
	fmt.Printf("  Stop with: footprint daemon stop --pid-file %s\n", flagDaemonPIDFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := daemon.New(svcCfg).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// daemonAddr, daemonInterval and daemonEventsBuffer prefer explicit flags,
// then the [daemon] config section.
func daemonAddr(cfg config.Config) string {
	if daemonCmd.PersistentFlags().Changed("addr") || cfg.Daemon.Addr == "" {
		return flagDaemonAddr
	}
	return cfg.Daemon.Addr
}

func daemonInterval(cfg config.Config) time.Duration {
	if daemonCmd.PersistentFlags().Changed("interval") || cfg.Daemon.IntervalSec <= 0 {
		return flagDaemonInterval
	}
	return time.Duration(cfg.Daemon.IntervalSec) * time.Second
}

func daemonEventsBuffer(cfg config.Config) int {
	if daemonCmd.PersistentFlags().Changed("events-buffer") || cfg.Daemon.EventsBuffer <= 0 {
		return flagDaemonEventsBuffer
	}
	return cfg.Daemon.EventsBuffer
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	files := pidFiles()
	pid, alive := files.Running()
	switch {
	case pid == 0:
		fmt.Println("  Daemon: not running")
		return nil
	case !alive:
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := flagDaemonAddr
	if st, err := files.State(); err == nil && st.Addr != "" {
		addr = st.Addr
	}
	fmt.Printf("  Daemon PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := fetchDaemonStatus(ctx, addr)
	if err != nil {
		fmt.Printf("  API status: %v\n", err)
		return nil
	}
	fmt.Println()
	fmt.Print(renderDaemonStatus(st))
	return nil
}

func fetchDaemonStatus(ctx context.Context, addr string) (daemon.Status, error) {
	var st daemon.Status
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/status", nil)
	if err != nil {
		return st, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return st, fmt.Errorf("unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response: %w", err)
	}
	return st, nil
}

// renderDaemonStatus shows the daemon's poll counters and held snapshot.
func renderDaemonStatus(st daemon.Status) string {
	lastPoll := "pending"
	if !st.LastPollAt.IsZero() {
		lastPoll = cli.FormatAgo(st.LastPollAt)
	}
	rows := [][]string{
		{"Last poll", lastPoll},
		{"Polls", cli.FormatCount(int(st.PollCount))},
		{"Recomputes", cli.FormatCount(int(st.RecomputeCount))},
		{"Subscribers", cli.FormatCount(st.SubscriberCount)},
		{"---"},
	}
	if st.HasState {
		sum := st.Summary
		rows = append(rows,
			[]string{"Statement", sum.StatementID},
			[]string{"Actual", cli.FormatKg(sum.Actual) + " of " + cli.FormatKg(sum.Allotted)},
			[]string{"After optimization", cli.FormatKg(sum.AfterActual)},
			[]string{"Offset", cli.FormatKg(sum.OffsetKg) + ", " + cli.FormatUSD(sum.CreditCostUSD)},
		)
	} else {
		rows = append(rows, []string{"Statement", "none loaded"})
	}
	if st.LastError != "" {
		rows = append(rows, []string{"Last error", cli.Truncate(st.LastError, 60)})
	}
	return cli.RenderTable(cli.Table{
		Title:    "Daemon",
		Headers:  []string{"Field", "Value"},
		Rows:     rows,
		TextCols: []int{1},
	})
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	files := pidFiles()
	pid, alive := files.Running()
	if pid == 0 {
		return errors.New("daemon is not running")
	}
	if !alive {
		files.Release()
		fmt.Printf("  Removed stale pid file (pid %d)\n", pid)
		return nil
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			files.Release()
			fmt.Printf("  Stopped daemon (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}
	return fmt.Errorf("daemon (pid %d) did not exit in time", pid)
}
