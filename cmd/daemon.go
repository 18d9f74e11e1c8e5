package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/theirongolddev/cardperks/internal/cli"
	"github.com/theirongolddev/cardperks/internal/config"
	"github.com/theirongolddev/cardperks/internal/daemon"
	"github.com/theirongolddev/cardperks/internal/logging"
	"github.com/theirongolddev/cardperks/internal/model"
	"github.com/theirongolddev/cardperks/internal/summary"

	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr     string
	flagDaemonInterval time.Duration
	flagDaemonDetach   bool
	flagDaemonPIDFile  string
	flagDaemonLogFile  string
	flagDaemonEvents   int
	flagDaemonChild    bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Keep a summary warm and serve it over HTTP, SSE and /metrics",
	RunE:  runDaemon,
}

func init() {
	stateDir := config.StateDir()
	pf := daemonCmd.PersistentFlags()
	pf.StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default [daemon] addr)")
	pf.DurationVar(&flagDaemonInterval, "interval", 0, "Reload interval (default [daemon] interval_sec)")
	pf.StringVar(&flagDaemonPIDFile, "pid-file", filepath.Join(stateDir, "cardperksd.pid"), "PID file path")
	pf.StringVar(&flagDaemonLogFile, "log-file", filepath.Join(stateDir, "cardperksd.log"), "Log file for --detach")
	pf.IntVar(&flagDaemonEvents, "events-buffer", 200, "Events kept for /v1/events")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run in the background")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(
		&cobra.Command{Use: "status", Short: "Show daemon process and API status", RunE: runDaemonStatus},
		&cobra.Command{Use: "stop", Short: "Stop the running daemon", RunE: runDaemonStop},
	)
	rootCmd.AddCommand(daemonCmd)
}

func pidfile() daemon.Pidfile {
	return daemon.Pidfile{Path: flagDaemonPIDFile}
}

// daemonSettings resolves the listen address and interval, with flags
// taking precedence over [daemon] in config.toml.
func daemonSettings() (config.Config, string, time.Duration, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, "", 0, err
	}
	addr := flagDaemonAddr
	if addr == "" {
		addr = cfg.Daemon.Addr
	}
	interval := flagDaemonInterval
	if interval == 0 {
		interval = time.Duration(cfg.Daemon.IntervalSec) * time.Second
	}
	return cfg, addr, interval, nil
}

func runDaemon(_ *cobra.Command, _ []string) error {
	switch {
	case flagDaemonDetach && flagDaemonChild:
		return errors.New("--detach and --child are exclusive")
	case flagDaemonDetach:
		return startDetached()
	default:
		return runForeground()
	}
}

func startDetached() error {
	_, addr, _, err := daemonSettings()
	if err != nil {
		return err
	}
	if err := pidfile().EnsureFree(); err != nil {
		return err
	}
	pid, err := daemon.Detach(daemon.ChildArgs(os.Args[1:]), flagDaemonLogFile)
	if err != nil {
		return err
	}
	fmt.Print(cli.RenderKV([][2]string{
		{"Started", fmt.Sprintf("pid %d", pid)},
		{"PID file", flagDaemonPIDFile},
		{"API", "http://" + addr + "/v1/status"},
		{"Log", flagDaemonLogFile},
	}))
	return nil
}

func runForeground() error {
	cfg, addr, interval, err := daemonSettings()
	if err != nil {
		return err
	}
	pf := pidfile()
	if err := pf.Claim(daemon.Runtime{
		PID:       os.Getpid(),
		Addr:      addr,
		StartedAt: time.Now(),
		DataDir:   cfg.General.DataDir,
	}); err != nil {
		return err
	}
	defer pf.Release()

	fmt.Printf("  cardperks daemon listening on http://%s\n", addr)
	fmt.Printf("  Reloading every %s from %s\n", interval, cfg.General.DataDir)
	fmt.Printf("  Stop with: cardperks daemon stop --pid-file %s\n", flagDaemonPIDFile)

	// Reloads log JSON lines; CSV progress output is suppressed.
	level := cfg.General.LogLevel
	if flagVerbose {
		level = "debug"
	} else if level == "" {
		level = "info"
	}
	logFormat = logging.JSON
	logging.Setup(os.Stderr, logFormat, level)
	flagQuiet = true

	svc := daemon.New(daemon.Config{
		DataDir:      cfg.General.DataDir,
		Interval:     interval,
		Addr:         addr,
		EventsBuffer: flagDaemonEvents,
		Load:         loadReport,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// loadReport reopens config, state and CSVs so edits made by other
// cardperks commands show up on the next poll.
func loadReport(ctx context.Context) (summary.Report, error) {
	if err := ctx.Err(); err != nil {
		return summary.Report{}, err
	}
	a, err := openApp(true)
	if err != nil {
		return summary.Report{}, err
	}
	defer a.Close()
	return a.svc.Report(model.Day(time.Now())), nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	rt, err := pidfile().Runtime()
	if err != nil {
		fmt.Println("  Daemon: not running")
		return nil
	}
	if !daemon.ProcessAlive(rt.PID) {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", rt.PID)
		return nil
	}

	addr := rt.Addr
	if addr == "" {
		if _, addr, _, err = daemonSettings(); err != nil {
			return err
		}
	}
	rows := [][2]string{
		{"PID", fmt.Sprint(rt.PID)},
		{"Address", "http://" + addr},
	}
	if !rt.StartedAt.IsZero() {
		rows = append(rows, [2]string{"Started", rt.StartedAt.Local().Format(time.RFC3339)})
	}

	st, err := daemon.NewClient(addr).Status(context.Background())
	if err != nil {
		rows = append(rows, [2]string{"API", cli.Warn("unreachable: " + err.Error())})
		fmt.Print(cli.RenderKV(rows))
		return nil
	}

	lastPoll := "pending"
	if !st.LastPollAt.IsZero() {
		lastPoll = st.LastPollAt.Local().Format(time.RFC3339)
	}
	rows = append(rows,
		[2]string{"Last poll", lastPoll},
		[2]string{"Polls", fmt.Sprint(st.PollCount)},
		[2]string{"Nights", fmt.Sprintf("%d posted, %d projected", st.Summary.NightsPosted, st.Summary.NightsTotal)},
		[2]string{"Benefits", cli.FormatDollars(st.Summary.BenefitsPosted) + " of " + cli.FormatDollars(st.Summary.BenefitsPotential)},
		[2]string{"Subscribers", fmt.Sprint(st.SubscriberCount)},
	)
	if st.LastError != "" {
		rows = append(rows, [2]string{"Last error", cli.Error(st.LastError)})
	}
	fmt.Print(cli.RenderKV(rows))
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pid, err := pidfile().Stop(8 * time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("  Stopped daemon (pid %d)\n", pid)
	return nil
}
