// Package cmd implements the cardperks CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/cardperks/internal/benefits"
	"github.com/theirongolddev/cardperks/internal/cli"
	"github.com/theirongolddev/cardperks/internal/config"
	"github.com/theirongolddev/cardperks/internal/logging"
	"github.com/theirongolddev/cardperks/internal/pipeline"
	"github.com/theirongolddev/cardperks/internal/stays"
	"github.com/theirongolddev/cardperks/internal/store"
	"github.com/theirongolddev/cardperks/internal/summary"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagDataDir  string
	flagBenefits string
	flagDB       string
	flagNoCache  bool
	flagQuiet    bool
	flagVerbose  bool
	flagJSON     bool

	// logFormat is switched to JSON by the daemon before its first reload.
	logFormat = logging.Console
)

var rootCmd = &cobra.Command{
	Use:               "cardperks",
	Short:             "Hotel elite nights and credit card benefit tracker",
	Long:              "Track elite-night progress from co-branded card spend and stays, and the value of card benefits against their annual fees.",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	RunE:              runNights,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory holding transactions/ and the benefits file")
	rootCmd.PersistentFlags().StringVar(&flagBenefits, "benefits", "", "Benefits YAML file")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "State database path")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the transaction cache, reparse every CSV")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
}

func setupLogging(_ *cobra.Command, _ []string) error {
	level := os.Getenv("CARDPERKS_LOG_LEVEL")
	if flagVerbose {
		level = "debug"
	}
	logging.Setup(os.Stderr, logFormat, level)
	return nil
}

// loadConfig reads config.toml and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagDataDir != "" {
		cfg.General.DataDir = flagDataDir
	}
	if flagBenefits != "" {
		cfg.General.BenefitsFile = flagBenefits
	}
	if flagDB != "" {
		cfg.General.Database = flagDB
	}
	if !flagVerbose && cfg.General.LogLevel != "" {
		logging.Setup(os.Stderr, logFormat, cfg.General.LogLevel)
	}
	return cfg, nil
}

// app bundles everything a command needs. Close releases the database.
type app struct {
	cfg   config.Config
	store *store.Store
	calc  *benefits.Calculator
	stays *stays.Manager
	svc   *summary.Service
	load  *pipeline.LoadResult
}

func (a *app) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// openApp opens the state database and benefits config. When withLedgers
// is set the card CSVs are loaded too.
func openApp(withLedgers bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(config.DatabasePath(cfg))
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, store: st}

	bc, err := config.LoadBenefits(config.BenefitsPath(cfg))
	if err != nil {
		a.Close()
		return nil, err
	}
	if a.calc, err = benefits.New(bc, st); err != nil {
		a.Close()
		return nil, err
	}
	if a.stays, err = stays.New(st); err != nil {
		a.Close()
		return nil, err
	}
	a.svc = summary.New(summary.SettingsFrom(cfg), a.calc, a.stays)

	if withLedgers {
		if a.load, err = loadData(cfg, st); err != nil {
			a.Close()
			return nil, err
		}
		a.svc.SetLedgers(a.load.Personal, a.load.Business)
	}
	return a, nil
}

// loadData is the shared CSV loading path. It uses the SQLite cache unless
// --no-cache is set, falling back to a full parse when the cache fails.
func loadData(cfg config.Config, cache *store.Store) (*pipeline.LoadResult, error) {
	src := pipeline.SourcesFrom(cfg)
	rules := pipeline.RulesFrom(cfg)
	ctx := context.Background()

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning transactions...\n")
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%10 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	if !flagNoCache {
		cr, err := pipeline.LoadWithCache(ctx, src, rules, cache, progressFn)
		if err == nil {
			if !flagQuiet && cr.TotalFiles > 0 {
				if cr.Reparsed == 0 {
					fmt.Fprintf(os.Stderr, "\r  Loaded %s transactions from cache (%d files)    \n",
						cli.FormatNumber(int64(cr.Transactions)), cr.TotalFiles)
				} else {
					fmt.Fprintf(os.Stderr, "\r  %d cached + %d reparsed files (%s transactions)    \n",
						cr.CacheHits, cr.Reparsed, cli.FormatNumber(int64(cr.Transactions)))
				}
			}
			reportLoadProblems(&cr.LoadResult)
			return &cr.LoadResult, nil
		}
		log.Warn().Err(err).Msg("transaction cache failed, doing full parse")
	}

	result, err := pipeline.Load(ctx, src, rules, progressFn)
	if err != nil {
		return nil, err
	}
	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s transactions across %d files    \n",
			cli.FormatNumber(int64(result.Transactions)), result.ParsedFiles)
	}
	reportLoadProblems(result)
	return result, nil
}

func reportLoadProblems(r *pipeline.LoadResult) {
	if flagQuiet {
		return
	}
	if r.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %s\n", cli.Warn(fmt.Sprintf("%d files could not be parsed", r.FileErrors)))
	}
	if r.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %s\n", cli.Warn(fmt.Sprintf("%d rows skipped (bad date or amount)", r.ParseErrors)))
	}
}

// parseDateArg accepts YYYY-MM-DD or MM/DD/YYYY.
func parseDateArg(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
}

func (a *app) benefitsPath() string {
	return config.BenefitsPath(a.cfg)
}
