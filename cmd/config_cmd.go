package cmd

import (
	"fmt"

	"github.com/theirongolddev/cardperks/internal/cli"
	"github.com/theirongolddev/cardperks/internal/config"

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
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data directory:    %s\n", cfg.General.DataDir)
	fmt.Printf("    Benefits file:     %s\n", config.BenefitsPath(cfg))
	fmt.Printf("    Database:          %s\n", config.DatabasePath(cfg))
	fmt.Printf("    Year start nights: %d\n", cfg.General.YearStartNights)
	fmt.Printf("    Elite goal:        %d\n", cfg.General.EliteGoal)
	if cfg.General.LogLevel != "" {
		fmt.Printf("    Log level:         %s\n", cfg.General.LogLevel)
	}
	fmt.Println()

	fmt.Println("  [Sources]")
	fmt.Printf("    Personal: %s\n", config.SourceDir(cfg, cfg.Sources.PersonalDir))
	fmt.Printf("    Business: %s\n", config.SourceDir(cfg, cfg.Sources.BusinessDir))
	fmt.Println()

	fmt.Println("  [Rules]")
	fmt.Printf("    Statement close day: %d\n", config.StatementCloseDay(cfg))
	p := config.PersonalRules(cfg)
	fmt.Printf("    Personal: %d nights per %s, max %d", p.NightsPerTier, cli.FormatMoney(p.Step), p.MaxNights)
	if p.Certificate.IsPositive() {
		fmt.Printf(", certificate at %s", cli.FormatMoney(p.Certificate))
	}
	fmt.Println()
	b := config.BusinessRules(cfg)
	fmt.Printf("    Business: %d nights per %s per year, max %d\n", b.NightsPerTier, cli.FormatMoney(b.Step), b.MaxNights)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh: %v (every %ds)\n", cfg.TUI.AutoRefresh, cfg.TUI.RefreshIntervalSec)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %ds\n", cfg.Daemon.IntervalSec)
	fmt.Println()

	fmt.Println("  Run `cardperks setup` to reconfigure.")
	return nil
}
