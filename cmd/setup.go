package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/cardperks/internal/config"
	"github.com/theirongolddev/cardperks/internal/model"
	"github.com/theirongolddev/cardperks/internal/pipeline"
	"github.com/theirongolddev/cardperks/internal/source"
	"github.com/theirongolddev/cardperks/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, _ := loadConfig()

	found := 0
	src := pipeline.SourcesFrom(cfg)
	for _, kind := range model.Kinds {
		if files, err := source.ScanDir(src.Dir(kind), kind); err == nil {
			found += len(files)
		}
	}

	vals := tui.SetupValuesFrom(cfg)
	if err := tui.NewSetupForm(found, &vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	if _, err := tui.SaveSetup(vals); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `cardperks setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
