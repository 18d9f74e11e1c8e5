package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/cardperks/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagImportBenefits string
	flagImportStays    string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import benefits_state.json and stays_state.json into the state database",
	Long: "Import legacy JSON state files. By default both are looked up in the data directory; " +
		"a missing file is skipped and a corrupt one is reported.",
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&flagImportBenefits, "benefits-state", "", "Path to benefits_state.json")
	importCmd.Flags().StringVar(&flagImportStays, "stays-state", "", "Path to stays_state.json")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, _ []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	benefitsPath := flagImportBenefits
	if benefitsPath == "" {
		benefitsPath = filepath.Join(a.cfg.General.DataDir, "benefits_state.json")
	}
	staysPath := flagImportStays
	if staysPath == "" {
		staysPath = filepath.Join(a.cfg.General.DataDir, "stays_state.json")
	}

	imported := 0
	for _, job := range []struct {
		path string
		run  func(*os.File) (store.ImportResult, error)
	}{
		{benefitsPath, func(f *os.File) (store.ImportResult, error) { return a.store.ImportBenefitsJSON(f) }},
		{staysPath, func(f *os.File) (store.ImportResult, error) { return a.store.ImportStaysJSON(f) }},
	} {
		f, err := os.Open(job.path) //nolint:gosec // path is configured by the local user
		if err != nil {
			if os.IsNotExist(err) {
				log.Debug().Str("path", job.path).Msg("legacy state file not found")
				continue
			}
			return err
		}
		res, err := job.run(f)
		_ = f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", job.path, err)
			continue
		}
		imported++
		fmt.Printf("  %s: %d benefits, %d stays, %d GOH nights", job.path, res.Benefits, res.Stays, res.GOH)
		if res.Existing > 0 {
			fmt.Printf(", %d already imported", res.Existing)
		}
		if res.Skipped > 0 {
			fmt.Printf(", %d skipped", res.Skipped)
		}
		fmt.Println()
	}

	if imported == 0 {
		fmt.Println("  Nothing imported.")
		return nil
	}
	if err := a.calc.Reload(); err != nil {
		return err
	}
	return a.stays.Reload()
}
