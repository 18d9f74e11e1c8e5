package cmd

import (
	"fmt"

	"github.com/theirongolddev/cardperks/internal/cli"
	"github.com/theirongolddev/cardperks/internal/config"
	"github.com/theirongolddev/cardperks/internal/model"
	"github.com/theirongolddev/cardperks/internal/pipeline"
	"github.com/theirongolddev/cardperks/internal/source"

	"github.com/spf13/cobra"
)

var flagClearCache bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database, source folder and benefits file status",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&flagClearCache, "clear-cache", false, "Drop cached transactions so the next run reparses every CSV")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if flagClearCache {
		if err := a.store.ClearCache(); err != nil {
			return fmt.Errorf("clearing transaction cache: %w", err)
		}
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CARDPERKS STATUS"))
	fmt.Println()
	if flagClearCache {
		fmt.Printf("  %s\n\n", cli.Warn("Transaction cache cleared"))
	}

	version, dirty, err := a.store.SchemaVersion()
	schema := fmt.Sprintf("v%d", version)
	switch {
	case err != nil:
		schema = cli.Error(err.Error())
	case dirty:
		schema += " " + cli.Warn("(dirty)")
	}

	states, err := a.store.BenefitStateCount()
	if err != nil {
		return err
	}
	txns, err := a.store.TransactionCount()
	if err != nil {
		return err
	}
	tracked, err := a.store.GetTrackedFiles()
	if err != nil {
		return err
	}

	fmt.Print(cli.RenderKV([][2]string{
		{"Database", a.store.Path()},
		{"Schema", schema},
		{"Benefit states", cli.FormatNumber(int64(states))},
		{"Stays", cli.FormatNumber(int64(len(a.stays.Stays())))},
		{"GOH nights", cli.FormatNumber(int64(len(a.stays.GOHNights())))},
		{"Cached files", cli.FormatNumber(int64(len(tracked)))},
		{"Cached transactions", cli.FormatNumber(int64(txns))},
	}))
	fmt.Println()

	src := pipeline.SourcesFrom(a.cfg)
	rows := make([][]string, 0, len(model.Kinds))
	for _, kind := range model.Kinds {
		dir := src.Dir(kind)
		state := cli.Warn("missing")
		files := "-"
		if source.Exists(dir) {
			state = "ok"
			found, err := source.ScanDir(dir, kind)
			if err != nil {
				state = cli.Error(err.Error())
			} else {
				files = cli.FormatNumber(int64(len(found)))
			}
		}
		rows = append(rows, []string{titleCase(string(kind)), dir, state, files})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Sources",
		Headers:  []string{"Card", "Folder", "Status", "CSVs"},
		Rows:     rows,
		LeftCols: 2,
	}))
	fmt.Println()

	bc := a.calc.Config()
	benefitCount := 0
	for _, key := range bc.Keys() {
		card, _ := bc.Card(key)
		benefitCount += len(card.Benefits)
	}
	fmt.Print(cli.RenderKV([][2]string{
		{"Benefits file", a.benefitsPath()},
		{"Card years", cli.FormatNumber(int64(bc.Len()))},
		{"Card groups", cli.FormatNumber(int64(len(a.calc.GroupCards())))},
		{"Benefits", cli.FormatNumber(int64(benefitCount))},
	}))
	if bc.Len() == 0 {
		fmt.Printf("\n  %s\n", cli.Warn("No cards configured. Check "+config.BenefitsPath(a.cfg)))
	}
	fmt.Println()
	return nil
}
