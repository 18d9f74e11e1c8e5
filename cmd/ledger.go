package cmd

import (
	"fmt"

	"github.com/theirongolddev/cardperks/internal/cli"
	"github.com/theirongolddev/cardperks/internal/model"
	"github.com/theirongolddev/cardperks/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagLedgerCard   string
	flagLedgerYear   int
	flagLedgerSearch string
	flagLedgerEvents bool
	flagLedgerLimit  int
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Processed card transactions with running totals and bonus events",
	RunE:  runLedger,
}

func init() {
	ledgerCmd.Flags().StringVarP(&flagLedgerCard, "card", "c", "personal", "Card: personal or business")
	ledgerCmd.Flags().IntVarP(&flagLedgerYear, "year", "y", 0, "Post-date year (0 = all)")
	ledgerCmd.Flags().StringVarP(&flagLedgerSearch, "search", "s", "", "Filter by description (substring match)")
	ledgerCmd.Flags().BoolVarP(&flagLedgerEvents, "events", "e", false, "Only rows that changed bonus nights")
	ledgerCmd.Flags().IntVarP(&flagLedgerLimit, "limit", "l", 50, "Show the most recent N rows (0 = all)")
	rootCmd.AddCommand(ledgerCmd)
}

func parseKind(s string) (model.CardKind, error) {
	switch model.CardKind(s) {
	case model.Personal, model.Business:
		return model.CardKind(s), nil
	}
	return "", fmt.Errorf("unknown card %q (want personal or business)", s)
}

func runLedger(_ *cobra.Command, _ []string) error {
	kind, err := parseKind(flagLedgerCard)
	if err != nil {
		return err
	}
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	l := a.svc.Ledger(kind)
	l = pipeline.FilterByYear(l, flagLedgerYear)
	l = pipeline.FilterByDescription(l, flagLedgerSearch)
	if flagLedgerEvents {
		l = pipeline.NightEvents(l)
	}

	entries := l.Entries
	if flagLedgerLimit > 0 && len(entries) > flagLedgerLimit {
		entries = entries[len(entries)-flagLedgerLimit:]
	}

	if flagJSON {
		return printJSON(entries)
	}

	if len(entries) == 0 {
		fmt.Println("\n  No transactions match.")
		return nil
	}

	running := "Cumulative"
	if kind == model.Business {
		running = "Year total"
	}

	rows := make([][]string, 0, len(entries))
	nights := 0
	for _, e := range entries {
		total := e.Cumulative
		if kind == model.Business {
			total = e.YearCumulative
		}
		nights += e.Nights
		rows = append(rows, []string{
			cli.FormatShortDate(e.TransactionDate),
			cli.FormatShortDate(e.PostDate),
			cli.Truncate(e.Description, 32),
			cli.FormatMoney(e.Spend),
			cli.FormatMoney(total),
			cli.Nights(cli.FormatNights(e.Nights)),
		})
	}
	rows = append(rows, []string{"---"}, []string{"", "", fmt.Sprintf("%d rows", len(entries)), "", "", cli.Nights(cli.FormatNights(nights))})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    titleCase(string(kind)) + " ledger",
		Headers:  []string{"Date", "Posted", "Description", "Spend", running, "Nights"},
		Rows:     rows,
		LeftCols: 3,
	}))
	return nil
}
