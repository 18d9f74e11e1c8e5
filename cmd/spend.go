package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/cardperks/internal/cli"
	"github.com/theirongolddev/cardperks/internal/model"
	"github.com/theirongolddev/cardperks/internal/pipeline"

	"github.com/spf13/cobra"
)

var spendCmd = &cobra.Command{
	Use:   "spend",
	Short: "Spend toward the next bonus-night tier, by card and month",
	RunE:  runSpend,
}

func init() {
	spendCmd.Flags().StringVar(&flagAsOf, "as-of", "", "Reference date (YYYY-MM-DD), default today")
	rootCmd.AddCommand(spendCmd)
}

func runSpend(_ *cobra.Command, _ []string) error {
	ref, err := refDate()
	if err != nil {
		return err
	}
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	if flagJSON {
		out := map[model.CardKind]model.SpendingSummary{}
		for _, k := range model.Kinds {
			out[k] = a.svc.Spending(k, ref)
		}
		return printJSON(out)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CARD SPEND  %d", ref.Year())))
	fmt.Println()

	for _, k := range model.Kinds {
		s := a.svc.Spending(k, ref)
		if !s.HasData {
			fmt.Printf("  %s\n\n", cli.Muted(fmt.Sprintf("No %s card transactions.", k)))
			continue
		}

		rows := [][]string{}
		if k == model.Personal {
			rows = append(rows, []string{"All-time spend", cli.Money(cli.FormatMoney(s.TotalSpending))})
		}
		rows = append(rows,
			[]string{"Year-to-date spend", cli.Money(cli.FormatMoney(s.YTDSpending))},
			[]string{"Current tier", strconv.Itoa(s.CurrentTier)},
			[]string{"Tier range", cli.FormatMoney(s.CurrentThreshold) + " - " + cli.FormatMoney(s.NextThreshold)},
			[]string{"To next bonus", cli.FormatMoney(s.SpendToNextBonus)},
		)
		if k == model.Personal && a.svc.Settings().Rules.Personal.Certificate.IsPositive() {
			rows = append(rows, []string{"To free-night certificate", cli.FormatMoney(s.SpendToCertificate)})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   titleCase(string(k)) + " card",
			Headers: []string{"Metric", "Value"},
			Rows:    rows,
		}))
		fmt.Println()

		renderMonths(a.svc.Ledger(k), ref.Year())
	}
	return nil
}

func renderMonths(l model.Ledger, year int) {
	months := pipeline.AggregateMonths(l, year)
	values := make([]float64, len(months))
	peak := 0.0
	for i, m := range months {
		values[i] = m.Spend.InexactFloat64()
		peak = max(peak, values[i])
	}
	fmt.Printf("  Monthly  %s\n", cli.Money(cli.RenderSparkline(values)))
	for i, m := range months {
		if m.Count == 0 {
			continue
		}
		label := fmt.Sprintf("%s %12s %4s", m.Month.String()[:3], cli.FormatMoney(m.Spend), cli.FormatNights(m.Nights))
		fmt.Println(cli.RenderHorizontalBar(label, values[i], peak, 24))
	}
	fmt.Println()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
