package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/cardperks/internal/cli"
	"github.com/theirongolddev/cardperks/internal/model"

	"github.com/spf13/cobra"
)

var flagCardsCalendar bool

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Benefit value against annual fee for every card",
	RunE:  runCards,
}

func init() {
	cardsCmd.Flags().BoolVar(&flagCardsCalendar, "calendar", false, "Total the current calendar year instead of each card's anniversary year")
	rootCmd.AddCommand(cardsCmd)
}

func runCards(_ *cobra.Command, _ []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.calc.Config().Len() == 0 {
		fmt.Printf("\n  No cards configured. Add them to %s\n", a.benefitsPath())
		return nil
	}

	if flagCardsCalendar {
		sums := a.calc.AllCardsSummary()
		if flagJSON {
			return printJSON(sums)
		}
		renderCardSummaries(sums, a.calc.Today().Year())
		return nil
	}

	reports := a.svc.CardReports()
	if flagJSON {
		return printJSON(reports)
	}

	var rows [][]string
	var fees, posted, potential float64
	for _, r := range reports {
		fees += r.Fee
		posted += r.Summary.TotalPosted
		potential += r.Summary.TotalPotential
		rows = append(rows, []string{
			r.Name,
			strconv.Itoa(r.Year),
			cli.FormatDollars(r.Fee),
			cli.Money(cli.FormatDollars(r.Summary.TotalPosted)),
			cli.FormatDollars(r.Summary.TotalPotential),
			styleNet(r.Summary.NetValuePosted),
			cli.FormatPercent(r.Summary.ROIPosted),
		})
	}
	if len(rows) > 1 {
		rows = append(rows, []string{"---"}, []string{
			"All cards", "", cli.FormatDollars(fees), cli.Money(cli.FormatDollars(posted)),
			cli.FormatDollars(potential), styleNet(posted - fees), "",
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CARD BENEFITS  anniversary year"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Card", "Year", "Fee", "Posted", "Potential", "Net", "ROI"},
		Rows:    rows,
	}))
	return nil
}

func renderCardSummaries(sums []model.CardSummary, year int) {
	var rows [][]string
	for _, s := range sums {
		rows = append(rows, []string{
			s.CardName + " " + cli.Muted(s.CardKey),
			cli.FormatDollars(s.AnnualFee),
			cli.Money(cli.FormatDollars(s.TotalPosted)),
			cli.FormatDollars(s.TotalPotential),
			styleNet(s.NetValuePosted),
			cli.FormatPercent(s.ROIPosted),
			cli.FormatPercent(s.ROIPotential),
		})
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CARD BENEFITS  %d", year)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Card", "Fee", "Posted", "Potential", "Net", "ROI", "ROI (potential)"},
		Rows:    rows,
	}))
}

func styleNet(v float64) string {
	if v < 0 {
		return cli.Error(cli.FormatSigned(v))
	}
	return cli.Money(cli.FormatSigned(v))
}
