package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/theirongolddev/cardperks/internal/cli"
	"github.com/theirongolddev/cardperks/internal/model"
	"github.com/theirongolddev/cardperks/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagAsOf string

var nightsCmd = &cobra.Command{
	Use:   "nights",
	Short: "Elite-night progress from cards, stays and GOH nights",
	RunE:  runNights,
}

func init() {
	nightsCmd.Flags().StringVar(&flagAsOf, "as-of", "", "Reference date (YYYY-MM-DD), default today")
	rootCmd.Flags().AddFlagSet(nightsCmd.Flags())
	rootCmd.AddCommand(nightsCmd)
}

func refDate() (time.Time, error) {
	if flagAsOf == "" {
		return model.Day(time.Now()), nil
	}
	t, err := parseDateArg(flagAsOf)
	if err != nil {
		return time.Time{}, err
	}
	return model.Day(t), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runNights(_ *cobra.Command, _ []string) error {
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
		return printJSON(a.svc.Report(ref))
	}

	ns := a.svc.NightsSummary(ref)
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("ELITE NIGHTS  %d", ref.Year())))
	fmt.Println()

	rows := [][]string{
		{"Yearly card credit", strconv.Itoa(ns.YearlyStart)},
		{"Card bonus posted", strconv.Itoa(ns.CCNightsPosted)},
		{"Card bonus pending", strconv.Itoa(ns.CCNightsPending)},
		{"---"},
		{"Stay nights", strconv.Itoa(ns.CurrentNights)},
		{"Upcoming stay nights", strconv.Itoa(ns.UpcomingNights)},
		{"GOH nights", strconv.Itoa(ns.GOHNights)},
		{"Upcoming GOH nights", strconv.Itoa(ns.GOHNightsUpcoming)},
		{"---"},
		{"Nights posted", cli.Nights(strconv.Itoa(ns.NightsPosted))},
		{"Nights projected", cli.Nights(strconv.Itoa(ns.NightsTotal))},
	}
	fmt.Print(cli.RenderTable(cli.Table{Headers: []string{"Source", "Nights"}, Rows: rows}))
	fmt.Println()

	var mrows [][]string
	for _, m := range a.svc.Milestones(ns) {
		status := fmt.Sprintf("%d to go", m.NeededPosted)
		if m.ReachedPosted {
			status = "reached"
		} else if m.NeededTotal == 0 {
			status = fmt.Sprintf("%d to go (on track)", m.NeededPosted)
		}
		mrows = append(mrows, []string{
			fmt.Sprintf("%s (%d)", m.Name, m.Nights),
			cli.RenderProgressBar(ns.NightsPosted, m.Nights, 20),
			status,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Status",
		Headers:  []string{"Level", "Progress", "Remaining"},
		Rows:     mrows,
		LeftCols: 2,
	}))
	fmt.Println()

	closeAt := pipeline.StatementClose(ref, a.svc.Settings().Rules.CloseDay)
	var brows [][]string
	for _, k := range model.Kinds {
		b := a.svc.Breakdown(k, ref)
		brows = append(brows, []string{string(k), strconv.Itoa(b.Posted), strconv.Itoa(b.Pending), strconv.Itoa(b.Total)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Card bonus nights (statement closed " + cli.FormatDate(closeAt) + ")",
		Headers: []string{"Card", "Posted", "Pending", "Total"},
		Rows:    brows,
	}))

	if len(a.load.MissingDirs) > 0 {
		fmt.Println()
		for _, d := range a.load.MissingDirs {
			fmt.Printf("  %s\n", cli.Warn("No transactions folder: "+d))
		}
	}
	return nil
}
