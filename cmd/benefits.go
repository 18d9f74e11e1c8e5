package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/cardperks/internal/benefits"
	"github.com/theirongolddev/cardperks/internal/cli"
	"github.com/theirongolddev/cardperks/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagBenefitYear     int
	flagBenefitCategory string
	flagBenefitPending  bool
	flagBenefitDate     string
	flagBenefitUnpost   bool
)

var benefitsCmd = &cobra.Command{
	Use:   "benefits [card]",
	Short: "Benefits of a card for one anniversary year",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBenefits,
}

var benefitCmd = &cobra.Command{
	Use:   "benefit",
	Short: "Change the posted state of a benefit",
}

var benefitToggleCmd = &cobra.Command{
	Use:   "toggle <card> <benefit-id> <period>",
	Short: "Flip a benefit between posted and not posted",
	Args:  cobra.ExactArgs(3),
	RunE:  runBenefitToggle,
}

var benefitCustomCmd = &cobra.Command{
	Use:   "custom <card> <benefit-id> <period> <amount|clear>",
	Short: "Record a partial amount used",
	Args:  cobra.ExactArgs(4),
	RunE:  runBenefitCustom,
}

var benefitPostCmd = &cobra.Command{
	Use:   "post <card> <benefit-id> <period>",
	Short: "Mark a benefit posted on a given date",
	Args:  cobra.ExactArgs(3),
	RunE:  runBenefitPost,
}

var benefitBulkCmd = &cobra.Command{
	Use:   "bulk <card> <category> <all-on|all-off|past-on|future-off>",
	Short: "Post or unpost every monthly benefit of a category",
	Args:  cobra.ExactArgs(3),
	RunE:  runBenefitBulk,
}

func init() {
	benefitsCmd.Flags().IntVarP(&flagBenefitYear, "year", "y", 0, "Anniversary year (default: the year containing today)")
	benefitsCmd.Flags().StringVar(&flagBenefitCategory, "category", "", "Filter by category (substring match)")
	benefitsCmd.Flags().BoolVar(&flagBenefitPending, "pending", false, "Only benefits not yet posted")

	benefitCmd.PersistentFlags().IntVarP(&flagBenefitYear, "year", "y", 0, "Anniversary year (default: the year containing today)")
	benefitPostCmd.Flags().StringVar(&flagBenefitDate, "date", "", "Post date (YYYY-MM-DD), default today")
	benefitPostCmd.Flags().BoolVar(&flagBenefitUnpost, "unpost", false, "Mark as not posted instead")

	benefitCmd.AddCommand(benefitToggleCmd, benefitCustomCmd, benefitPostCmd, benefitBulkCmd)
	rootCmd.AddCommand(benefitsCmd, benefitCmd)
}

// resolveCard maps a card key or base name and an optional year to the
// card key of that anniversary year.
func resolveCard(calc *benefits.Calculator, arg string, year int) (string, int, error) {
	for _, g := range calc.GroupCards() {
		exact := 0
		for y, key := range g.Years {
			if key == arg {
				exact = y
			}
		}
		if g.Base != arg && exact == 0 {
			continue
		}
		switch {
		case year != 0:
		case exact != 0:
			year = exact
		default:
			year = calc.DefaultYear(g)
		}
		key, ok := g.Years[year]
		if !ok {
			years := make([]string, 0, len(g.Years))
			for _, y := range g.SortedYears() {
				years = append(years, strconv.Itoa(y))
			}
			return "", 0, fmt.Errorf("%s has no %d config (have %s)", g.Base, year, strings.Join(years, ", "))
		}
		return key, year, nil
	}
	return "", 0, fmt.Errorf("%w: %s", benefits.ErrUnknownCard, arg)
}

func runBenefits(_ *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	var targets [][2]string // card key, year
	if len(args) == 1 {
		key, year, err := resolveCard(a.calc, args[0], flagBenefitYear)
		if err != nil {
			return err
		}
		targets = append(targets, [2]string{key, strconv.Itoa(year)})
	} else {
		for _, g := range a.calc.GroupCards() {
			year := a.calc.DefaultYear(g)
			targets = append(targets, [2]string{g.Years[year], strconv.Itoa(year)})
		}
	}
	if len(targets) == 0 {
		fmt.Printf("\n  No cards configured. Add them to %s\n", a.benefitsPath())
		return nil
	}

	type cardOut struct {
		CardKey  string          `json:"card_key"`
		Year     int             `json:"year"`
		Benefits []model.Benefit `json:"benefits"`
	}
	var jsonOut []cardOut

	for _, t := range targets {
		key := t[0]
		year, _ := strconv.Atoi(t[1])
		card, _ := a.calc.Config().Card(key)
		bs := filterBenefits(a.svc.BenefitsForYear(key, year))

		if flagJSON {
			jsonOut = append(jsonOut, cardOut{CardKey: key, Year: year, Benefits: bs})
			continue
		}
		renderBenefits(a, key, card.DisplayName, year, bs)
		ys := a.svc.YearSummary(a.svc.BenefitsForYear(key, year), card.AnnualFee, year)
		fmt.Print(cli.RenderKV([][2]string{
			{"Posted", cli.Money(cli.FormatDollars(ys.TotalPosted)) + " of " + cli.FormatDollars(ys.TotalPotential)},
			{"Annual fee", cli.FormatDollars(card.AnnualFee)},
			{"Net", styleNet(ys.NetValuePosted) + "  " + cli.Muted(cli.FormatPercent(ys.ROIPosted)+" ROI")},
		}))
		fmt.Println()
	}
	if flagJSON {
		return printJSON(jsonOut)
	}
	return nil
}

func filterBenefits(bs []model.Benefit) []model.Benefit {
	out := bs[:0:0]
	for _, b := range bs {
		if flagBenefitCategory != "" && !strings.Contains(strings.ToLower(b.Category), strings.ToLower(flagBenefitCategory)) {
			continue
		}
		if flagBenefitPending && b.Posted {
			continue
		}
		out = append(out, b)
	}
	return out
}

func renderBenefits(a *app, key, name string, year int, bs []model.Benefit) {
	start, end, _ := a.calc.AnniversaryRange(key, year)
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s - %s", strings.ToUpper(name), cli.FormatDate(start), cli.FormatDate(end))))
	fmt.Println()

	groups := benefits.GroupByCategory(bs)
	benefits.SortCategories(groups)

	for _, g := range groups {
		benefits.SortByPeriod(g.Benefits)
		var rows [][]string
		for _, b := range g.Benefits {
			rows = append(rows, []string{b.Period, benefitID(b), cli.FormatDollars(b.Amount), benefitStatus(a.calc, b, year)})
		}
		title := g.Category
		if p := benefits.Monthly(g.Benefits); p.TotalCount > 0 {
			title += cli.Muted(fmt.Sprintf("  %d/%d months, %s of %s", p.PostedCount, p.TotalCount,
				cli.FormatDollars(p.Posted), cli.FormatDollars(p.Total)))
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:    title,
			Headers:  []string{"Period", "Benefit", "Amount", "Status"},
			Rows:     rows,
			LeftCols: 2,
		}))
	}
	fmt.Println()
}

// benefitID returns the configured id portion of a state identifier.
func benefitID(b model.Benefit) string {
	for _, prefix := range []string{b.CardKey + "_", benefits.BaseKey(b.CardKey) + "_"} {
		if strings.HasPrefix(b.BenefitID, prefix) {
			return strings.TrimPrefix(b.BenefitID, prefix)
		}
	}
	return b.BenefitID
}

func benefitStatus(calc *benefits.Calculator, b model.Benefit, year int) string {
	if off, reason := calc.Disabled(b, year); off {
		return cli.Muted(reason)
	}
	if !b.Posted {
		return ""
	}
	s := "posted"
	if b.PostDate != nil {
		s += " " + cli.FormatShortDate(*b.PostDate)
	}
	if b.CustomAmount != nil && *b.CustomAmount > 0 {
		s += " (" + cli.FormatDollars(*b.CustomAmount) + ")"
	}
	return cli.Money(s)
}

// findForChange resolves the card, year and benefit named on the command
// line and rejects benefits disabled in that year.
func findForChange(a *app, card, id, period string) (model.Benefit, int, error) {
	key, year, err := resolveCard(a.calc, card, flagBenefitYear)
	if err != nil {
		return model.Benefit{}, 0, err
	}
	b, err := a.calc.FindBenefit(key, id, period)
	if err != nil {
		return model.Benefit{}, 0, err
	}
	if off, reason := a.calc.Disabled(b, year); off {
		return model.Benefit{}, 0, fmt.Errorf("%s %s is disabled: %s", id, period, reason)
	}
	return b, year, nil
}

func runBenefitToggle(_ *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	b, year, err := findForChange(a, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	annYear := 0
	if benefits.RenewalTypeOf(b.Period) == model.CalendarYear {
		annYear = year
	}
	if err := a.calc.Toggle(b.BenefitID, b.Period, annYear); err != nil {
		return err
	}
	state := "not posted"
	if a.calc.State(b.BenefitID, b.Period).Posted {
		state = "posted"
	}
	fmt.Printf("  %s %s: %s\n", b.Category, b.Period, state)
	return nil
}

func runBenefitCustom(_ *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	b, _, err := findForChange(a, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	var amount *float64
	if args[3] != "clear" {
		v, err := strconv.ParseFloat(strings.TrimPrefix(args[3], "$"), 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[3])
		}
		amount = &v
	}
	if err := a.calc.SetCustomAmountChecked(b, amount); err != nil {
		if errors.Is(err, benefits.ErrCustomExceedsAmount) {
			return fmt.Errorf("%s is worth at most %s", b.Category, cli.FormatDollars(b.Amount))
		}
		return err
	}
	fmt.Printf("  %s %s: %s of %s\n", b.Category, b.Period,
		cli.FormatDollars(a.calc.CustomAmount(b.BenefitID, b.Period, b.Amount)), cli.FormatDollars(b.Amount))
	return nil
}

func runBenefitPost(_ *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	b, year, err := findForChange(a, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	if flagBenefitUnpost {
		if err := a.calc.SetPosted(b.BenefitID, b.Period, false, nil); err != nil {
			return err
		}
		fmt.Printf("  %s %s: not posted\n", b.Category, b.Period)
		return nil
	}

	var postDate *time.Time
	if flagBenefitDate != "" {
		d, err := parseDateArg(flagBenefitDate)
		if err != nil {
			return err
		}
		postDate = &d
	}
	annYear := 0
	if benefits.RenewalTypeOf(b.Period) == model.CalendarYear {
		annYear = year
	}
	if err := a.calc.Post(b.BenefitID, b.Period, postDate, annYear); err != nil {
		return err
	}
	fmt.Printf("  %s %s: posted\n", b.Category, b.Period)
	return nil
}

func runBenefitBulk(_ *cobra.Command, args []string) error {
	mode, err := benefits.ParseBulkMode(args[2])
	if err != nil {
		return err
	}
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	key, year, err := resolveCard(a.calc, args[0], flagBenefitYear)
	if err != nil {
		return err
	}
	category := args[1]
	known := map[string]bool{}
	for _, g := range a.calc.BenefitsByCategory(key) {
		known[g.Category] = true
	}
	if !known[category] {
		names := make([]string, 0, len(known))
		for c := range known {
			names = append(names, c)
		}
		sort.Strings(names)
		return fmt.Errorf("no category %q on %s (have %s)", category, key, strings.Join(names, ", "))
	}

	n, err := a.calc.BulkMonthly(key, category, year, mode)
	if err != nil {
		return err
	}
	fmt.Printf("  %s %d: %d monthly benefits updated\n", category, year, n)
	return nil
}
