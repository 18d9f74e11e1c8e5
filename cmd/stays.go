package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/cardperks/internal/cli"

	"github.com/spf13/cobra"
)

var staysCmd = &cobra.Command{
	Use:   "stays",
	Short: "List hotel stays",
	RunE:  runStaysList,
}

var staysAddCmd = &cobra.Command{
	Use:   "add <name> <check-in> <check-out>",
	Short: "Record a stay",
	Args:  cobra.ExactArgs(3),
	RunE:  runStaysAdd,
}

var staysDeleteCmd = &cobra.Command{
	Use:   "delete <number|id>",
	Short: "Delete a stay by list number or ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runStaysDelete,
}

var gohCmd = &cobra.Command{
	Use:   "goh",
	Short: "List guest-of-honor nights",
	RunE:  runGOHList,
}

var gohAddCmd = &cobra.Command{
	Use:   "add <name> <date>",
	Short: "Record a guest-of-honor night",
	Args:  cobra.ExactArgs(2),
	RunE:  runGOHAdd,
}

var gohDeleteCmd = &cobra.Command{
	Use:   "delete <number>",
	Short: "Delete a guest-of-honor night by list number",
	Args:  cobra.ExactArgs(1),
	RunE:  runGOHDelete,
}

func init() {
	staysCmd.AddCommand(&cobra.Command{Use: "list", Short: "List hotel stays", RunE: runStaysList}, staysAddCmd, staysDeleteCmd)
	gohCmd.AddCommand(&cobra.Command{Use: "list", Short: "List guest-of-honor nights", RunE: runGOHList}, gohAddCmd, gohDeleteCmd)
	rootCmd.AddCommand(staysCmd, gohCmd)
}

func runStaysList(_ *cobra.Command, _ []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	list := a.stays.Stays()
	if flagJSON {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Println("\n  No stays recorded. Add one with `cardperks stays add`.")
		return nil
	}

	today := a.calc.Today()
	rows := make([][]string, 0, len(list)+2)
	total := 0
	for i, s := range list {
		status := "upcoming"
		if !s.CheckOut.After(today) {
			status = "completed"
		}
		total += s.Nights()
		rows = append(rows, []string{
			strconv.Itoa(i + 1), s.Name, cli.FormatShortDate(s.CheckIn), cli.FormatShortDate(s.CheckOut),
			strconv.Itoa(s.Nights()), cli.Muted(status), cli.Muted(shortID(s.ID)),
		})
	}
	rows = append(rows, []string{"---"}, []string{"", "Total", "", "", cli.Nights(strconv.Itoa(total)), "", ""})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Stays",
		Headers:  []string{"#", "Hotel", "Check-in", "Check-out", "Nights", "Status", "ID"},
		Rows:     rows,
		LeftCols: 4,
	}))
	return nil
}

func runStaysAdd(_ *cobra.Command, args []string) error {
	in, err := parseDateArg(args[1])
	if err != nil {
		return err
	}
	out, err := parseDateArg(args[2])
	if err != nil {
		return err
	}
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.stays.AddStay(args[0], in, out)
	if err != nil {
		return err
	}
	fmt.Printf("  Added %s: %d nights (%s)\n", st.Name, st.Nights(), st.ID)
	return nil
}

func runStaysDelete(_ *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	var ok bool
	if n, convErr := strconv.Atoi(args[0]); convErr == nil {
		ok, err = a.stays.DeleteStay(n - 1)
	} else {
		ok, err = deleteStayByPrefix(a, args[0])
	}
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no stay %s", args[0])
	}
	fmt.Println("  Deleted.")
	return nil
}

// deleteStayByPrefix deletes the single stay whose ID starts with prefix.
func deleteStayByPrefix(a *app, prefix string) (bool, error) {
	var match string
	for _, s := range a.stays.Stays() {
		if strings.HasPrefix(s.ID, prefix) {
			if match != "" {
				return false, fmt.Errorf("stay id %q is ambiguous", prefix)
			}
			match = s.ID
		}
	}
	if match == "" {
		return false, nil
	}
	return a.stays.DeleteStayByID(match)
}

func runGOHList(_ *cobra.Command, _ []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	list := a.stays.GOHNights()
	if flagJSON {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Println("\n  No guest-of-honor nights recorded.")
		return nil
	}

	today := a.calc.Today()
	rows := make([][]string, 0, len(list))
	for i, g := range list {
		status := "upcoming"
		if !g.Date.After(today) {
			status = "counted"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), g.Name, cli.FormatShortDate(g.Date), cli.Muted(status)})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Guest of Honor",
		Headers:  []string{"#", "Guest", "Date", "Status"},
		Rows:     rows,
		LeftCols: 4,
	}))
	return nil
}

func runGOHAdd(_ *cobra.Command, args []string) error {
	d, err := parseDateArg(args[1])
	if err != nil {
		return err
	}
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	g, err := a.stays.AddGOH(args[0], d)
	if err != nil {
		return err
	}
	fmt.Printf("  Added GOH night for %s on %s\n", g.Name, cli.FormatDate(g.Date))
	return nil
}

func runGOHDelete(_ *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid number %q", args[0])
	}
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ok, err := a.stays.DeleteGOH(n - 1)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no goh night %d", n)
	}
	fmt.Println("  Deleted.")
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
