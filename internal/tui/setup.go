package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/cardperks/internal/config"
	"github.com/theirongolddev/cardperks/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers collected by the setup form.
type SetupValues struct {
	DataDir      string
	BenefitsFile string
	YearStart    string
	EliteGoal    string
	Theme        string
}

// SetupValuesFrom seeds the form with cfg.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		DataDir:      cfg.General.DataDir,
		BenefitsFile: cfg.General.BenefitsFile,
		YearStart:    strconv.Itoa(cfg.General.YearStartNights),
		EliteGoal:    strconv.Itoa(cfg.General.EliteGoal),
		Theme:        cfg.Appearance.Theme,
	}
}

// Apply copies validated answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	start, err := parseNights(v.YearStart)
	if err != nil {
		return fmt.Errorf("year start nights: %w", err)
	}
	goal, err := parseNights(v.EliteGoal)
	if err != nil {
		return fmt.Errorf("elite goal: %w", err)
	}
	if goal == 0 {
		return errors.New("elite goal: must be positive")
	}
	if d := strings.TrimSpace(v.DataDir); d != "" {
		cfg.General.DataDir = d
	}
	if f := strings.TrimSpace(v.BenefitsFile); f != "" {
		cfg.General.BenefitsFile = f
	}
	cfg.General.YearStartNights = start
	cfg.General.EliteGoal = goal
	cfg.Appearance.Theme = theme.ByName(v.Theme).Name
	return nil
}

func parseNights(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("must be a whole number")
	}
	if n < 0 {
		return 0, errors.New("must not be negative")
	}
	return n, nil
}

func validateNights(s string) error {
	_, err := parseNights(s)
	return err
}

// NewSetupForm builds the first-run form. found is the number of CSV
// exports already discovered. Answers are written into vals.
func NewSetupForm(found int, vals *SetupValues) *huh.Form {
	intro := "Let's set up a few things."
	if found > 0 {
		intro = fmt.Sprintf("Found %d card exports. Let's set up a few things.", found)
	}

	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themes = append(themes, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to cardperks").
				Description(intro),
			huh.NewInput().
				Title("Data directory").
				Description("Holds transactions/ and the benefits file.").
				Value(&vals.DataDir),
			huh.NewInput().
				Title("Benefits file").
				Description("Relative to the data directory.").
				Value(&vals.BenefitsFile),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Nights credited at the start of the year").
				Value(&vals.YearStart).
				Validate(validateNights),
			huh.NewInput().
				Title("Elite night goal").
				Value(&vals.EliteGoal).
				Validate(func(s string) error {
					n, err := parseNights(s)
					if err == nil && n == 0 {
						return errors.New("must be positive")
					}
					return err
				}),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&vals.Theme),
		),
	).WithShowHelp(false)
}

// SaveSetup applies vals on top of the stored config and writes it.
func SaveSetup(vals SetupValues) (config.Config, error) {
	cfg, _ := config.Load()
	if err := vals.Apply(&cfg); err != nil {
		return cfg, err
	}
	theme.SetActive(cfg.Appearance.Theme)
	return cfg, config.Save(cfg)
}
