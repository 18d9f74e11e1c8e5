package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/cardperks/internal/config"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [benefits.yaml]",
	Short: "Check the benefits config file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = config.BenefitsPath(cfg)
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is configured by the local user
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := config.ValidateBenefits(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	bc, err := config.ParseBenefits(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	benefits := 0
	for _, k := range bc.Keys() {
		c, _ := bc.Card(k)
		benefits += len(c.Benefits)
	}
	fmt.Printf("  %s: %d cards, %d benefits, OK\n", path, bc.Len(), benefits)
	return nil
}
