// Package config loads cardperks settings and the card benefits file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/cardperks/internal/model"

	"gopkg.in/yaml.v3"
)

// CardConfig is one card-year entry in the benefits file.
type CardConfig struct {
	Key          string          `yaml:"-"`
	DisplayName  string          `yaml:"display_name"`
	Year         int             `yaml:"year"`
	AnnualFee    float64         `yaml:"annual_fee"`
	RenewalMonth int             `yaml:"renewal_month"`
	RenewalDay   int             `yaml:"renewal_day"`
	Benefits     []BenefitConfig `yaml:"benefits"`
}

// BenefitConfig is a benefit definition attached to a card.
type BenefitConfig struct {
	ID          string            `yaml:"id"`
	Category    string            `yaml:"category"`
	Amount      float64           `yaml:"amount"`
	Frequency   model.Frequency   `yaml:"frequency"`
	RenewalType model.RenewalType `yaml:"renewal_type"`
}

// BenefitsConfig holds every configured card, in file order.
type BenefitsConfig struct {
	cards map[string]CardConfig
	order []string
}

var (
	requiredCardFields    = []string{"display_name", "year", "annual_fee", "renewal_month", "renewal_day", "benefits"}
	requiredBenefitFields = []string{"id", "category", "amount", "frequency", "renewal_type"}

	validFrequencies = map[model.Frequency]bool{
		model.Monthly: true, model.Quarterly: true, model.HalfYearly: true,
		model.Yearly: true, model.Every4Years: true,
	}
	validRenewalTypes = map[model.RenewalType]bool{
		model.CalendarYear: true, model.CardAnniversary: true,
	}
	daysInMonth = [13]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
)

// NewBenefitsConfig builds a config from cards in the given order.
func NewBenefitsConfig(cards ...CardConfig) *BenefitsConfig {
	bc := &BenefitsConfig{cards: make(map[string]CardConfig, len(cards))}
	for _, c := range cards {
		if _, dup := bc.cards[c.Key]; !dup {
			bc.order = append(bc.order, c.Key)
		}
		bc.cards[c.Key] = c
	}
	return bc
}

// Keys returns card keys in file order.
func (bc *BenefitsConfig) Keys() []string {
	if bc == nil {
		return nil
	}
	out := make([]string, len(bc.order))
	copy(out, bc.order)
	return out
}

// Card looks up a card by key.
func (bc *BenefitsConfig) Card(key string) (CardConfig, bool) {
	if bc == nil {
		return CardConfig{}, false
	}
	c, ok := bc.cards[key]
	return c, ok
}

// Len returns the number of configured cards.
func (bc *BenefitsConfig) Len() int {
	if bc == nil {
		return 0
	}
	return len(bc.order)
}

// LoadBenefits reads and validates the benefits file at path.
// A missing file yields an empty config.
func LoadBenefits(path string) (*BenefitsConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is configured by the local user
	if err != nil {
		if os.IsNotExist(err) {
			return NewBenefitsConfig(), nil
		}
		return nil, fmt.Errorf("reading benefits config: %w", err)
	}
	return ParseBenefits(data)
}

// ParseBenefits validates and decodes benefits YAML.
func ParseBenefits(data []byte) (*BenefitsConfig, error) {
	root, err := parseRoot(data)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return NewBenefitsConfig(), nil
	}
	cardsNode, err := validateRoot(root)
	if err != nil {
		return nil, err
	}

	cards := make([]CardConfig, 0, len(cardsNode.Content)/2)
	for i := 0; i+1 < len(cardsNode.Content); i += 2 {
		key := cardsNode.Content[i].Value
		var card CardConfig
		if err := cardsNode.Content[i+1].Decode(&card); err != nil {
			return nil, fmt.Errorf("card '%s': %w", key, err)
		}
		card.Key = key
		if card.DisplayName == "" {
			card.DisplayName = key
		}
		cards = append(cards, card)
	}
	return NewBenefitsConfig(cards...), nil
}

// ValidateBenefits checks benefits YAML without decoding it.
func ValidateBenefits(data []byte) error {
	root, err := parseRoot(data)
	if err != nil {
		return err
	}
	if root == nil {
		return errors.New("invalid config structure: missing 'cards' section")
	}
	_, err = validateRoot(root)
	return err
}

func parseRoot(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("YAML parsing error: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	return doc.Content[0], nil
}

func validateRoot(root *yaml.Node) (*yaml.Node, error) {
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("invalid config structure: missing 'cards' section")
	}
	cards := mappingValue(root, "cards")
	if cards == nil {
		return nil, errors.New("invalid config structure: missing 'cards' section")
	}
	if cards.Kind != yaml.MappingNode {
		return nil, errors.New("invalid config structure: 'cards' must be a dictionary")
	}

	for i := 0; i+1 < len(cards.Content); i += 2 {
		cardID := cards.Content[i].Value
		card := cards.Content[i+1]
		if card.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("card '%s' must be a dictionary", cardID)
		}
		for _, field := range requiredCardFields {
			if mappingValue(card, field) == nil {
				return nil, fmt.Errorf("card '%s' is missing required field: %s", cardID, field)
			}
		}
		if err := validateRenewal(cardID, card); err != nil {
			return nil, err
		}

		benefits := mappingValue(card, "benefits")
		if benefits.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("card '%s': benefits must be a list", cardID)
		}
		for j, b := range benefits.Content {
			if b.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("card '%s', benefit %d: must be a dictionary", cardID, j)
			}
			for _, field := range requiredBenefitFields {
				if mappingValue(b, field) == nil {
					return nil, fmt.Errorf("card '%s', benefit %d: missing required field '%s'", cardID, j, field)
				}
			}
			freq := model.Frequency(mappingValue(b, "frequency").Value)
			if !validFrequencies[freq] {
				return nil, fmt.Errorf("card '%s', benefit %d: unknown frequency %q", cardID, j, freq)
			}
			rt := model.RenewalType(mappingValue(b, "renewal_type").Value)
			if !validRenewalTypes[rt] {
				return nil, fmt.Errorf("card '%s', benefit %d: unknown renewal_type %q", cardID, j, rt)
			}
		}
	}
	return cards, nil
}

func validateRenewal(cardID string, card *yaml.Node) error {
	var month, day int
	if err := mappingValue(card, "renewal_month").Decode(&month); err != nil || month < 1 || month > 12 {
		return fmt.Errorf("card '%s': renewal_month must be 1-12", cardID)
	}
	if err := mappingValue(card, "renewal_day").Decode(&day); err != nil || day < 1 || day > daysInMonth[month] {
		return fmt.Errorf("card '%s': renewal_day %d is not valid for month %d", cardID, day, month)
	}
	return nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
