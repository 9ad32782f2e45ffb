// Package customizer is the order customization and pricing engine shared by the
// customer drawer, the customer modal flow and the POS builder.
//
// A Configuration describes the ordered customization steps of a restaurant. A
// Session walks one product through those steps, mutating an owned Selection, and
// ComputePrice folds the Selection back into a unit price. Nothing in this package
// performs I/O or returns errors across its boundary once a Configuration is loaded:
// refused transitions are reported as booleans and stale option ids price at zero.
package customizer

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// StepKind identifies a customization step and selects the rule set applied to it
type StepKind string

const (
	StepBase           StepKind = "base"
	StepViande         StepKind = "viande"
	StepGarniture      StepKind = "garniture"
	StepSauces         StepKind = "sauces"
	StepAccompagnement StepKind = "accompagnement"
	StepSupplements    StepKind = "supplements"
	StepBoisson        StepKind = "boisson"
	StepDessert        StepKind = "dessert"
	StepRecap          StepKind = "recap"
)

var knownKinds = map[StepKind]bool{
	StepBase: true, StepViande: true, StepGarniture: true, StepSauces: true,
	StepAccompagnement: true, StepSupplements: true, StepBoisson: true,
	StepDessert: true, StepRecap: true,
}

// Valid reports whether k is one of the closed set of step kinds
func (k StepKind) Valid() bool {
	return knownKinds[k]
}

// UnmarshalText rejects unknown step kinds at load time
func (k *StepKind) UnmarshalText(text []byte) error {
	kind := StepKind(text)
	if !kind.Valid() {
		return fmt.Errorf("unknown step id %q", string(text))
	}
	*k = kind
	return nil
}

// StepType tells the navigator whether a choice auto-advances
type StepType string

const (
	StepSingle   StepType = "single"
	StepMultiple StepType = "multiple"
)

const (
	// DefaultMaxSauces caps the sauce step when max_selections is not configured
	DefaultMaxSauces = 3
	// DefaultMaxSupplementQty caps each supplement when max_qty is not configured
	DefaultMaxSupplementQty = 3
	// MultiMeatCap is the meat cap unlocked by allow_multi_meat
	MultiMeatCap = 3
)

// Configuration is the declarative customization setup of one restaurant.
// It is loaded once per session and never mutated afterwards.
type Configuration struct {
	BasePrice                decimal.Decimal `json:"base_price" yaml:"base_price"`
	Steps                    []Step          `json:"steps" yaml:"steps"`
	FreeSaucesSandwich       int             `json:"free_sauces_sandwich" yaml:"free_sauces_sandwich"`
	FreeSaucesFrites         int             `json:"free_sauces_frites" yaml:"free_sauces_frites"`
	ExtraSaucePrice          decimal.Decimal `json:"extra_sauce_price" yaml:"extra_sauce_price"`
	SuggestSauceFromSandwich bool            `json:"suggest_sauce_from_sandwich" yaml:"suggest_sauce_from_sandwich"`
	EnableBoissonUpsell      bool            `json:"enable_boisson_upsell" yaml:"enable_boisson_upsell"`
	EnableDessertUpsell      bool            `json:"enable_dessert_upsell" yaml:"enable_dessert_upsell"`
}

// Step is one stage of the customization sequence
type Step struct {
	ID                StepKind          `json:"id" yaml:"id"`
	Title             string            `json:"title" yaml:"title"`
	TitleTranslations map[string]string `json:"title_translations,omitempty" yaml:"title_translations,omitempty"`
	Type              StepType          `json:"type" yaml:"type"`
	Required          bool              `json:"required" yaml:"required"`
	MaxSelections     *int              `json:"max_selections,omitempty" yaml:"max_selections,omitempty"`
	Options           []Option          `json:"options" yaml:"options"`
}

// Option is a selectable choice inside a step
type Option struct {
	ID               string            `json:"id" yaml:"id"`
	Name             string            `json:"name" yaml:"name"`
	NameTranslations map[string]string `json:"name_translations,omitempty" yaml:"name_translations,omitempty"`
	PriceModifier    decimal.Decimal   `json:"price_modifier" yaml:"price_modifier"`

	// base options
	AllowMultiMeat bool `json:"allow_multi_meat,omitempty" yaml:"allow_multi_meat,omitempty"`
	MaxViandes     int  `json:"max_viandes,omitempty" yaml:"max_viandes,omitempty"`

	// side dish options
	PortionOptions []Portion         `json:"portion_options,omitempty" yaml:"portion_options,omitempty"`
	HasSubSauce    bool              `json:"has_sub_sauce,omitempty" yaml:"has_sub_sauce,omitempty"`
	HasSizes       bool              `json:"has_sizes,omitempty" yaml:"has_sizes,omitempty"`
	PriceSmall     *decimal.Decimal  `json:"price_small,omitempty" yaml:"price_small,omitempty"`
	PriceMedium    *decimal.Decimal  `json:"price_medium,omitempty" yaml:"price_medium,omitempty"`
	PriceLarge     *decimal.Decimal  `json:"price_large,omitempty" yaml:"price_large,omitempty"`
	PriceDefault   *decimal.Decimal  `json:"price_default,omitempty" yaml:"price_default,omitempty"`

	// supplement options
	MaxQty int `json:"max_qty,omitempty" yaml:"max_qty,omitempty"`
}

// Portion is a size tier of a side dish
type Portion struct {
	ID            string          `json:"id" yaml:"id"`
	Label         string          `json:"label" yaml:"label"`
	PriceModifier decimal.Decimal `json:"price_modifier" yaml:"price_modifier"`
}

// ParseJSON decodes a configuration stored as JSON
func ParseJSON(data []byte) (*Configuration, error) {
	var cfg Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// ParseYAML decodes a configuration template written in YAML
func ParseYAML(data []byte) (*Configuration, error) {
	var cfg Configuration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// JSON encodes the configuration for storage
func (c *Configuration) JSON() ([]byte, error) {
	return json.Marshal(c)
}

// normalize fills defaults that the rest of the engine relies on
func (c *Configuration) normalize() {
	for i := range c.Steps {
		s := &c.Steps[i]
		if s.Type == "" {
			s.Type = StepSingle
			if s.ID == StepGarniture || s.ID == StepSauces || s.ID == StepSupplements {
				s.Type = StepMultiple
			}
		}
	}
	if c.FreeSaucesSandwich < 0 {
		c.FreeSaucesSandwich = 0
	}
	if c.FreeSaucesFrites < 0 {
		c.FreeSaucesFrites = 0
	}
}

// Step returns the step of the given kind
func (c *Configuration) Step(kind StepKind) (*Step, bool) {
	for i := range c.Steps {
		if c.Steps[i].ID == kind {
			return &c.Steps[i], true
		}
	}
	return nil, false
}

// Option looks up an option inside the step of the given kind
func (c *Configuration) Option(kind StepKind, id string) (*Option, bool) {
	step, ok := c.Step(kind)
	if !ok {
		return nil, false
	}
	return step.Option(id)
}

// Option looks up an option by id
func (s *Step) Option(id string) (*Option, bool) {
	for i := range s.Options {
		if s.Options[i].ID == id {
			return &s.Options[i], true
		}
	}
	return nil, false
}

// Cap returns the selection cap of a multiple step
func (s *Step) Cap(fallback int) int {
	if s.MaxSelections != nil && *s.MaxSelections > 0 {
		return *s.MaxSelections
	}
	return fallback
}

// MeatCap returns how many meats this base option allows.
// max_viandes wins when set; allow_multi_meat is read as max_viandes = 3.
func (o *Option) MeatCap() int {
	if o.MaxViandes > 0 {
		return o.MaxViandes
	}
	if o.AllowMultiMeat {
		return MultiMeatCap
	}
	return 1
}

// SupplementCap returns the per-option quantity cap
func (o *Option) SupplementCap() int {
	if o.MaxQty > 0 {
		return o.MaxQty
	}
	return DefaultMaxSupplementQty
}

// Portion looks up a portion tier by id
func (o *Option) Portion(id string) (*Portion, bool) {
	for i := range o.PortionOptions {
		if o.PortionOptions[i].ID == id {
			return &o.PortionOptions[i], true
		}
	}
	return nil, false
}

// HasSubChoices reports whether choosing this side needs further input
func (o *Option) HasSubChoices() bool {
	return o.HasSubSauce || o.HasSizes || len(o.PortionOptions) > 1
}

// Issue is a non-fatal configuration integrity problem
type Issue struct {
	Step    StepKind `json:"step"`
	Option  string   `json:"option,omitempty"`
	Message string   `json:"message"`
}

func (i Issue) String() string {
	if i.Option != "" {
		return fmt.Sprintf("%s/%s: %s", i.Step, i.Option, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Step, i.Message)
}

// Validate reports data-integrity problems. Sessions still run on a configuration
// with issues; missing prices fall back to zero.
func (c *Configuration) Validate() []Issue {
	var issues []Issue
	seenSteps := make(map[StepKind]bool)

	for _, step := range c.Steps {
		if seenSteps[step.ID] {
			issues = append(issues, Issue{Step: step.ID, Message: "step declared more than once, first one is used"})
		}
		seenSteps[step.ID] = true

		if step.Type != StepSingle && step.Type != StepMultiple {
			issues = append(issues, Issue{Step: step.ID, Message: fmt.Sprintf("unknown step type %q", step.Type)})
		}
		if step.MaxSelections != nil && *step.MaxSelections < 0 {
			issues = append(issues, Issue{Step: step.ID, Message: "max_selections is negative"})
		}

		seenOptions := make(map[string]bool)
		for _, opt := range step.Options {
			if opt.ID == "" {
				issues = append(issues, Issue{Step: step.ID, Message: "option without id"})
				continue
			}
			if seenOptions[opt.ID] {
				issues = append(issues, Issue{Step: step.ID, Option: opt.ID, Message: "duplicate option id"})
			}
			seenOptions[opt.ID] = true

			switch step.ID {
			case StepBase:
				if opt.AllowMultiMeat && opt.MaxViandes == 1 {
					issues = append(issues, Issue{Step: step.ID, Option: opt.ID, Message: "allow_multi_meat conflicts with max_viandes = 1, max_viandes is used"})
				}
				if !opt.AllowMultiMeat && opt.MaxViandes > 1 {
					issues = append(issues, Issue{Step: step.ID, Option: opt.ID, Message: "max_viandes set without allow_multi_meat, max_viandes is used"})
				}
			case StepAccompagnement:
				if opt.HasSizes && opt.PriceSmall == nil && opt.PriceMedium == nil && opt.PriceLarge == nil && opt.PriceDefault == nil {
					issues = append(issues, Issue{Step: step.ID, Option: opt.ID, Message: "has_sizes without any size price, priced at zero"})
				}
				if opt.HasSubSauce {
					if _, ok := c.Step(StepSauces); !ok {
						issues = append(issues, Issue{Step: step.ID, Option: opt.ID, Message: "has_sub_sauce but no sauces step to draw from"})
					}
				}
			}
		}
	}
	return issues
}
