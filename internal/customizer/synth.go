package customizer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Translator resolves a display string from its per-locale translations,
// falling back to the default-locale string
type Translator interface {
	Translate(translations map[string]string, fallback string) string
}

// TranslatorFunc adapts a function to Translator
type TranslatorFunc func(translations map[string]string, fallback string) string

// Translate implements Translator
func (f TranslatorFunc) Translate(translations map[string]string, fallback string) string {
	return f(translations, fallback)
}

// NoTranslation always returns the default-locale string
var NoTranslation Translator = TranslatorFunc(func(_ map[string]string, fallback string) string {
	return fallback
})

// ChoiceRef names one chosen option
type ChoiceRef struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// GarnitureChoice is a garniture with its level
type GarnitureChoice struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level Level  `json:"level"`
}

// SauceChoice is a sauce and whether it falls within the free allowance
type SauceChoice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Free bool   `json:"free"`
}

// SideDetail is the side dish with its portion, size and sub-sauce
type SideDetail struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Portion      string     `json:"portion,omitempty"`
	PortionLabel string     `json:"portion_label,omitempty"`
	Size         Size       `json:"size,omitempty"`
	SubSauce     *ChoiceRef `json:"sub_sauce,omitempty"`
}

// SupplementChoice is a supplement with its quantity
type SupplementChoice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Choices is the structured metadata the kitchen display renders from
type Choices struct {
	Base           *ChoiceRef         `json:"base,omitempty"`
	Viandes        []ChoiceRef        `json:"viandes,omitempty"`
	Garnitures     []GarnitureChoice  `json:"garnitures,omitempty"`
	Sauces         []SauceChoice      `json:"sauces,omitempty"`
	Accompagnement *SideDetail        `json:"accompagnement,omitempty"`
	Supplements    []SupplementChoice `json:"supplements,omitempty"`
	Boisson        *ChoiceRef         `json:"boisson,omitempty"`
	Dessert        *ChoiceRef         `json:"dessert,omitempty"`
}

// CartLineItem is the line shape the cart and order layer persists
type CartLineItem struct {
	ProductID   string          `json:"product_id"`
	ProductType ProductType     `json:"product_type"`
	Name        string          `json:"name"`
	Summary     string          `json:"summary"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Choices     *Choices        `json:"choices,omitempty"`
}

// Synthesize emits quantity identical line items for a completed selection.
// Identical items are never merged. Callers check the completion predicate first.
func Synthesize(cfg *Configuration, item Item, sel *Selection, quantity int, tr Translator) []CartLineItem {
	if tr == nil {
		tr = NoTranslation
	}
	if quantity < 1 {
		quantity = 1
	}

	choices := buildChoices(cfg, sel, tr)
	line := CartLineItem{
		ProductID:   item.ProductID,
		ProductType: item.Type,
		Name:        lineName(item, choices, tr),
		Summary:     summarize(choices),
		UnitPrice:   ComputePrice(cfg, item, sel),
		Choices:     choices,
	}

	items := make([]CartLineItem, quantity)
	for i := range items {
		items[i] = line
		items[i].Choices = choices.clone()
	}
	return items
}

func buildChoices(cfg *Configuration, sel *Selection, tr Translator) *Choices {
	c := &Choices{}

	if opt, ok := cfg.Option(StepBase, sel.BaseID); ok {
		c.Base = ref(opt, tr)
	}
	for _, id := range sel.ViandeIDs {
		if opt, ok := cfg.Option(StepViande, id); ok {
			c.Viandes = append(c.Viandes, *ref(opt, tr))
		}
	}
	if step, ok := cfg.Step(StepGarniture); ok {
		for i := range step.Options {
			opt := &step.Options[i]
			if level := sel.GarnitureLevel(opt.ID); level != LevelNon {
				c.Garnitures = append(c.Garnitures, GarnitureChoice{ID: opt.ID, Name: tr.Translate(opt.NameTranslations, opt.Name), Level: level})
			}
		}
	}

	free, paid := SauceSplit(cfg, sel)
	for i, id := range append(append([]string{}, free...), paid...) {
		opt, _ := cfg.Option(StepSauces, id)
		c.Sauces = append(c.Sauces, SauceChoice{ID: id, Name: tr.Translate(opt.NameTranslations, opt.Name), Free: i < len(free)})
	}

	if side := sel.Accompagnement; side != nil {
		if opt, ok := cfg.Option(StepAccompagnement, side.OptionID); ok {
			detail := &SideDetail{ID: opt.ID, Name: tr.Translate(opt.NameTranslations, opt.Name), Size: side.Size}
			if portion, ok := opt.Portion(side.Portion); ok {
				detail.Portion = portion.ID
				detail.PortionLabel = portion.Label
			}
			if sauce, ok := cfg.Option(StepSauces, side.SubSauceID); ok {
				detail.SubSauce = ref(sauce, tr)
			}
			c.Accompagnement = detail
		}
	}

	if step, ok := cfg.Step(StepSupplements); ok {
		for i := range step.Options {
			opt := &step.Options[i]
			if qty := sel.Supplements[opt.ID]; qty > 0 {
				c.Supplements = append(c.Supplements, SupplementChoice{ID: opt.ID, Name: tr.Translate(opt.NameTranslations, opt.Name), Quantity: qty})
			}
		}
	}

	if opt, ok := cfg.Option(StepBoisson, sel.BoissonID); ok {
		c.Boisson = ref(opt, tr)
	}
	if opt, ok := cfg.Option(StepDessert, sel.DessertID); ok {
		c.Dessert = ref(opt, tr)
	}
	return c
}

func ref(opt *Option, tr Translator) *ChoiceRef {
	return &ChoiceRef{ID: opt.ID, Name: tr.Translate(opt.NameTranslations, opt.Name), Price: opt.PriceModifier}
}

func (c *Choices) clone() *Choices {
	out := *c
	if c.Base != nil {
		b := *c.Base
		out.Base = &b
	}
	out.Viandes = append([]ChoiceRef(nil), c.Viandes...)
	out.Garnitures = append([]GarnitureChoice(nil), c.Garnitures...)
	out.Sauces = append([]SauceChoice(nil), c.Sauces...)
	out.Supplements = append([]SupplementChoice(nil), c.Supplements...)
	if c.Accompagnement != nil {
		side := *c.Accompagnement
		if side.SubSauce != nil {
			sub := *side.SubSauce
			side.SubSauce = &sub
		}
		out.Accompagnement = &side
	}
	if c.Boisson != nil {
		b := *c.Boisson
		out.Boisson = &b
	}
	if c.Dessert != nil {
		d := *c.Dessert
		out.Dessert = &d
	}
	return &out
}

// lineName is built from base and meats when a base is chosen, else the
// product's own name
func lineName(item Item, c *Choices, tr Translator) string {
	productName := tr.Translate(item.NameTranslations, item.Name)
	if c.Base == nil {
		return productName
	}
	parts := []string{c.Base.Name}
	if len(c.Viandes) > 0 {
		names := make([]string, len(c.Viandes))
		for i, v := range c.Viandes {
			names[i] = v.Name
		}
		parts = append(parts, strings.Join(names, " / "))
	}
	composed := strings.Join(parts, " ")
	if item.Type.Bundled() && productName != "" {
		return productName + " - " + composed
	}
	return composed
}

// summarize flattens the choices into the comma-joined description used when a
// display has no structured rendering
func summarize(c *Choices) string {
	var parts []string
	for _, g := range c.Garnitures {
		if g.Level == LevelX2 {
			parts = append(parts, g.Name+" x2")
		} else {
			parts = append(parts, g.Name)
		}
	}
	for _, s := range c.Sauces {
		parts = append(parts, s.Name)
	}
	if side := c.Accompagnement; side != nil {
		label := side.Name
		switch {
		case side.Size != "":
			label += " (" + string(side.Size) + ")"
		case side.PortionLabel != "":
			label += " (" + side.PortionLabel + ")"
		}
		if side.SubSauce != nil {
			label += " + " + side.SubSauce.Name
		}
		parts = append(parts, label)
	}
	for _, s := range c.Supplements {
		if s.Quantity > 1 {
			parts = append(parts, fmt.Sprintf("%dx %s", s.Quantity, s.Name))
		} else {
			parts = append(parts, s.Name)
		}
	}
	if c.Boisson != nil {
		parts = append(parts, c.Boisson.Name)
	}
	if c.Dessert != nil {
		parts = append(parts, c.Dessert.Name)
	}
	return strings.Join(parts, ", ")
}
