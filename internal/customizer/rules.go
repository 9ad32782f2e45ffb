package customizer

import "github.com/shopspring/decimal"

// stepRule is the behaviour attached to one StepKind. Pricing and navigation
// look the rule up once by kind instead of branching on step ids.
type stepRule interface {
	// price returns what the step contributes to the unit price
	price(cfg *Configuration, item Item, sel *Selection) decimal.Decimal
	// choose applies an option choice and reports whether the state changed and
	// whether a single-type step may auto-advance
	choose(cfg *Configuration, sel *Selection, id string) (changed, advance bool)
}

var rules = map[StepKind]stepRule{
	StepBase:           baseRule{},
	StepViande:         viandeRule{},
	StepGarniture:      garnitureRule{},
	StepSauces:         sauceRule{},
	StepAccompagnement: sideRule{},
	StepSupplements:    supplementRule{},
	StepBoisson:        upsellRule{kind: StepBoisson},
	StepDessert:        upsellRule{kind: StepDessert},
	StepRecap:          recapRule{},
}

var pricingOrder = []StepKind{
	StepBase, StepViande, StepGarniture, StepSauces, StepAccompagnement,
	StepSupplements, StepBoisson, StepDessert,
}

type baseRule struct{}

// price is the selected base's price modifier on every product type, menus
// included. The product price only applies while no base is selected.
func (baseRule) price(cfg *Configuration, item Item, sel *Selection) decimal.Decimal {
	if sel.BaseID != "" {
		if opt, ok := cfg.Option(StepBase, sel.BaseID); ok {
			return opt.PriceModifier
		}
	}
	// a standalone side is priced entirely by the chosen option
	if item.Type == ProductSide {
		if _, ok := sel.sideOption(cfg); ok {
			return decimal.Zero
		}
	}
	return standalonePrice(cfg, item)
}

func (baseRule) choose(cfg *Configuration, sel *Selection, id string) (bool, bool) {
	ok := sel.SelectBase(cfg, id)
	return ok, ok
}

type viandeRule struct{}

func (viandeRule) price(cfg *Configuration, _ Item, sel *Selection) decimal.Decimal {
	total := decimal.Zero
	for _, id := range sel.ViandeIDs {
		if opt, ok := cfg.Option(StepViande, id); ok {
			total = total.Add(opt.PriceModifier)
		}
	}
	return total
}

// choose auto-advances only in single-meat mode, once a meat is held
func (viandeRule) choose(cfg *Configuration, sel *Selection, id string) (bool, bool) {
	changed := sel.ChooseViande(cfg, id)
	single := sel.MeatCap(cfg) == 1
	return changed, changed && single && indexOf(sel.ViandeIDs, id) >= 0
}

type garnitureRule struct{}

func (garnitureRule) price(cfg *Configuration, _ Item, sel *Selection) decimal.Decimal {
	total := decimal.Zero
	for id, level := range sel.Garniture {
		if level != LevelX2 {
			continue
		}
		if opt, ok := cfg.Option(StepGarniture, id); ok {
			total = total.Add(opt.PriceModifier)
		}
	}
	return total
}

func (garnitureRule) choose(cfg *Configuration, sel *Selection, id string) (bool, bool) {
	_, ok := sel.CycleGarniture(cfg, id)
	return ok, false
}

type sauceRule struct{}

func (sauceRule) price(cfg *Configuration, _ Item, sel *Selection) decimal.Decimal {
	free, paid := SauceSplit(cfg, sel)
	return extraSauces(cfg, len(free)+len(paid), cfg.FreeSaucesSandwich)
}

func (sauceRule) choose(cfg *Configuration, sel *Selection, id string) (bool, bool) {
	return sel.ToggleSauce(cfg, id), false
}

type sideRule struct{}

func (sideRule) price(cfg *Configuration, item Item, sel *Selection) decimal.Decimal {
	side := sel.Accompagnement
	if side == nil {
		return decimal.Zero
	}
	total := SubSaucePrice(cfg, sel)
	if item.Type.Bundled() {
		return total
	}
	if opt, ok := cfg.Option(StepAccompagnement, side.OptionID); ok {
		total = total.Add(sidePrice(opt, side))
	}
	return total
}

// choose prefills the sub-sauce from the first sandwich sauce when configured,
// and holds the cursor when the side still needs a portion, size or sub-sauce
func (sideRule) choose(cfg *Configuration, sel *Selection, id string) (bool, bool) {
	before := sel.Accompagnement
	selected := sel.SelectSide(cfg, id)
	changed := before != sel.Accompagnement
	if !selected || !changed {
		return changed, false
	}
	opt, _ := cfg.Option(StepAccompagnement, id)
	if opt.HasSubSauce && cfg.SuggestSauceFromSandwich && len(sel.SauceIDs) > 0 {
		sel.SetSideSubSauce(cfg, sel.SauceIDs[0])
	}
	return changed, !opt.HasSubChoices()
}

type supplementRule struct{}

func (supplementRule) price(cfg *Configuration, _ Item, sel *Selection) decimal.Decimal {
	total := decimal.Zero
	for id, qty := range sel.Supplements {
		if qty <= 0 {
			continue
		}
		if opt, ok := cfg.Option(StepSupplements, id); ok {
			total = total.Add(opt.PriceModifier.Mul(decimal.NewFromInt(int64(qty))))
		}
	}
	return total
}

// choose adds one unit; quantity decrements go through AdjustSupplement
func (supplementRule) choose(cfg *Configuration, sel *Selection, id string) (bool, bool) {
	before := sel.Supplements[id]
	return sel.AdjustSupplement(cfg, id, 1) != before, false
}

type upsellRule struct {
	kind StepKind
}

func (r upsellRule) slot(sel *Selection) string {
	if r.kind == StepDessert {
		return sel.DessertID
	}
	return sel.BoissonID
}

func (r upsellRule) price(cfg *Configuration, item Item, sel *Selection) decimal.Decimal {
	id := r.slot(sel)
	if id == "" || item.Type.Bundled() {
		return decimal.Zero
	}
	if opt, ok := cfg.Option(r.kind, id); ok {
		return opt.PriceModifier
	}
	return decimal.Zero
}

func (r upsellRule) choose(cfg *Configuration, sel *Selection, id string) (bool, bool) {
	before := r.slot(sel)
	var selected bool
	if r.kind == StepDessert {
		selected = sel.ToggleDessert(cfg, id)
	} else {
		selected = sel.ToggleBoisson(cfg, id)
	}
	changed := before != r.slot(sel)
	return changed, changed && selected
}

type recapRule struct{}

func (recapRule) price(*Configuration, Item, *Selection) decimal.Decimal { return decimal.Zero }

func (recapRule) choose(*Configuration, *Selection, string) (bool, bool) { return false, false }
