package customizer

import (
	"github.com/shopspring/decimal"
)

// ProductType drives step applicability and bundle pricing
type ProductType string

const (
	ProductSandwich ProductType = "sandwich"
	ProductMenu     ProductType = "menu"
	ProductSide     ProductType = "side"
	ProductSimple   ProductType = "simple"
	ProductDrink    ProductType = "drink"
	ProductDessert  ProductType = "dessert"
)

// Valid reports whether t is a known product type
func (t ProductType) Valid() bool {
	switch t {
	case ProductSandwich, ProductMenu, ProductSide, ProductSimple, ProductDrink, ProductDessert:
		return true
	}
	return false
}

// Bundled reports whether side dish and upsells are included at no charge
func (t ProductType) Bundled() bool {
	return t == ProductMenu
}

// Composite reports whether the product is built from a base and meats
func (t ProductType) Composite() bool {
	return t == ProductSandwich || t == ProductMenu
}

// Item is the catalog product being customized
type Item struct {
	ProductID        string            `json:"product_id"`
	Name             string            `json:"name"`
	NameTranslations map[string]string `json:"name_translations,omitempty"`
	Type             ProductType       `json:"type"`
	Price            decimal.Decimal   `json:"price"`
}

// standalonePrice is the price of the item before a base is chosen
func standalonePrice(cfg *Configuration, item Item) decimal.Decimal {
	if item.Type.Composite() && item.Price.IsZero() {
		return cfg.BasePrice
	}
	return item.Price
}

// BreakdownLine is the amount one step contributes to the unit price
type BreakdownLine struct {
	Step   StepKind        `json:"step"`
	Amount decimal.Decimal `json:"amount"`
}

// PriceBreakdown is the per-step decomposition of a unit price
type PriceBreakdown struct {
	Lines []BreakdownLine `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// Amount returns the amount contributed by one step
func (b PriceBreakdown) Amount(kind StepKind) decimal.Decimal {
	for _, line := range b.Lines {
		if line.Step == kind {
			return line.Amount
		}
	}
	return decimal.Zero
}

// Breakdown prices every component of the selection. Components are additive;
// the order below only fixes the order of the returned lines.
func Breakdown(cfg *Configuration, item Item, sel *Selection) PriceBreakdown {
	var b PriceBreakdown
	total := decimal.Zero
	for _, kind := range pricingOrder {
		amount := rules[kind].price(cfg, item, sel)
		b.Lines = append(b.Lines, BreakdownLine{Step: kind, Amount: amount})
		total = total.Add(amount)
	}
	b.Total = total
	return b
}

// ComputePrice returns the unit price of the selection. It is pure and safe to
// call after every mutation.
func ComputePrice(cfg *Configuration, item Item, sel *Selection) decimal.Decimal {
	return Breakdown(cfg, item, sel).Total
}

// LineTotal multiplies the unit price by the selection quantity
func LineTotal(cfg *Configuration, item Item, sel *Selection) decimal.Decimal {
	qty := sel.Quantity
	if qty < 1 {
		qty = 1
	}
	return ComputePrice(cfg, item, sel).Mul(decimal.NewFromInt(int64(qty)))
}

// SauceSplit returns the selected sauces split into free and paid, by
// selection order. Stale ids are dropped.
func SauceSplit(cfg *Configuration, sel *Selection) (free, paid []string) {
	for _, id := range sel.SauceIDs {
		if _, ok := cfg.Option(StepSauces, id); !ok {
			continue
		}
		if len(free) < cfg.FreeSaucesSandwich {
			free = append(free, id)
		} else {
			paid = append(paid, id)
		}
	}
	return free, paid
}

// extraSauces prices count sauces against a free allowance
func extraSauces(cfg *Configuration, count, free int) decimal.Decimal {
	extra := count - free
	if extra <= 0 {
		return decimal.Zero
	}
	return cfg.ExtraSaucePrice.Mul(decimal.NewFromInt(int64(extra)))
}

// sidePrice resolves the price of a side dish from whichever pricing shape its
// option uses. Missing price fields count as zero.
func sidePrice(opt *Option, side *SideChoice) decimal.Decimal {
	if opt.HasSizes {
		var p *decimal.Decimal
		switch side.Size {
		case SizeSmall:
			p = opt.PriceSmall
		case SizeMedium:
			p = opt.PriceMedium
		case SizeLarge:
			p = opt.PriceLarge
		}
		if p == nil {
			p = opt.PriceDefault
		}
		if p == nil {
			return decimal.Zero
		}
		return *p
	}

	price := opt.PriceModifier
	if opt.PriceDefault != nil {
		price = *opt.PriceDefault
	}
	if portion, ok := opt.Portion(side.Portion); ok {
		price = price.Add(portion.PriceModifier)
	}
	return price
}

// subSauceCount is 1 when the side carries a known sub-sauce
func subSauceCount(cfg *Configuration, side *SideChoice) int {
	if side == nil || side.SubSauceID == "" {
		return 0
	}
	if _, ok := cfg.Option(StepSauces, side.SubSauceID); !ok {
		return 0
	}
	return 1
}

// SubSaucePrice prices the side dish sub-sauce against free_sauces_frites,
// independently of the sandwich sauce count
func SubSaucePrice(cfg *Configuration, sel *Selection) decimal.Decimal {
	return extraSauces(cfg, subSauceCount(cfg, sel.Accompagnement), cfg.FreeSaucesFrites)
}
