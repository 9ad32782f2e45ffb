package customizer

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func intPtr(n int) *int {
	return &n
}

func assertPrice(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("expected price %s, got %s", want, got.StringFixed(2))
	}
}

// kebabConfig is a snack-style setup exercising every step kind
func kebabConfig() *Configuration {
	return &Configuration{
		BasePrice:           d("5.00"),
		FreeSaucesSandwich:  3,
		FreeSaucesFrites:    0,
		ExtraSaucePrice:     d("0.50"),
		EnableBoissonUpsell: true,
		Steps: []Step{
			{
				ID: StepBase, Title: "Base", Type: StepSingle, Required: true,
				Options: []Option{
					{ID: "galette", Name: "Galette", NameTranslations: map[string]string{"en": "Wrap"}, PriceModifier: d("6.00")},
					{ID: "assiette", Name: "Assiette", PriceModifier: d("8.00"), AllowMultiMeat: true},
					{ID: "duo", Name: "Duo", PriceModifier: d("7.00"), AllowMultiMeat: true, MaxViandes: 2},
				},
			},
			{
				ID: StepViande, Title: "Viande", Type: StepSingle, Required: true,
				Options: []Option{
					{ID: "poulet", Name: "Poulet", NameTranslations: map[string]string{"en": "Chicken"}},
					{ID: "boeuf", Name: "Boeuf"},
					{ID: "merguez", Name: "Merguez", PriceModifier: d("0.50")},
					{ID: "kefta", Name: "Kefta"},
				},
			},
			{
				ID: StepGarniture, Title: "Garniture", Type: StepMultiple,
				Options: []Option{
					{ID: "salade", Name: "Salade"},
					{ID: "tomate", Name: "Tomate", PriceModifier: d("0.30")},
					{ID: "oignon", Name: "Oignon", PriceModifier: d("0.20")},
				},
			},
			{
				ID: StepSauces, Title: "Sauces", Type: StepMultiple, MaxSelections: intPtr(4),
				Options: []Option{
					{ID: "blanche", Name: "Blanche"},
					{ID: "algerienne", Name: "Algerienne"},
					{ID: "samourai", Name: "Samourai"},
					{ID: "harissa", Name: "Harissa"},
					{ID: "ketchup", Name: "Ketchup"},
				},
			},
			{
				ID: StepAccompagnement, Title: "Accompagnement", Type: StepSingle,
				Options: []Option{
					{ID: "frites", Name: "Frites", PriceModifier: d("2.50"), HasSubSauce: true},
					{ID: "potatoes", Name: "Potatoes", HasSizes: true, PriceSmall: dp("2.00"), PriceMedium: dp("2.50"), PriceLarge: dp("3.00")},
					{ID: "riz", Name: "Riz", PriceDefault: dp("2.00"), PortionOptions: []Portion{
						{ID: "normal", Label: "Normale"},
						{ID: "grande", Label: "Grande", PriceModifier: d("1.00")},
					}},
					{ID: "salade_verte", Name: "Salade verte", PriceModifier: d("1.50")},
				},
			},
			{
				ID: StepSupplements, Title: "Suppléments", Type: StepMultiple,
				Options: []Option{
					{ID: "fromage", Name: "Fromage", PriceModifier: d("0.50"), MaxQty: 2},
					{ID: "oeuf", Name: "Oeuf", PriceModifier: d("1.00")},
				},
			},
			{
				ID: StepBoisson, Title: "Boisson", Type: StepSingle,
				Options: []Option{
					{ID: "coca", Name: "Coca", PriceModifier: d("1.50")},
					{ID: "eau", Name: "Eau", PriceModifier: d("1.00")},
				},
			},
			{
				ID: StepDessert, Title: "Dessert", Type: StepSingle,
				Options: []Option{
					{ID: "tiramisu", Name: "Tiramisu", PriceModifier: d("3.00")},
				},
			},
			{ID: StepRecap, Title: "Récapitulatif", Type: StepSingle},
		},
	}
}

func sandwich() Item {
	return Item{ProductID: "p-sandwich", Name: "Sandwich", Type: ProductSandwich}
}

func menu() Item {
	return Item{ProductID: "p-menu", Name: "Menu", NameTranslations: map[string]string{"en": "Meal"}, Type: ProductMenu, Price: d("9.50")}
}
