package customizer

import (
	"testing"
)

func TestComputePrice_GaletteWithFourSauces(t *testing.T) {
	cfg := kebabConfig()
	s := NewSession(cfg, sandwich())

	if !s.Choose("galette") {
		t.Fatal("expected base choice to be accepted")
	}
	if !s.Choose("poulet") {
		t.Fatal("expected meat choice to be accepted")
	}
	if !s.Skip() {
		t.Fatal("expected garniture to be skippable")
	}
	for _, id := range []string{"blanche", "algerienne", "samourai", "harissa"} {
		if !s.Choose(id) {
			t.Fatalf("expected sauce %s to be accepted", id)
		}
	}

	assertPrice(t, s.Price(), "6.50")
	assertPrice(t, s.Breakdown().Amount(StepSauces), "0.50")
}

func TestComputePrice(t *testing.T) {
	simple := Item{ProductID: "p-soda", Name: "Soda", Type: ProductSimple, Price: d("3.20")}

	tests := []struct {
		name  string
		item  Item
		build func(sel *Selection)
		want  string
	}{
		{"no base uses configured base price", sandwich(), func(*Selection) {}, "5.00"},
		{"no base uses item price", Item{Type: ProductSandwich, Price: d("5.80")}, func(*Selection) {}, "5.80"},
		{"simple item uses inherent price", simple, func(*Selection) {}, "3.20"},
		{"base overrides base price", sandwich(), func(s *Selection) { s.BaseID = "galette" }, "6.00"},
		{"meat modifiers add", sandwich(), func(s *Selection) {
			s.BaseID = "galette"
			s.ViandeIDs = []string{"merguez"}
		}, "6.50"},
		{"garniture oui is free", sandwich(), func(s *Selection) {
			s.BaseID = "galette"
			s.Garniture["tomate"] = LevelOui
			s.Garniture["oignon"] = LevelOui
		}, "6.00"},
		{"garniture x2 charges modifier", sandwich(), func(s *Selection) {
			s.BaseID = "galette"
			s.Garniture["tomate"] = LevelX2
			s.Garniture["oignon"] = LevelX2
			s.Garniture["salade"] = LevelX2
		}, "6.50"},
		{"three sauces are free", sandwich(), func(s *Selection) {
			s.BaseID = "galette"
			s.SauceIDs = []string{"blanche", "algerienne", "samourai"}
		}, "6.00"},
		{"five sauces charge two", sandwich(), func(s *Selection) {
			s.BaseID = "galette"
			s.SauceIDs = []string{"blanche", "algerienne", "samourai", "harissa", "ketchup"}
		}, "7.00"},
		{"side a la carte", sandwich(), func(s *Selection) {
			s.BaseID = "galette"
			s.Accompagnement = &SideChoice{OptionID: "frites"}
		}, "8.50"},
		{"side included in menu", menu(), func(s *Selection) {
			s.BaseID = "galette"
			s.Accompagnement = &SideChoice{OptionID: "frites"}
		}, "6.00"},
		{"sub-sauce charged a la carte", sandwich(), func(s *Selection) {
			s.BaseID = "galette"
			s.Accompagnement = &SideChoice{OptionID: "frites", SubSauceID: "ketchup"}
		}, "9.00"},
		{"sub-sauce charged in menu", menu(), func(s *Selection) {
			s.BaseID = "galette"
			s.Accompagnement = &SideChoice{OptionID: "frites", SubSauceID: "ketchup"}
		}, "6.50"},
		{"sized side", sandwich(), func(s *Selection) {
			s.BaseID = "galette"
			s.Accompagnement = &SideChoice{OptionID: "potatoes", Size: SizeLarge}
		}, "9.00"},
		{"portion tier adds to side", sandwich(), func(s *Selection) {
			s.BaseID = "galette"
			s.Accompagnement = &SideChoice{OptionID: "riz", Portion: "grande"}
		}, "9.00"},
		{"supplements multiply", sandwich(), func(s *Selection) {
			s.BaseID = "galette"
			s.Supplements["fromage"] = 2
			s.Supplements["oeuf"] = 1
		}, "8.00"},
		{"drink upsell a la carte", sandwich(), func(s *Selection) {
			s.BaseID = "galette"
			s.BoissonID = "coca"
		}, "7.50"},
		{"drink and dessert included in menu", menu(), func(s *Selection) {
			s.BaseID = "galette"
			s.BoissonID = "coca"
			s.DessertID = "tiramisu"
		}, "6.00"},
		{"menu without base uses menu price", menu(), func(*Selection) {}, "9.50"},
		{"stale ids contribute zero", sandwich(), func(s *Selection) {
			s.BaseID = "ghost"
			s.ViandeIDs = []string{"ghost"}
			s.Garniture["ghost"] = LevelX2
			s.SauceIDs = []string{"ghost", "ghost2", "ghost3", "ghost4"}
			s.Accompagnement = &SideChoice{OptionID: "ghost", SubSauceID: "ghost"}
			s.Supplements["ghost"] = 2
			s.BoissonID = "ghost"
		}, "5.00"},
	}

	cfg := kebabConfig()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := NewSelection()
			tt.build(sel)
			assertPrice(t, ComputePrice(cfg, tt.item, sel), tt.want)
		})
	}
}

func TestComputePrice_StandaloneSide(t *testing.T) {
	cfg := kebabConfig()
	item := Item{ProductID: "p-potatoes", Name: "Potatoes", Type: ProductSide, Price: d("2.50")}

	sel := NewSelection()
	assertPrice(t, ComputePrice(cfg, item, sel), "2.50")

	sel.SelectSide(cfg, "potatoes")
	assertPrice(t, ComputePrice(cfg, item, sel), "2.50")

	sel.SetSideSize(cfg, SizeLarge)
	assertPrice(t, ComputePrice(cfg, item, sel), "3.00")

	sel.SetSideSize(cfg, SizeSmall)
	assertPrice(t, ComputePrice(cfg, item, sel), "2.00")
}

func TestComputePrice_DoesNotMutate(t *testing.T) {
	cfg := kebabConfig()
	sel := NewSelection()
	sel.BaseID = "galette"
	sel.SauceIDs = []string{"blanche", "algerienne", "samourai", "harissa"}
	before := sel.Clone()

	first := ComputePrice(cfg, sandwich(), sel)
	second := ComputePrice(cfg, sandwich(), sel)

	if !first.Equal(second) {
		t.Errorf("expected repeated pricing to agree, got %s and %s", first, second)
	}
	if len(sel.SauceIDs) != len(before.SauceIDs) || sel.BaseID != before.BaseID {
		t.Error("expected selection to be left untouched")
	}
}

func TestBreakdown_SumsToTotal(t *testing.T) {
	cfg := kebabConfig()
	sel := NewSelection()
	sel.BaseID = "galette"
	sel.ViandeIDs = []string{"merguez"}
	sel.Garniture["tomate"] = LevelX2
	sel.SauceIDs = []string{"blanche", "algerienne", "samourai", "harissa"}
	sel.Accompagnement = &SideChoice{OptionID: "frites", SubSauceID: "ketchup"}
	sel.Supplements["fromage"] = 1
	sel.BoissonID = "eau"

	b := Breakdown(cfg, sandwich(), sel)

	sum := d("0")
	for _, line := range b.Lines {
		sum = sum.Add(line.Amount)
	}
	if !sum.Equal(b.Total) {
		t.Errorf("expected lines to sum to total %s, got %s", b.Total, sum)
	}
	// 6.00 + 0.50 + 0.30 + 0.50 + (2.50 + 0.50) + 0.50 + 1.00
	assertPrice(t, b.Total, "11.80")
	assertPrice(t, b.Amount(StepAccompagnement), "3.00")
	assertPrice(t, b.Amount(StepRecap), "0")
}

func TestLineTotal(t *testing.T) {
	cfg := kebabConfig()
	sel := NewSelection()
	sel.BaseID = "galette"
	sel.SauceIDs = []string{"blanche", "algerienne", "samourai", "harissa"}
	sel.SetQuantity(3)

	assertPrice(t, LineTotal(cfg, sandwich(), sel), "19.50")
}

func TestSauceSplit_FirstSelectedAreFree(t *testing.T) {
	cfg := kebabConfig()
	sel := NewSelection()
	sel.SauceIDs = []string{"harissa", "ghost", "blanche", "samourai", "ketchup"}

	free, paid := SauceSplit(cfg, sel)

	if len(free) != 3 || free[0] != "harissa" || free[1] != "blanche" || free[2] != "samourai" {
		t.Errorf("unexpected free sauces %v", free)
	}
	if len(paid) != 1 || paid[0] != "ketchup" {
		t.Errorf("unexpected paid sauces %v", paid)
	}
}

func TestSidePrice_SizeFallbacks(t *testing.T) {
	withDefault := &Option{ID: "x", HasSizes: true, PriceMedium: dp("2.50"), PriceDefault: dp("2.20")}
	noPrices := &Option{ID: "y", HasSizes: true}

	assertPrice(t, sidePrice(withDefault, &SideChoice{Size: SizeMedium}), "2.50")
	assertPrice(t, sidePrice(withDefault, &SideChoice{Size: SizeLarge}), "2.20")
	assertPrice(t, sidePrice(noPrices, &SideChoice{Size: SizeLarge}), "0")
}

func TestSubSaucePrice_FreeAllowance(t *testing.T) {
	cfg := kebabConfig()
	cfg.FreeSaucesFrites = 1
	sel := NewSelection()
	sel.Accompagnement = &SideChoice{OptionID: "frites", SubSauceID: "ketchup"}

	assertPrice(t, SubSaucePrice(cfg, sel), "0")

	cfg.FreeSaucesFrites = 0
	assertPrice(t, SubSaucePrice(cfg, sel), "0.50")
}
