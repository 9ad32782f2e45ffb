package customizer

import (
	"reflect"
	"testing"
)

func TestNextGarnitureLevel(t *testing.T) {
	tests := []struct {
		in   Level
		want Level
	}{
		{LevelNon, LevelOui},
		{LevelOui, LevelX2},
		{LevelX2, LevelNon},
		{"", LevelOui},
		{"triple", LevelOui},
	}
	for _, tt := range tests {
		if got := NextGarnitureLevel(tt.in); got != tt.want {
			t.Errorf("NextGarnitureLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClampSupplementQty(t *testing.T) {
	tests := []struct {
		qty, delta, max, want int
	}{
		{0, 1, 3, 1},
		{2, 1, 3, 3},
		{3, 1, 3, 3},
		{0, -1, 3, 0},
		{1, -5, 3, 0},
		{0, 10, 2, 2},
	}
	for _, tt := range tests {
		if got := ClampSupplementQty(tt.qty, tt.delta, tt.max); got != tt.want {
			t.Errorf("ClampSupplementQty(%d, %d, %d) = %d, want %d", tt.qty, tt.delta, tt.max, got, tt.want)
		}
	}
}

func TestCycleGarniture_ReturnsToNon(t *testing.T) {
	cfg := kebabConfig()
	sel := NewSelection()

	for i, want := range []Level{LevelOui, LevelX2, LevelNon} {
		got, ok := sel.CycleGarniture(cfg, "tomate")
		if !ok {
			t.Fatalf("cycle %d refused", i)
		}
		if got != want {
			t.Errorf("cycle %d: expected %q, got %q", i, want, got)
		}
	}
	if _, present := sel.Garniture["tomate"]; present {
		t.Error("expected tomate to be removed once back to non")
	}
	if sel.Has(StepGarniture) {
		t.Error("expected garniture step to be empty")
	}
	if _, ok := sel.CycleGarniture(cfg, "ghost"); ok {
		t.Error("expected unknown garniture to be refused")
	}
}

func TestToggleAllGarnitures(t *testing.T) {
	cfg := kebabConfig()
	sel := NewSelection()
	sel.Garniture["tomate"] = LevelX2

	sel.ToggleAllGarnitures(cfg)
	for _, id := range []string{"salade", "tomate", "oignon"} {
		if sel.GarnitureLevel(id) != LevelOui {
			t.Errorf("expected %s to be oui, got %q", id, sel.GarnitureLevel(id))
		}
	}

	sel.ToggleAllGarnitures(cfg)
	if sel.Has(StepGarniture) {
		t.Error("expected second toggle to clear every garniture")
	}
}

func TestChooseViande_SingleMeatReplaces(t *testing.T) {
	cfg := kebabConfig()
	sel := NewSelection()
	sel.SelectBase(cfg, "galette")

	sel.ChooseViande(cfg, "poulet")
	sel.ChooseViande(cfg, "boeuf")
	if !reflect.DeepEqual(sel.ViandeIDs, []string{"boeuf"}) {
		t.Errorf("expected replacement, got %v", sel.ViandeIDs)
	}

	sel.ChooseViande(cfg, "boeuf")
	if len(sel.ViandeIDs) != 0 {
		t.Errorf("expected re-choosing to clear, got %v", sel.ViandeIDs)
	}
}

func TestChooseViande_MultiMeatCap(t *testing.T) {
	cfg := kebabConfig()
	sel := NewSelection()
	sel.SelectBase(cfg, "assiette")

	for _, id := range []string{"poulet", "boeuf", "merguez"} {
		if !sel.ChooseViande(cfg, id) {
			t.Fatalf("expected %s to be accepted", id)
		}
	}
	if sel.ChooseViande(cfg, "kefta") {
		t.Error("expected fourth meat to be refused")
	}
	if !reflect.DeepEqual(sel.ViandeIDs, []string{"poulet", "boeuf", "merguez"}) {
		t.Errorf("expected refused addition to leave meats untouched, got %v", sel.ViandeIDs)
	}

	// deselecting frees a slot
	sel.ChooseViande(cfg, "boeuf")
	if !sel.ChooseViande(cfg, "kefta") {
		t.Error("expected kefta to fit once boeuf is removed")
	}
}

func TestSelectBase_TruncatesMeats(t *testing.T) {
	cfg := kebabConfig()
	sel := NewSelection()
	sel.SelectBase(cfg, "assiette")
	sel.ChooseViande(cfg, "poulet")
	sel.ChooseViande(cfg, "boeuf")
	sel.ChooseViande(cfg, "merguez")

	sel.SelectBase(cfg, "duo")
	if !reflect.DeepEqual(sel.ViandeIDs, []string{"poulet", "boeuf"}) {
		t.Errorf("expected first two meats kept, got %v", sel.ViandeIDs)
	}

	sel.SelectBase(cfg, "galette")
	if !reflect.DeepEqual(sel.ViandeIDs, []string{"poulet"}) {
		t.Errorf("expected first meat kept, got %v", sel.ViandeIDs)
	}

	if sel.SelectBase(cfg, "ghost") {
		t.Error("expected unknown base to be refused")
	}
	if sel.BaseID != "galette" {
		t.Errorf("expected base unchanged, got %q", sel.BaseID)
	}
}

func TestToggleSauce_CapRefusesWithoutDisplacing(t *testing.T) {
	cfg := kebabConfig()
	sel := NewSelection()
	order := []string{"blanche", "algerienne", "samourai", "harissa"}
	for _, id := range order {
		if !sel.ToggleSauce(cfg, id) {
			t.Fatalf("expected %s to be accepted", id)
		}
	}
	if sel.ToggleSauce(cfg, "ketchup") {
		t.Error("expected fifth sauce to be refused")
	}
	if !reflect.DeepEqual(sel.SauceIDs, order) {
		t.Errorf("expected sauces unchanged, got %v", sel.SauceIDs)
	}

	sel.ToggleSauce(cfg, "algerienne")
	if !reflect.DeepEqual(sel.SauceIDs, []string{"blanche", "samourai", "harissa"}) {
		t.Errorf("expected algerienne removed in place, got %v", sel.SauceIDs)
	}
}

func TestSauceCap_Default(t *testing.T) {
	cfg := kebabConfig()
	step, _ := cfg.Step(StepSauces)
	step.MaxSelections = nil

	if got := SauceCap(cfg); got != DefaultMaxSauces {
		t.Errorf("expected default cap %d, got %d", DefaultMaxSauces, got)
	}
}

func TestSelectSide(t *testing.T) {
	cfg := kebabConfig()
	sel := NewSelection()

	if !sel.SelectSide(cfg, "riz") {
		t.Fatal("expected riz to be selected")
	}
	if sel.Accompagnement.Portion != "normal" {
		t.Errorf("expected first portion by default, got %q", sel.Accompagnement.Portion)
	}

	if !sel.SelectSide(cfg, "potatoes") {
		t.Fatal("expected potatoes to replace riz")
	}
	if sel.Accompagnement.OptionID != "potatoes" || sel.Accompagnement.Portion != "" {
		t.Errorf("expected wholesale replacement, got %+v", sel.Accompagnement)
	}
	if sel.Accompagnement.Size != SizeMedium {
		t.Errorf("expected medium size by default, got %q", sel.Accompagnement.Size)
	}

	if sel.SelectSide(cfg, "potatoes") {
		t.Error("expected re-choosing to deselect")
	}
	if sel.Accompagnement != nil {
		t.Errorf("expected side cleared, got %+v", sel.Accompagnement)
	}
}

func TestSideSubChoices(t *testing.T) {
	cfg := kebabConfig()
	sel := NewSelection()

	if sel.SetSideSubSauce(cfg, "ketchup") {
		t.Error("expected sub-sauce to be refused without a side")
	}

	sel.SelectSide(cfg, "frites")
	if !sel.SetSideSubSauce(cfg, "ketchup") {
		t.Fatal("expected sub-sauce to be accepted")
	}
	if sel.SetSideSubSauce(cfg, "ghost") {
		t.Error("expected unknown sub-sauce to be refused")
	}
	sel.SetSideSubSauce(cfg, "ketchup")
	if sel.Accompagnement.SubSauceID != "" {
		t.Error("expected same sub-sauce to toggle off")
	}
	if sel.SetSideSize(cfg, SizeLarge) {
		t.Error("expected size to be refused on a side without sizes")
	}

	sel.SelectSide(cfg, "riz")
	if sel.SetSideSubSauce(cfg, "ketchup") {
		t.Error("expected sub-sauce to be refused on a side without one")
	}
	if !sel.SetSidePortion(cfg, "grande") {
		t.Error("expected grande portion to be accepted")
	}
	if sel.SetSidePortion(cfg, "xxl") {
		t.Error("expected unknown portion to be refused")
	}
}

func TestAdjustSupplement(t *testing.T) {
	cfg := kebabConfig()
	sel := NewSelection()

	for i := 0; i < 3; i++ {
		sel.AdjustSupplement(cfg, "fromage", 1)
	}
	if got := sel.Supplements["fromage"]; got != 2 {
		t.Errorf("expected fromage capped at 2, got %d", got)
	}
	for i := 0; i < 4; i++ {
		sel.AdjustSupplement(cfg, "oeuf", 1)
	}
	if got := sel.Supplements["oeuf"]; got != DefaultMaxSupplementQty {
		t.Errorf("expected oeuf capped at default %d, got %d", DefaultMaxSupplementQty, got)
	}

	sel.AdjustSupplement(cfg, "fromage", -5)
	if _, present := sel.Supplements["fromage"]; present {
		t.Error("expected fromage removed at zero")
	}
	if got := sel.AdjustSupplement(cfg, "ghost", 1); got != 0 {
		t.Errorf("expected unknown supplement ignored, got %d", got)
	}
}

func TestToggleBoisson(t *testing.T) {
	cfg := kebabConfig()
	sel := NewSelection()

	if !sel.ToggleBoisson(cfg, "coca") {
		t.Fatal("expected coca to be selected")
	}
	if !sel.ToggleBoisson(cfg, "eau") || sel.BoissonID != "eau" {
		t.Errorf("expected eau to replace coca, got %q", sel.BoissonID)
	}
	if sel.ToggleBoisson(cfg, "eau") || sel.BoissonID != "" {
		t.Errorf("expected eau to toggle off, got %q", sel.BoissonID)
	}
}

func TestClone_IsDeep(t *testing.T) {
	cfg := kebabConfig()
	sel := NewSelection()
	sel.ToggleSauce(cfg, "blanche")
	sel.CycleGarniture(cfg, "salade")
	sel.SelectSide(cfg, "frites")

	c := sel.Clone()
	c.ToggleSauce(cfg, "harissa")
	c.CycleGarniture(cfg, "salade")
	c.SetSideSubSauce(cfg, "ketchup")

	if len(sel.SauceIDs) != 1 {
		t.Errorf("expected original sauces untouched, got %v", sel.SauceIDs)
	}
	if sel.GarnitureLevel("salade") != LevelOui {
		t.Errorf("expected original garniture untouched, got %q", sel.GarnitureLevel("salade"))
	}
	if sel.Accompagnement.SubSauceID != "" {
		t.Error("expected original side untouched")
	}
}
