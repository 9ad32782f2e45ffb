package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/galettery/galettery/internal/customizer"
	"github.com/galettery/galettery/internal/services"
	"github.com/galettery/galettery/internal/testutil"
)

func TestSessionService_GalettePricing(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()

	id := s.galettePoulet(t, "blanche", "algerienne", "samourai", "harissa")

	view, err := s.sessions.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !view.UnitPrice.Equal(decimal.RequireFromString("6.50")) {
		t.Errorf("expected 6.50, got %s", view.UnitPrice)
	}
	if got := view.Breakdown.Amount(customizer.StepSauces); !got.Equal(decimal.RequireFromString("0.50")) {
		t.Errorf("expected one paid sauce at 0.50, got %s", got)
	}
	if view.Cursor != 3 {
		t.Errorf("expected cursor on sauces (3), got %d", view.Cursor)
	}
	if !view.CanConfirm || len(view.Remaining) != 0 {
		t.Errorf("expected confirmable session, remaining %v", view.Remaining)
	}
	if !view.Steps[2].Complete {
		t.Error("skipped optional garniture should count as complete")
	}

	// choosing a held sauce removes it
	v, err := s.sessions.Apply(ctx, id, services.Action{Type: services.ActionChoose, OptionID: "blanche"})
	if err != nil {
		t.Fatal(err)
	}
	if !v.Applied || len(v.Selection.SauceIDs) != 3 {
		t.Errorf("expected re-choosing a sauce to toggle it off, got %v", v.Selection.SauceIDs)
	}
}

func TestSessionService_RefusedActions(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()

	view, err := s.sessions.Open(ctx, s.restaurant.ID, s.sandwich.ID, "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if view.Cursor != 0 || view.AtRecap {
		t.Fatalf("expected session on first step, got cursor %d", view.Cursor)
	}
	if !view.UnitPrice.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("expected base price 5.00 before any choice, got %s", view.UnitPrice)
	}

	tests := []struct {
		name   string
		action services.Action
	}{
		{"continue required step", services.Action{Type: services.ActionContinue}},
		{"skip required step", services.Action{Type: services.ActionSkip}},
		{"back on first step", services.Action{Type: services.ActionBack}},
		{"unknown option", services.Action{Type: services.ActionChoose, OptionID: "pizza"}},
		{"goto unreached step", services.Action{Type: services.ActionGoTo, Step: 4}},
		{"unknown supplement", services.Action{Type: services.ActionSupplement, OptionID: "caviar", Delta: 1}},
		{"size without side", services.Action{Type: services.ActionSideSize, Value: "large"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := s.sessions.Apply(ctx, view.ID, tt.action)
			if err != nil {
				t.Fatalf("refused actions are not errors, got %v", err)
			}
			if v.Applied {
				t.Error("expected action to be refused")
			}
			if v.Cursor != 0 {
				t.Errorf("expected cursor to stay at 0, got %d", v.Cursor)
			}
		})
	}

	if _, err := s.sessions.Apply(ctx, view.ID, services.Action{Type: "teleport"}); err != services.ErrUnknownAction {
		t.Errorf("expected ErrUnknownAction, got %v", err)
	}
	if _, err := s.sessions.Apply(ctx, "missing", services.Action{Type: services.ActionBack}); err != services.ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionService_Navigation(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	id := s.galettePoulet(t, "blanche")

	apply := func(a services.Action) *services.SessionView {
		t.Helper()
		v, err := s.sessions.Apply(ctx, id, a)
		if err != nil {
			t.Fatalf("Apply %+v failed: %v", a, err)
		}
		return v
	}

	v := apply(services.Action{Type: services.ActionContinue})
	if v.Cursor != 4 {
		t.Fatalf("expected accompagnement, got cursor %d", v.Cursor)
	}
	v = apply(services.Action{Type: services.ActionGoTo, Step: 0})
	if !v.Applied || v.Cursor != 0 {
		t.Fatalf("expected jump back to base, got %+v", v)
	}
	if len(v.Selection.SauceIDs) != 1 {
		t.Error("jumping back must keep later selections")
	}
	v = apply(services.Action{Type: services.ActionGoTo, Step: 4})
	if !v.Applied || v.Cursor != 4 {
		t.Errorf("expected jump forward to a reached step, got cursor %d", v.Cursor)
	}

	v = apply(services.Action{Type: services.ActionSupplement, OptionID: "fromage", Delta: 1})
	if v.Applied {
		t.Error("expected supplement refused outside the supplements step")
	}
	v = apply(services.Action{Type: services.ActionSkip})
	if v.Cursor != 5 {
		t.Fatalf("expected supplements, got cursor %d", v.Cursor)
	}
	v = apply(services.Action{Type: services.ActionSupplement, OptionID: "fromage", Delta: 5})
	if !v.Applied || v.Selection.Supplements["fromage"] != 2 {
		t.Errorf("expected supplement clamped to 2, got %v", v.Selection.Supplements)
	}
	v = apply(services.Action{Type: services.ActionSupplement, OptionID: "fromage", Delta: 1})
	if v.Applied {
		t.Error("expected supplement at cap to be refused")
	}
	if !v.UnitPrice.Equal(decimal.RequireFromString("7.00")) {
		t.Errorf("expected 6.00 + 2 x 0.50 = 7.00, got %s", v.UnitPrice)
	}

	v = apply(services.Action{Type: services.ActionQuantity, Quantity: 3})
	if !v.Applied || !v.LineTotal.Equal(decimal.RequireFromString("21.00")) {
		t.Errorf("expected line total 21.00, got %s", v.LineTotal)
	}
	v = apply(services.Action{Type: services.ActionQuantity, Quantity: 3})
	if v.Applied {
		t.Error("expected unchanged quantity to report not applied")
	}

	v = apply(services.Action{Type: services.ActionReset})
	if !v.Applied || v.Cursor != 0 || v.CanConfirm {
		t.Errorf("expected reset session, got %+v", v)
	}
}

func TestSessionService_Confirm(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()

	view, err := s.sessions.Open(ctx, s.restaurant.ID, s.sandwich.ID, "fr")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.sessions.Confirm(ctx, view.ID); err != services.ErrSessionIncomplete {
		t.Errorf("expected ErrSessionIncomplete, got %v", err)
	}

	id := s.galettePoulet(t, "blanche")
	if _, err := s.sessions.Apply(ctx, id, services.Action{Type: services.ActionQuantity, Quantity: 2}); err != nil {
		t.Fatal(err)
	}
	lines, err := s.sessions.Confirm(ctx, id)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 identical lines, got %d", len(lines))
	}
	for _, l := range lines {
		if l.Name != "Galette Poulet" || l.ProductID != s.sandwich.ID {
			t.Errorf("unexpected line %+v", l)
		}
		if !l.UnitPrice.Equal(decimal.RequireFromString("6.00")) {
			t.Errorf("expected 6.00, got %s", l.UnitPrice)
		}
	}
	lines[0].Choices.Sauces[0].Name = "changed"
	if lines[1].Choices.Sauces[0].Name != "Blanche" {
		t.Error("lines must not share their choices")
	}

	after, err := s.sessions.Get(ctx, id)
	if err != nil {
		t.Fatalf("confirmed session should stay registered: %v", err)
	}
	if after.Cursor != 0 || after.CanConfirm {
		t.Errorf("expected session reset after confirm, got cursor %d", after.Cursor)
	}
}

func TestSessionService_Open(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()

	other := testutil.SeedRestaurant(t, s.repo, "pizzeria", "pizza")
	sold := testutil.SeedProduct(t, s.repo, s.restaurant.ID, "Tacos", customizer.ProductSandwich, "7.00")
	if err := s.catalog.SetProductAvailability(ctx, sold.ID, false); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name         string
		restaurantID string
		productID    string
		wantErr      error
	}{
		{"other restaurant", other.ID, s.sandwich.ID, services.ErrProductUnavailable},
		{"sold out", s.restaurant.ID, sold.ID, services.ErrProductUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.sessions.Open(ctx, tt.restaurantID, tt.productID, "fr")
			if err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := s.sessions.Open(ctx, s.restaurant.ID, "missing", "fr"); err == nil {
		t.Error("expected error for unknown product")
	}

	drink, err := s.sessions.Open(ctx, s.restaurant.ID, s.drink.ID, "fr")
	if err != nil {
		t.Fatal(err)
	}
	if len(drink.Steps) != 0 || !drink.AtRecap || !drink.CanConfirm {
		t.Errorf("expected a drink to need no customization, got %+v", drink)
	}
	if !drink.UnitPrice.Equal(decimal.RequireFromString("1.50")) {
		t.Errorf("expected 1.50, got %s", drink.UnitPrice)
	}
}

func TestSessionService_Locale(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()

	tests := []struct {
		accept     string
		wantLocale string
		wantMeat   string
	}{
		{"en-US,en;q=0.9", "en", "Chicken"},
		{"fr-FR", "fr", "Poulet"},
		{"de", "fr", "Poulet"},
		{"", "fr", "Poulet"},
	}
	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			view, err := s.sessions.Open(ctx, s.restaurant.ID, s.sandwich.ID, tt.accept)
			if err != nil {
				t.Fatal(err)
			}
			if view.Locale != tt.wantLocale {
				t.Errorf("expected locale %s, got %s", tt.wantLocale, view.Locale)
			}
			if got := view.Steps[1].Options[0].Name; got != tt.wantMeat {
				t.Errorf("expected %s, got %s", tt.wantMeat, got)
			}
		})
	}
}

func TestSessionService_Sweep(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.sessions.SetClock(func() time.Time { return now })

	stale, _ := s.sessions.Open(ctx, s.restaurant.ID, s.sandwich.ID, "fr")
	now = now.Add(20 * time.Minute)
	fresh, _ := s.sessions.Open(ctx, s.restaurant.ID, s.sandwich.ID, "fr")
	now = now.Add(15 * time.Minute)

	if removed := s.sessions.Sweep(); removed != 1 {
		t.Fatalf("expected 1 expired session, got %d", removed)
	}
	if s.sessions.Count() != 1 {
		t.Errorf("expected 1 session left, got %d", s.sessions.Count())
	}
	if _, err := s.sessions.Get(ctx, stale.ID); err != services.ErrSessionNotFound {
		t.Errorf("expected stale session gone, got %v", err)
	}
	if _, err := s.sessions.Get(ctx, fresh.ID); err != nil {
		t.Errorf("expected fresh session kept, got %v", err)
	}

	if err := s.sessions.Cancel(ctx, fresh.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.sessions.Cancel(ctx, fresh.ID); err != services.ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound on second cancel, got %v", err)
	}
}

func TestSessionService_StartSweeper(t *testing.T) {
	s := newShop(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.sessions.StartSweeper(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
