package services_test

import (
	"context"
	"io"
	"testing"

	"github.com/galettery/galettery/internal/customizer"
	"github.com/galettery/galettery/internal/events"
	"github.com/galettery/galettery/internal/logger"
	"github.com/galettery/galettery/internal/models"
	"github.com/galettery/galettery/internal/repository"
	"github.com/galettery/galettery/internal/services"
	"github.com/galettery/galettery/internal/testutil"
	"github.com/galettery/galettery/pkg/backend"
)

func quietLogger() logger.Logger {
	return logger.NewWithOptions(logger.Options{Output: io.Discard})
}

// recordingBroadcaster captures broadcasts
type recordingBroadcaster struct {
	statuses []bool
	orders   []string
}

func (b *recordingBroadcaster) BroadcastOrderingStatus(restaurantID string, open bool) {
	b.statuses = append(b.statuses, open)
}

func (b *recordingBroadcaster) BroadcastOrder(eventType string, order *models.Order) {
	b.orders = append(b.orders, eventType)
}

// shop is a restaurant with the galette configuration and a small catalog
type shop struct {
	repo        repository.FullRepository
	catalog     *services.CatalogService
	settings    *services.SettingsService
	sessions    *services.SessionService
	orders      *services.OrderService
	events      *events.Recorder
	broadcaster *recordingBroadcaster
	restaurant  *models.Restaurant
	sandwich    *models.Product
	menu        *models.Product
	drink       *models.Product
}

func newShop(t *testing.T) *shop {
	t.Helper()
	return newShopWithRepo(t, testutil.NewTestRepository(t))
}

func newShopWithRepo(t *testing.T, repo repository.FullRepository) *shop {
	t.Helper()
	ctx := context.Background()
	log := quietLogger()

	s := &shop{repo: repo, events: &events.Recorder{}, broadcaster: &recordingBroadcaster{}}
	s.catalog = services.NewCatalogService(log, repo, backend.NewMockClient())
	s.settings = services.NewSettingsService(log, repo)
	s.settings.SetBroadcaster(s.broadcaster)
	s.sessions = services.NewSessionService(log, s.catalog, 0)
	s.orders = services.NewOrderService(log, repo, s.catalog, s.settings, s.events)
	s.orders.SetBroadcaster(s.broadcaster)

	s.restaurant = testutil.SeedRestaurant(t, repo, "chez-momo", "kebab")
	if _, err := s.catalog.SaveConfiguration(ctx, s.restaurant.ID, []byte(testutil.GaletteConfigYAML)); err != nil {
		t.Fatalf("SaveConfiguration failed: %v", err)
	}
	s.sandwich = testutil.SeedProduct(t, repo, s.restaurant.ID, "Sandwich", customizer.ProductSandwich, "0")
	s.menu = testutil.SeedProduct(t, repo, s.restaurant.ID, "Menu", customizer.ProductMenu, "9.50")
	s.drink = testutil.SeedProduct(t, repo, s.restaurant.ID, "Coca", customizer.ProductDrink, "1.50")
	return s
}

// galettePoulet opens a sandwich session and walks it to galette, poulet and
// the given sauces
func (s *shop) galettePoulet(t *testing.T, sauces ...string) string {
	t.Helper()
	ctx := context.Background()

	view, err := s.sessions.Open(ctx, s.restaurant.ID, s.sandwich.ID, "fr")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	id := view.ID
	actions := []services.Action{
		{Type: services.ActionChoose, OptionID: "galette"},
		{Type: services.ActionChoose, OptionID: "poulet"},
		{Type: services.ActionSkip},
	}
	for _, sauce := range sauces {
		actions = append(actions, services.Action{Type: services.ActionChoose, OptionID: sauce})
	}
	for _, a := range actions {
		v, err := s.sessions.Apply(ctx, id, a)
		if err != nil {
			t.Fatalf("Apply %+v failed: %v", a, err)
		}
		if !v.Applied {
			t.Fatalf("expected %+v to be applied", a)
		}
	}
	return id
}

// cartWith creates a cart holding the confirmed lines of a session
func (s *shop) cartWith(t *testing.T, sessionID string) *models.Order {
	t.Helper()
	ctx := context.Background()

	lines, err := s.sessions.Confirm(ctx, sessionID)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	cart, err := s.orders.CreateCart(ctx, s.restaurant.ID, "fr")
	if err != nil {
		t.Fatalf("CreateCart failed: %v", err)
	}
	cart, err = s.orders.AddLines(ctx, s.restaurant.ID, cart.ID, lines)
	if err != nil {
		t.Fatalf("AddLines failed: %v", err)
	}
	return cart
}
