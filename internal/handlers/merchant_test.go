package handlers_test

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/galettery/galettery/internal/handlers"
	"github.com/galettery/galettery/internal/models"
	"github.com/galettery/galettery/internal/services"
)

func TestRestaurantAdmin(t *testing.T) {
	s := newTestSetup(t)

	rec := s.admin(t, http.MethodPost, "/api/admin/restaurants", handlers.RestaurantCreateRequest{
		Name:        "Crêperie du Port",
		CuisineType: "creperie",
	})
	expectStatus(t, rec, http.StatusCreated)
	var created models.Restaurant
	decode(t, rec, &created)
	if created.Slug != "creperie-du-port" {
		t.Errorf("expected slug creperie-du-port, got %q", created.Slug)
	}

	rec = s.admin(t, http.MethodGet, "/api/admin/restaurants", nil)
	expectStatus(t, rec, http.StatusOK)
	var list []models.Restaurant
	decode(t, rec, &list)
	if len(list) != 2 {
		t.Errorf("expected 2 restaurants, got %d", len(list))
	}

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{"missing name", handlers.RestaurantCreateRequest{}, http.StatusBadRequest},
		{"slug taken", handlers.RestaurantCreateRequest{Name: "Other", Slug: "creperie-du-port"}, http.StatusConflict},
		{"bad json", []byte("[1,2"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.admin(t, http.MethodPost, "/api/admin/restaurants", tt.body)
			expectStatus(t, rec, tt.wantStatus)
		})
	}
}

func TestProductAdmin(t *testing.T) {
	s := newTestSetup(t)
	base := "/api/admin/restaurants/" + s.restaurant.ID + "/products"

	rec := s.admin(t, http.MethodPost, base, handlers.ProductRequest{
		Name:  "Tiramisu",
		Type:  "dessert",
		Price: decimal.RequireFromString("3.50"),
	})
	expectStatus(t, rec, http.StatusCreated)
	var product models.Product
	decode(t, rec, &product)
	if !product.Available {
		t.Error("expected new products to be available by default")
	}

	hidden := false
	rec = s.admin(t, http.MethodPut, "/api/admin/products/"+product.ID, handlers.ProductRequest{
		Name:      "Tiramisu maison",
		Type:      "dessert",
		Price:     decimal.RequireFromString("4.00"),
		Available: &hidden,
	})
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &product)
	if product.Name != "Tiramisu maison" || product.Available || !product.Price.Equal(decimal.RequireFromString("4.00")) {
		t.Errorf("unexpected updated product %+v", product)
	}

	rec = s.admin(t, http.MethodPut, "/api/admin/products/"+product.ID+"/availability", handlers.AvailabilityRequest{Available: true})
	expectStatus(t, rec, http.StatusOK)

	rec = s.admin(t, http.MethodGet, base, nil)
	expectStatus(t, rec, http.StatusOK)
	var products []models.Product
	decode(t, rec, &products)
	if len(products) != 3 {
		t.Errorf("expected 3 products, got %d", len(products))
	}

	rec = s.admin(t, http.MethodDelete, "/api/admin/products/"+product.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	rec = s.admin(t, http.MethodDelete, "/api/admin/products/"+product.ID, nil)
	expectStatus(t, rec, http.StatusNotFound)

	invalid := []struct {
		name string
		req  handlers.ProductRequest
	}{
		{"missing name", handlers.ProductRequest{Type: "drink"}},
		{"unknown type", handlers.ProductRequest{Name: "Pizza", Type: "pizza"}},
		{"negative price", handlers.ProductRequest{Name: "Eau", Type: "drink", Price: decimal.NewFromInt(-1)}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.admin(t, http.MethodPost, base, tt.req)
			expectStatus(t, rec, http.StatusBadRequest)
			if code := errorCode(t, rec); code != handlers.ErrCodeValidation {
				t.Errorf("expected %s, got %s", handlers.ErrCodeValidation, code)
			}
		})
	}
}

func TestSaveConfiguration(t *testing.T) {
	s := newTestSetup(t)
	path := "/api/admin/restaurants/" + s.restaurant.ID + "/configuration"

	rec := s.admin(t, http.MethodGet, path, nil)
	expectStatus(t, rec, http.StatusOK)

	// stored configurations come back as JSON and can be saved as is
	rec = s.admin(t, http.MethodPut, path, rec.Body.Bytes())
	expectStatus(t, rec, http.StatusOK)
	var resp handlers.ConfigurationSaveResponse
	decode(t, rec, &resp)
	if len(resp.Issues) != 0 {
		t.Errorf("expected a clean configuration, got %v", resp.Issues)
	}

	duplicate := "steps:\n  - id: base\n    options:\n      - id: galette\n        name: A\n      - id: galette\n        name: B\n"
	rec = s.admin(t, http.MethodPut, path, []byte(duplicate))
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &resp)
	if len(resp.Issues) == 0 {
		t.Error("expected the duplicate option to be reported")
	}

	rec = s.admin(t, http.MethodPut, path, []byte("{not json"))
	expectStatus(t, rec, http.StatusBadRequest)
	rec = s.admin(t, http.MethodPut, "/api/admin/restaurants/missing/configuration", []byte(duplicate))
	expectStatus(t, rec, http.StatusNotFound)

	rec = s.admin(t, http.MethodGet, "/api/admin/templates", nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestKitchenOrders(t *testing.T) {
	s := newTestSetup(t)
	order := s.placedOrder(t)
	ordersPath := "/api/admin/restaurants/" + s.restaurant.ID + "/orders"

	rec := s.admin(t, http.MethodGet, ordersPath+"?status=pending,preparing", nil)
	expectStatus(t, rec, http.StatusOK)
	var orders []models.Order
	decode(t, rec, &orders)
	if len(orders) != 1 || orders[0].ID != order.ID {
		t.Fatalf("expected the placed order, got %+v", orders)
	}

	statusPath := "/api/admin/orders/" + order.ID + "/status"
	steps := []struct {
		status     string
		wantStatus int
	}{
		{"ready", http.StatusConflict},
		{"preparing", http.StatusOK},
		{"burnt", http.StatusBadRequest},
		{"ready", http.StatusOK},
		{"completed", http.StatusOK},
	}
	for _, st := range steps {
		rec := s.admin(t, http.MethodPut, statusPath, handlers.OrderStatusRequest{Status: st.status})
		expectStatus(t, rec, st.wantStatus)
	}

	rec = s.admin(t, http.MethodGet, ordersPath+"?status=pending", nil)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &orders)
	if len(orders) != 0 {
		t.Errorf("expected no pending order, got %d", len(orders))
	}

	rec = s.admin(t, http.MethodPut, "/api/admin/orders/missing/status", handlers.OrderStatusRequest{Status: "preparing"})
	expectStatus(t, rec, http.StatusNotFound)
}

func TestStats(t *testing.T) {
	s := newTestSetup(t)
	s.placedOrder(t)
	s.placedOrder(t)
	path := "/api/admin/restaurants/" + s.restaurant.ID + "/stats"

	rec := s.admin(t, http.MethodGet, path, nil)
	expectStatus(t, rec, http.StatusOK)
	var stats models.OrderStats
	decode(t, rec, &stats)
	if stats.OrderCount != 2 || !stats.Revenue.Equal(decimal.RequireFromString("12.00")) {
		t.Errorf("unexpected stats %+v", stats)
	}

	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	rec = s.admin(t, http.MethodGet, path+"?since="+future, nil)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &stats)
	if stats.OrderCount != 0 {
		t.Errorf("expected no order after %s, got %d", future, stats.OrderCount)
	}

	rec = s.admin(t, http.MethodGet, path+"?since=yesterday", nil)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestSetOrderingStatus(t *testing.T) {
	s := newTestSetup(t)
	path := "/api/admin/restaurants/" + s.restaurant.ID + "/ordering"

	rec := s.admin(t, http.MethodPut, path, handlers.OrderingStatusRequest{Open: false})
	expectStatus(t, rec, http.StatusOK)
	var resp handlers.OrderingStatusResponse
	decode(t, rec, &resp)
	if resp.Open || resp.RestaurantID != s.restaurant.ID {
		t.Errorf("unexpected response %+v", resp)
	}

	open, err := s.settings.IsOrderingOpen(context.Background(), s.restaurant.ID)
	if err != nil {
		t.Fatal(err)
	}
	if open {
		t.Error("expected ordering to be closed")
	}

	rec = s.public(t, http.MethodGet, "/api/restaurants/"+s.restaurant.ID, nil)
	var restaurant handlers.RestaurantResponse
	decode(t, rec, &restaurant)
	if restaurant.OrderingOpen {
		t.Error("customers should see ordering closed")
	}

	rec = s.admin(t, http.MethodPut, "/api/admin/restaurants/missing/ordering", handlers.OrderingStatusRequest{Open: true})
	expectStatus(t, rec, http.StatusNotFound)
}

func TestQRCodes(t *testing.T) {
	s := newTestSetup(t)
	base := "/api/admin/restaurants/" + s.restaurant.ID

	rec := s.admin(t, http.MethodGet, base+"/menu-url", nil)
	expectStatus(t, rec, http.StatusPreconditionFailed)
	if code := errorCode(t, rec); code != handlers.ErrCodePrecondition {
		t.Errorf("expected %s, got %s", handlers.ErrCodePrecondition, code)
	}

	if err := s.settings.SetBaseURL(context.Background(), "https://order.example.com/"); err != nil {
		t.Fatal(err)
	}

	rec = s.admin(t, http.MethodGet, base+"/menu-url?table=7", nil)
	expectStatus(t, rec, http.StatusOK)
	var url handlers.MenuURLResponse
	decode(t, rec, &url)
	want := "https://order.example.com/r/" + s.restaurant.Slug + "?table=7"
	if url.URL != want {
		t.Errorf("expected %s, got %s", want, url.URL)
	}

	pngHeader := []byte("\x89PNG")
	for _, path := range []string{base + "/qr", base + "/qr?size=512", base + "/tables/7/qr"} {
		rec := s.admin(t, http.MethodGet, path, nil)
		expectStatus(t, rec, http.StatusOK)
		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s: expected image/png, got %s", path, ct)
		}
		if !bytes.HasPrefix(rec.Body.Bytes(), pngHeader) {
			t.Errorf("%s: expected a PNG body", path)
		}
	}

	for _, path := range []string{base + "/qr?size=64", base + "/qr?size=big"} {
		rec := s.admin(t, http.MethodGet, path, nil)
		expectStatus(t, rec, http.StatusBadRequest)
	}
}

func TestSettingsAdmin(t *testing.T) {
	s := newTestSetup(t)

	rec := s.admin(t, http.MethodPut, "/api/admin/settings", handlers.SettingsUpdateRequest{
		BaseURL:    "https://order.example.com",
		BackendURL: "https://api.example.com",
	})
	expectStatus(t, rec, http.StatusOK)

	rec = s.admin(t, http.MethodGet, "/api/admin/settings?restaurant_id="+s.restaurant.ID, nil)
	expectStatus(t, rec, http.StatusOK)
	var settings map[string]interface{}
	decode(t, rec, &settings)
	if settings["base_url"] != "https://order.example.com" || settings["backend_url"] != "https://api.example.com" {
		t.Errorf("unexpected settings %v", settings)
	}
	if settings["ordering_open"] != true {
		t.Errorf("expected ordering open by default, got %v", settings["ordering_open"])
	}
}

func TestResetDatabase(t *testing.T) {
	s := newTestSetup(t)
	s.placedOrder(t)

	tests := []struct {
		name       string
		tables     []string
		wantStatus int
	}{
		{"no tables", nil, http.StatusBadRequest},
		{"unknown table", []string{"restaurants"}, http.StatusBadRequest},
		{"orders", []string{"orders"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.admin(t, http.MethodPost, "/api/admin/reset-database", handlers.DatabaseResetRequest{Tables: tt.tables})
			expectStatus(t, rec, tt.wantStatus)
		})
	}

	var result services.ResetTablesResult
	rec := s.admin(t, http.MethodPost, "/api/admin/reset-database", handlers.DatabaseResetRequest{Tables: []string{"orders"}})
	decode(t, rec, &result)
	if strings.Join(result.Tables, ",") != "order_items,orders" {
		t.Errorf("expected order lines cleared first, got %v", result.Tables)
	}

	rec = s.admin(t, http.MethodGet, "/api/admin/restaurants/"+s.restaurant.ID+"/orders", nil)
	var orders []models.Order
	decode(t, rec, &orders)
	if len(orders) != 0 {
		t.Errorf("expected orders to be cleared, got %d", len(orders))
	}
}

func TestSyncBackend(t *testing.T) {
	s := newTestSetup(t)

	rec := s.admin(t, http.MethodPost, "/api/admin/sync", nil)
	expectStatus(t, rec, http.StatusOK)
	var result services.SyncResult
	decode(t, rec, &result)
	if result.RestaurantsCreated != 1 || result.ProductsCreated == 0 {
		t.Errorf("unexpected sync result %+v", result)
	}

	rec = s.admin(t, http.MethodPost, "/api/admin/sync", handlers.BackendSyncRequest{BackendURL: "https://api.example.com"})
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &result)
	if result.RestaurantsUpdated != 1 || result.RestaurantsCreated != 0 {
		t.Errorf("expected the second sync to update, got %+v", result)
	}
}
