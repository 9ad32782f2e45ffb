package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/galettery/galettery/internal/logger"
)

func quietLogger() logger.Logger {
	return logger.NewWithOptions(logger.Options{Output: io.Discard})
}

func TestHTTPClient_FetchRestaurants_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/restaurants" {
			t.Errorf("expected path /rest/v1/restaurants, got %s", r.URL.Path)
		}
		if got := r.Header.Get("apikey"); got != "secret" {
			t.Errorf("expected apikey header, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer token, got %q", got)
		}
		w.Write([]byte(`[{"id": 42, "slug": "chez-momo", "name": "Chez Momo", "cuisine_type": "kebab", "locales": ["fr","en"]}]`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, quietLogger())
	client.SetAPIKey("secret")

	restaurants, err := client.FetchRestaurants(context.Background())
	if err != nil {
		t.Fatalf("FetchRestaurants failed: %v", err)
	}
	if len(restaurants) != 1 {
		t.Fatalf("expected 1 restaurant, got %d", len(restaurants))
	}
	if restaurants[0].ID.String() != "42" {
		t.Errorf("expected numeric id to decode as \"42\", got %q", restaurants[0].ID)
	}
	if restaurants[0].CuisineType != "kebab" {
		t.Errorf("expected cuisine kebab, got %q", restaurants[0].CuisineType)
	}
}

func TestHTTPClient_FetchProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("restaurant_id"); got != "eq.rest-1" {
			t.Errorf("expected restaurant filter, got %q", got)
		}
		if got := r.URL.Query().Get("order"); got != "display_order.asc" {
			t.Errorf("expected display order, got %q", got)
		}
		w.Write([]byte(`[
			{"id": "p1", "restaurant_id": "rest-1", "name": "Sandwich", "product_type": "sandwich", "price": 6.5},
			{"id": "p2", "restaurant_id": "rest-1", "name": "Menu", "product_type": "menu", "price": "9.50", "is_available": false}
		]`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, quietLogger())
	products, err := client.FetchProducts(context.Background(), "rest-1")
	if err != nil {
		t.Fatalf("FetchProducts failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Price.StringFixed(2) != "6.50" || products[1].Price.StringFixed(2) != "9.50" {
		t.Errorf("unexpected prices %s, %s", products[0].Price, products[1].Price)
	}
	if !products[0].IsAvailable() {
		t.Error("missing availability should mean available")
	}
	if products[1].IsAvailable() {
		t.Error("expected second product to be unavailable")
	}
}

func TestHTTPClient_FetchConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		want    string
	}{
		{"found", `[{"config": {"base_price": "5.00", "steps": []}}]`, nil, `{"base_price": "5.00", "steps": []}`},
		{"no rows", `[]`, ErrNotFound, ""},
		{"null config", `[{"config": null}]`, ErrNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewHTTPClient(server.URL, quietLogger())
			cfg, err := client.FetchConfiguration(context.Background(), "rest-1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if string(cfg) != tt.want {
				t.Errorf("expected %s, got %s", tt.want, cfg)
			}
		})
	}
}

func TestHTTPClient_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "permission denied", http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewHTTPClient(server.URL, quietLogger())
		if _, err := client.FetchTemplates(context.Background()); err == nil {
			t.Error("expected error for 401")
		}
	})

	t.Run("bad json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		}))
		defer server.Close()

		client := NewHTTPClient(server.URL, quietLogger())
		if _, err := client.FetchRestaurants(context.Background()); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		client := NewHTTPClientWithHTTPClient(url, http.DefaultClient, quietLogger())
		if _, err := client.FetchProducts(context.Background(), "rest-1"); err == nil {
			t.Error("expected connection error")
		}
	})

	t.Run("no base url", func(t *testing.T) {
		client := NewHTTPClient("", quietLogger())
		if _, err := client.FetchRestaurants(context.Background()); err == nil {
			t.Error("expected error without base URL")
		}
	})
}

func TestFlexString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  string
		err   bool
	}{
		{`"abc"`, "abc", false},
		{`12`, "12", false},
		{`null`, "", false},
		{`{}`, "", true},
	}
	for _, tt := range tests {
		var f FlexString
		err := json.Unmarshal([]byte(tt.input), &f)
		if (err != nil) != tt.err {
			t.Errorf("%s: unexpected error state %v", tt.input, err)
		}
		if f.String() != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.input, tt.want, f)
		}
	}
}

func TestMockClient(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	m := NewMockClient(WithConfiguration("rest-1", json.RawMessage(`{"steps":[]}`)))
	if _, err := m.FetchConfiguration(ctx, "rest-1"); err != nil {
		t.Errorf("expected configured document, got %v", err)
	}
	if _, err := m.FetchConfiguration(ctx, "rest-2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	products, _ := m.FetchProducts(ctx, "rest-1")
	if len(products) != 4 {
		t.Errorf("expected default menu of 4 products, got %d", len(products))
	}

	m = NewMockClient(WithRestaurantsError(boom), WithProductsError(boom), WithTemplatesError(boom), WithConfigurationError(boom))
	if _, err := m.FetchRestaurants(ctx); err != boom {
		t.Errorf("expected injected error, got %v", err)
	}
	if _, err := m.FetchProducts(ctx, "rest-1"); err != boom {
		t.Errorf("expected injected error, got %v", err)
	}
	if _, err := m.FetchTemplates(ctx); err != boom {
		t.Errorf("expected injected error, got %v", err)
	}
	if _, err := m.FetchConfiguration(ctx, "rest-1"); err != boom {
		t.Errorf("expected injected error, got %v", err)
	}

	m.SetBaseURL("http://elsewhere")
	m.SetAPIKey("k")
	if m.BaseURL() != "http://elsewhere" || m.APIKey() != "k" {
		t.Error("expected base URL and key to be recorded")
	}
}
