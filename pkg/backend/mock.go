package backend

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MockClient is a mock backend client for testing
type MockClient struct {
	restaurants    []Restaurant
	products       map[string][]Product
	configs        map[string]json.RawMessage
	templates      []Template
	baseURL        string
	apiKey         string
	restaurantsErr error
	productsErr    error
	configErr      error
	templatesErr   error
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithRestaurants sets the restaurants to return
func WithRestaurants(restaurants []Restaurant) MockOption {
	return func(m *MockClient) {
		m.restaurants = restaurants
	}
}

// WithProducts sets the products returned for one restaurant
func WithProducts(restaurantID string, products []Product) MockOption {
	return func(m *MockClient) {
		m.products[restaurantID] = products
	}
}

// WithConfiguration sets the customization document returned for one restaurant
func WithConfiguration(restaurantID string, config json.RawMessage) MockOption {
	return func(m *MockClient) {
		m.configs[restaurantID] = config
	}
}

// WithTemplates sets the cuisine templates to return
func WithTemplates(templates []Template) MockOption {
	return func(m *MockClient) {
		m.templates = templates
	}
}

// WithRestaurantsError sets an error to return from FetchRestaurants
func WithRestaurantsError(err error) MockOption {
	return func(m *MockClient) {
		m.restaurantsErr = err
	}
}

// WithProductsError sets an error to return from FetchProducts
func WithProductsError(err error) MockOption {
	return func(m *MockClient) {
		m.productsErr = err
	}
}

// WithConfigurationError sets an error to return from FetchConfiguration
func WithConfigurationError(err error) MockOption {
	return func(m *MockClient) {
		m.configErr = err
	}
}

// WithTemplatesError sets an error to return from FetchTemplates
func WithTemplatesError(err error) MockOption {
	return func(m *MockClient) {
		m.templatesErr = err
	}
}

// WithBaseURL sets the base URL
func WithBaseURL(url string) MockOption {
	return func(m *MockClient) {
		m.baseURL = url
	}
}

// NewMockClient creates a new mock backend client seeded with one kebab shop
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL:     "http://mock-backend.local",
		restaurants: DefaultMockRestaurants(),
		products:    map[string][]Product{"rest-1": DefaultMockProducts()},
		configs:     map[string]json.RawMessage{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	return m.baseURL
}

// SetBaseURL updates the base URL
func (m *MockClient) SetBaseURL(url string) {
	m.baseURL = url
}

// SetAPIKey records the key
func (m *MockClient) SetAPIKey(key string) {
	m.apiKey = key
}

// APIKey returns the last key passed to SetAPIKey
func (m *MockClient) APIKey() string {
	return m.apiKey
}

// FetchRestaurants returns the configured restaurants
func (m *MockClient) FetchRestaurants(ctx context.Context) ([]Restaurant, error) {
	if m.restaurantsErr != nil {
		return nil, m.restaurantsErr
	}
	return m.restaurants, nil
}

// FetchProducts returns the configured products of a restaurant
func (m *MockClient) FetchProducts(ctx context.Context, restaurantID string) ([]Product, error) {
	if m.productsErr != nil {
		return nil, m.productsErr
	}
	return m.products[restaurantID], nil
}

// FetchConfiguration returns the configured document or ErrNotFound
func (m *MockClient) FetchConfiguration(ctx context.Context, restaurantID string) (json.RawMessage, error) {
	if m.configErr != nil {
		return nil, m.configErr
	}
	cfg, ok := m.configs[restaurantID]
	if !ok {
		return nil, ErrNotFound
	}
	return cfg, nil
}

// FetchTemplates returns the configured templates
func (m *MockClient) FetchTemplates(ctx context.Context) ([]Template, error) {
	if m.templatesErr != nil {
		return nil, m.templatesErr
	}
	return m.templates, nil
}

// DefaultMockRestaurants returns a single kebab restaurant
func DefaultMockRestaurants() []Restaurant {
	return []Restaurant{
		{ID: "rest-1", Slug: "chez-momo", Name: "Chez Momo", CuisineType: "kebab", DefaultLocale: "fr", Locales: []string{"fr", "en"}},
	}
}

// DefaultMockProducts returns a small kebab menu
func DefaultMockProducts() []Product {
	unavailable := false
	return []Product{
		{ID: "prod-1", RestaurantID: "rest-1", Name: "Sandwich", Type: "sandwich", Price: decimal.RequireFromString("6.50"), DisplayOrder: 1},
		{ID: "prod-2", RestaurantID: "rest-1", Name: "Menu", NameTranslations: map[string]string{"en": "Meal"}, Type: "menu", Price: decimal.RequireFromString("9.50"), DisplayOrder: 2},
		{ID: "prod-3", RestaurantID: "rest-1", Name: "Frites", Type: "side", Price: decimal.RequireFromString("2.50"), DisplayOrder: 3},
		{ID: "prod-4", RestaurantID: "rest-1", Name: "Tiramisu", Type: "dessert", Price: decimal.RequireFromString("3.00"), Available: &unavailable, DisplayOrder: 4},
	}
}

var _ Client = (*MockClient)(nil)
var _ Client = (*HTTPClient)(nil)
