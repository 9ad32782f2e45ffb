// Package backend provides a client for the hosted backend's REST gateway,
// from which restaurants, products and customization configurations are
// synchronized into the local store.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/galettery/galettery/internal/logger"
)

// ErrNotFound is returned when the gateway has no row for a lookup
var ErrNotFound = errors.New("backend: not found")

// FlexString is a string that can be unmarshaled from either a string or a number.
// Gateway tables mix text and integer primary keys.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler for FlexString
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	return fmt.Errorf("FlexString: cannot unmarshal %s", string(data))
}

// String returns the string value
func (f FlexString) String() string {
	return string(f)
}

// Restaurant is a restaurant row of the hosted backend
type Restaurant struct {
	ID            FlexString `json:"id"`
	Slug          string     `json:"slug"`
	Name          string     `json:"name"`
	CuisineType   string     `json:"cuisine_type"`
	DefaultLocale string     `json:"default_locale"`
	Locales       []string   `json:"locales"`
}

// Product is a product row of the hosted backend
type Product struct {
	ID               FlexString        `json:"id"`
	RestaurantID     FlexString        `json:"restaurant_id"`
	Name             string            `json:"name"`
	NameTranslations map[string]string `json:"name_translations"`
	Description      string            `json:"description"`
	Category         string            `json:"category"`
	Type             string            `json:"product_type"`
	Price            decimal.Decimal   `json:"price"`
	Available        *bool             `json:"is_available"`
	DisplayOrder     int               `json:"display_order"`
}

// IsAvailable treats a missing availability flag as available
func (p Product) IsAvailable() bool {
	return p.Available == nil || *p.Available
}

// Template is a cuisine-type default configuration
type Template struct {
	CuisineType string          `json:"cuisine_type"`
	Name        string          `json:"name"`
	Config      json.RawMessage `json:"config"`
}

// Client defines the interface for hosted backend operations
type Client interface {
	// FetchRestaurants retrieves every restaurant
	FetchRestaurants(ctx context.Context) ([]Restaurant, error)
	// FetchProducts retrieves the products of one restaurant in display order
	FetchProducts(ctx context.Context, restaurantID string) ([]Product, error)
	// FetchConfiguration retrieves the customization document of one
	// restaurant, or ErrNotFound when it has none
	FetchConfiguration(ctx context.Context, restaurantID string) (json.RawMessage, error)
	// FetchTemplates retrieves the cuisine-type templates
	FetchTemplates(ctx context.Context) ([]Template, error)
	// SetAPIKey configures the key sent with every request
	SetAPIKey(key string)
	// BaseURL returns the configured gateway base URL
	BaseURL() string
	// SetBaseURL updates the gateway base URL
	SetBaseURL(url string)
}

// HTTPClient is a real HTTP client for the gateway
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new gateway client
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// NewHTTPClientWithHTTPClient creates a new gateway client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured gateway base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// SetBaseURL updates the gateway base URL
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = url
}

// SetAPIKey configures the key sent with every request
func (c *HTTPClient) SetAPIKey(key string) {
	c.apiKey = key
}

// get reads one table through the gateway and decodes the JSON array into response
func (c *HTTPClient) get(ctx context.Context, table string, query url.Values, response interface{}) error {
	if c.baseURL == "" {
		return errors.New("backend URL is not configured")
	}
	reqURL := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	c.log.Debug("Backend request", "method", "GET", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Backend response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// FetchRestaurants retrieves every restaurant
func (c *HTTPClient) FetchRestaurants(ctx context.Context) ([]Restaurant, error) {
	var restaurants []Restaurant
	query := url.Values{"select": {"*"}, "order": {"name.asc"}}
	if err := c.get(ctx, "restaurants", query, &restaurants); err != nil {
		return nil, err
	}
	return restaurants, nil
}

// FetchProducts retrieves the products of one restaurant in display order
func (c *HTTPClient) FetchProducts(ctx context.Context, restaurantID string) ([]Product, error) {
	var products []Product
	query := url.Values{
		"select":        {"*"},
		"restaurant_id": {"eq." + restaurantID},
		"order":         {"display_order.asc"},
	}
	if err := c.get(ctx, "products", query, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FetchConfiguration retrieves the customization document of one restaurant
func (c *HTTPClient) FetchConfiguration(ctx context.Context, restaurantID string) (json.RawMessage, error) {
	var rows []struct {
		Config json.RawMessage `json:"config"`
	}
	query := url.Values{
		"select":        {"config"},
		"restaurant_id": {"eq." + restaurantID},
		"limit":         {"1"},
	}
	if err := c.get(ctx, "customization_configs", query, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0].Config) == 0 || string(rows[0].Config) == "null" {
		return nil, ErrNotFound
	}
	return rows[0].Config, nil
}

// FetchTemplates retrieves the cuisine-type templates
func (c *HTTPClient) FetchTemplates(ctx context.Context) ([]Template, error) {
	var templates []Template
	if err := c.get(ctx, "cuisine_templates", url.Values{"select": {"*"}}, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}
