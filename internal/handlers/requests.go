package handlers

import (
	"github.com/shopspring/decimal"

	"github.com/galettery/galettery/internal/customizer"
)

// LoginRequest represents a staff login
type LoginRequest struct {
	Password string `json:"password"`
}

// RestaurantCreateRequest represents a request to create a restaurant
type RestaurantCreateRequest struct {
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	CuisineType   string   `json:"cuisine_type"`
	DefaultLocale string   `json:"default_locale"`
	Locales       []string `json:"locales"`
}

// ProductRequest represents a request to create or update a product
type ProductRequest struct {
	Name             string                 `json:"name"`
	NameTranslations map[string]string      `json:"name_translations"`
	Description      string                 `json:"description"`
	Category         string                 `json:"category"`
	Type             customizer.ProductType `json:"type"`
	Price            decimal.Decimal        `json:"price"`
	Available        *bool                  `json:"available"`
	DisplayOrder     int                    `json:"display_order"`
}

// AvailabilityRequest marks a product in or out of stock
type AvailabilityRequest struct {
	Available bool `json:"available"`
}

// SessionOpenRequest opens a customization session for a product
type SessionOpenRequest struct {
	ProductID string `json:"product_id"`
	Locale    string `json:"locale"`
}

// SessionConfirmRequest confirms a session, optionally into a cart
type SessionConfirmRequest struct {
	CartID string `json:"cart_id"`
}

// CartCreateRequest opens a cart
type CartCreateRequest struct {
	Locale string `json:"locale"`
}

// PlaceOrderRequest carries the customer fields of a placed order
type PlaceOrderRequest struct {
	CustomerName string `json:"customer_name"`
	TableNumber  string `json:"table_number"`
}

// OrderStatusRequest represents a kitchen status change
type OrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderingStatusRequest represents a request to open or close ordering
type OrderingStatusRequest struct {
	Open bool `json:"open"`
}

// BackendSyncRequest represents a request to sync from the hosted backend
type BackendSyncRequest struct {
	BackendURL string `json:"backend_url"`
}

// SettingsUpdateRequest represents a request to update settings
type SettingsUpdateRequest struct {
	BaseURL         string `json:"base_url"`
	BackendURL      string `json:"backend_url"`
	BackendAPIKey   string `json:"backend_api_key"`
	DefaultCurrency string `json:"default_currency"`
}

// DatabaseResetRequest represents a request to reset database tables
type DatabaseResetRequest struct {
	Tables []string `json:"tables"`
}

// TicketOpenRequest opens a POS ticket
type TicketOpenRequest struct {
	RestaurantID string `json:"restaurant_id"`
	TableNumber  string `json:"table_number"`
}

// PersonAddRequest adds a person to a ticket
type PersonAddRequest struct {
	Name string `json:"name"`
}

// PersonSwitchRequest makes another person active
type PersonSwitchRequest struct {
	Index int `json:"index"`
}

// CheckoutRequest closes a ticket into an order
type CheckoutRequest struct {
	CustomerName string `json:"customer_name"`
}
