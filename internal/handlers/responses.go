package handlers

import (
	"github.com/galettery/galettery/internal/customizer"
	"github.com/galettery/galettery/internal/models"
)

// LoginResponse returns the session token for clients that cannot keep cookies
type LoginResponse struct {
	Token string `json:"token"`
}

// RestaurantResponse is a restaurant as seen by customers
type RestaurantResponse struct {
	*models.Restaurant
	OrderingOpen bool `json:"ordering_open"`
}

// ConfirmResponse is the result of confirming a session. Cart is set when
// the lines went into a cart.
type ConfirmResponse struct {
	Lines []customizer.CartLineItem `json:"lines"`
	Cart  *models.Order             `json:"cart,omitempty"`
}

// ConfigurationSaveResponse lists the non-fatal problems of a saved configuration
type ConfigurationSaveResponse struct {
	Issues []customizer.Issue `json:"issues"`
}

// OrderingStatusResponse is the response for ordering status changes
type OrderingStatusResponse struct {
	RestaurantID string `json:"restaurant_id"`
	Open         bool   `json:"open"`
}

// MenuURLResponse is the link a table QR code points at
type MenuURLResponse struct {
	URL string `json:"url"`
}
