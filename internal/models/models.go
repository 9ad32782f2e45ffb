package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/galettery/galettery/internal/customizer"
)

// Restaurant is one tenant of the platform
type Restaurant struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	CuisineType   string    `json:"cuisine_type"`
	DefaultLocale string    `json:"default_locale"`
	Locales       []string  `json:"locales,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Product is a catalog entry of a restaurant
type Product struct {
	ID               string                 `json:"id"`
	RestaurantID     string                 `json:"restaurant_id"`
	Name             string                 `json:"name"`
	NameTranslations map[string]string      `json:"name_translations,omitempty"`
	Description      string                 `json:"description,omitempty"`
	Category         string                 `json:"category,omitempty"`
	Type             customizer.ProductType `json:"type"`
	Price            decimal.Decimal        `json:"price"`
	Available        bool                   `json:"available"`
	DisplayOrder     int                    `json:"display_order"`
}

// Item returns the customizer view of the product
func (p *Product) Item() customizer.Item {
	return customizer.Item{
		ProductID:        p.ID,
		Name:             p.Name,
		NameTranslations: p.NameTranslations,
		Type:             p.Type,
		Price:            p.Price,
	}
}

// CuisineTemplate is a default customization configuration shared by every
// restaurant of a cuisine type
type CuisineTemplate struct {
	CuisineType string    `json:"cuisine_type"`
	Name        string    `json:"name"`
	Config      []byte    `json:"-"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderStatus is the kitchen lifecycle of an order
type OrderStatus string

const (
	StatusCart      OrderStatus = "cart"
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

var statusFlow = map[OrderStatus][]OrderStatus{
	StatusCart:      {StatusPending},
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted},
}

// CanTransition reports whether the kitchen may move an order from s to next
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range statusFlow[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusCart, StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Channel is where an order was taken
type Channel string

const (
	ChannelOnline Channel = "online"
	ChannelPOS    Channel = "pos"
)

// Order is a cart or a placed order with its line items
type Order struct {
	ID           string          `json:"id"`
	RestaurantID string          `json:"restaurant_id"`
	Number       int             `json:"number,omitempty"`
	Channel      Channel         `json:"channel"`
	Status       OrderStatus     `json:"status"`
	CustomerName string          `json:"customer_name,omitempty"`
	TableNumber  string          `json:"table_number,omitempty"`
	Locale       string          `json:"locale,omitempty"`
	Total        decimal.Decimal `json:"total"`
	Items        []OrderItem     `json:"items"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ComputeTotal sums the unit prices of the order lines
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.UnitPrice)
	}
	return total
}

// OrderItem is one emitted cart line. Identical lines are stored separately.
type OrderItem struct {
	ID          int64                  `json:"id"`
	OrderID     string                 `json:"order_id"`
	ProductID   string                 `json:"product_id"`
	ProductType customizer.ProductType `json:"product_type"`
	Name        string                 `json:"name"`
	Summary     string                 `json:"summary"`
	UnitPrice   decimal.Decimal        `json:"unit_price"`
	Choices     *customizer.Choices    `json:"choices,omitempty"`
	Person      string                 `json:"person,omitempty"`
}

// OrderItemFromLine converts a synthesized cart line
func OrderItemFromLine(line customizer.CartLineItem) OrderItem {
	return OrderItem{
		ProductID:   line.ProductID,
		ProductType: line.ProductType,
		Name:        line.Name,
		Summary:     line.Summary,
		UnitPrice:   line.UnitPrice,
		Choices:     line.Choices,
	}
}

// ProductCount is a product with the number of lines sold
type ProductCount struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
}

// OrderStats summarizes placed orders of a restaurant
type OrderStats struct {
	OrderCount  int             `json:"order_count"`
	Cancelled   int             `json:"cancelled"`
	Revenue     decimal.Decimal `json:"revenue"`
	TopProducts []ProductCount  `json:"top_products"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
