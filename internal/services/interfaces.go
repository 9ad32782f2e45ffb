package services

import (
	"context"
	"time"

	"github.com/galettery/galettery/internal/customizer"
	"github.com/galettery/galettery/internal/models"
)

// CatalogServicer defines the interface for restaurant, product and
// configuration operations
type CatalogServicer interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	GetRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error)
	CreateRestaurant(ctx context.Context, in Restaurant) (*models.Restaurant, error)
	ListProducts(ctx context.Context, restaurantID string, onlyAvailable bool) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, restaurantID string, in Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, in Product) (*models.Product, error)
	SetProductAvailability(ctx context.Context, id string, available bool) error
	DeleteProduct(ctx context.Context, id string) error
	GetConfiguration(ctx context.Context, restaurantID string) (*customizer.Configuration, error)
	SaveConfiguration(ctx context.Context, restaurantID string, data []byte) ([]customizer.Issue, error)
	ListTemplates(ctx context.Context) ([]models.CuisineTemplate, error)
	ImportTemplates(ctx context.Context, dir string) (int, error)
	SyncFromBackend(ctx context.Context, backendURL string) (*SyncResult, error)
}

// SessionServicer defines the interface for customization sessions
type SessionServicer interface {
	Open(ctx context.Context, restaurantID, productID, locale string) (*SessionView, error)
	Get(ctx context.Context, id string) (*SessionView, error)
	Apply(ctx context.Context, id string, a Action) (*SessionView, error)
	Confirm(ctx context.Context, id string) ([]customizer.CartLineItem, error)
	ConfirmInto(ctx context.Context, id string, sink LineSink) ([]customizer.CartLineItem, error)
	Cancel(ctx context.Context, id string) error
}

// OrderServicer defines the interface for cart and order operations
type OrderServicer interface {
	CreateCart(ctx context.Context, restaurantID, locale string) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	AddLines(ctx context.Context, restaurantID, cartID string, lines []customizer.CartLineItem) (*models.Order, error)
	RemoveLine(ctx context.Context, cartID string, itemID int64) (*models.Order, error)
	PlaceOrder(ctx context.Context, cartID string, details OrderDetails) (*models.Order, error)
	SubmitOrder(ctx context.Context, o *models.Order) error
	ListOrders(ctx context.Context, restaurantID string, statuses ...models.OrderStatus) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
	Stats(ctx context.Context, restaurantID string, since time.Time) (*models.OrderStats, error)
	SetBroadcaster(b Broadcaster)
}

// POSServicer defines the interface for counter tickets
type POSServicer interface {
	OpenTicket(ctx context.Context, restaurantID, tableNumber string) (*TicketView, error)
	GetTicket(ctx context.Context, id string) (*TicketView, error)
	AddPerson(ctx context.Context, ticketID, name string) (*TicketView, error)
	SwitchPerson(ctx context.Context, ticketID string, index int) (*TicketView, error)
	StartItem(ctx context.Context, ticketID, productID, locale string) (*SessionView, error)
	Apply(ctx context.Context, ticketID string, a Action) (*SessionView, error)
	ConfirmItem(ctx context.Context, ticketID string) (*TicketView, error)
	RemoveLine(ctx context.Context, ticketID string, person, line int) (*TicketView, error)
	Checkout(ctx context.Context, ticketID, customerName string) (*models.Order, error)
	CancelTicket(ctx context.Context, ticketID string) error
}

// QRServicer defines the interface for QR code rendering
type QRServicer interface {
	MenuURL(ctx context.Context, restaurantID, table string) (string, error)
	MenuQR(ctx context.Context, restaurantID string, size int) ([]byte, error)
	TableQR(ctx context.Context, restaurantID, table string, size int) ([]byte, error)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	IsOrderingOpen(ctx context.Context, restaurantID string) (bool, error)
	SetOrderingOpen(ctx context.Context, restaurantID string, open bool) error
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	GetBackendURL(ctx context.Context) (string, error)
	SetBackendURL(ctx context.Context, url string) error
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	AllSettings(ctx context.Context, restaurantID string) (map[string]interface{}, error)
	UpdateSettings(ctx context.Context, settings Settings) error
	ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error)
	SetBroadcaster(b Broadcaster)
}

// Ensure concrete types implement interfaces
var (
	_ CatalogServicer  = (*CatalogService)(nil)
	_ SessionServicer  = (*SessionService)(nil)
	_ OrderServicer    = (*OrderService)(nil)
	_ POSServicer      = (*POSService)(nil)
	_ QRServicer       = (*QRService)(nil)
	_ SettingsServicer = (*SettingsService)(nil)
)
