package repository

import (
	"context"
	"time"

	"github.com/galettery/galettery/internal/models"
)

// RestaurantRepository defines restaurant data operations
type RestaurantRepository interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	GetRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error)
	CreateRestaurant(ctx context.Context, r *models.Restaurant) error
	UpsertRestaurant(ctx context.Context, r *models.Restaurant) (created bool, err error)
}

// ProductRepository defines catalog data operations
type ProductRepository interface {
	ListProducts(ctx context.Context, restaurantID string, onlyAvailable bool) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	UpsertProduct(ctx context.Context, p *models.Product) (created bool, err error)
	SetProductAvailability(ctx context.Context, id string, available bool) error
	DeleteProduct(ctx context.Context, id string) error
}

// ConfigRepository stores customization configurations as JSON documents
type ConfigRepository interface {
	GetCustomizationConfig(ctx context.Context, restaurantID string) ([]byte, error)
	SaveCustomizationConfig(ctx context.Context, restaurantID string, data []byte) error
	GetCuisineTemplate(ctx context.Context, cuisineType string) (*models.CuisineTemplate, error)
	SaveCuisineTemplate(ctx context.Context, t *models.CuisineTemplate) error
	ListCuisineTemplates(ctx context.Context) ([]models.CuisineTemplate, error)
}

// OrderRepository defines cart and order data operations
type OrderRepository interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, restaurantID string, statuses ...models.OrderStatus) ([]models.Order, error)
	AddOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error
	DeleteOrderItem(ctx context.Context, orderID string, itemID int64) error
	PlaceOrder(ctx context.Context, o *models.Order) error
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error
	DeleteOrder(ctx context.Context, id string) error
	GetOrderStats(ctx context.Context, restaurantID string, since time.Time) (*models.OrderStats, error)
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ClearTable(ctx context.Context, table string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	RestaurantRepository
	ProductRepository
	ConfigRepository
	OrderRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
