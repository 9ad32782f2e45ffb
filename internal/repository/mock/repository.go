package mock

import (
	"context"
	"time"

	"github.com/galettery/galettery/internal/models"
	"github.com/galettery/galettery/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.PlaceOrderError = errors.New("database error")
//	svc := services.NewOrderService(log, mockRepo, catalog, settings, events.Noop{})
//	_, err := svc.PlaceOrder(ctx, cartID, details)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Restaurant Errors =====
	GetRestaurantError       error
	GetRestaurantBySlugError error
	ListRestaurantsError     error
	UpsertRestaurantError    error

	// ===== Product Errors =====
	ListProductsError  error
	GetProductError    error
	CreateProductError error
	UpsertProductError error
	DeleteProductError error

	// ===== Configuration Errors =====
	GetCustomizationConfigError  error
	SaveCustomizationConfigError error
	GetCuisineTemplateError      error
	SaveCuisineTemplateError     error

	// ===== Order Errors =====
	CreateOrderError       error
	GetOrderError          error
	ListOrdersError        error
	AddOrderItemsError     error
	DeleteOrderItemError   error
	PlaceOrderError        error
	UpdateOrderStatusError error
	GetOrderStatsError     error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error
	ClearTableError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Restaurant Methods =====

func (m *Repository) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	if m.GetRestaurantError != nil {
		return nil, m.GetRestaurantError
	}
	return m.FullRepository.GetRestaurant(ctx, id)
}

func (m *Repository) GetRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	if m.GetRestaurantBySlugError != nil {
		return nil, m.GetRestaurantBySlugError
	}
	return m.FullRepository.GetRestaurantBySlug(ctx, slug)
}

func (m *Repository) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	if m.ListRestaurantsError != nil {
		return nil, m.ListRestaurantsError
	}
	return m.FullRepository.ListRestaurants(ctx)
}

func (m *Repository) UpsertRestaurant(ctx context.Context, r *models.Restaurant) (bool, error) {
	if m.UpsertRestaurantError != nil {
		return false, m.UpsertRestaurantError
	}
	return m.FullRepository.UpsertRestaurant(ctx, r)
}

// ===== Product Methods =====

func (m *Repository) ListProducts(ctx context.Context, restaurantID string, onlyAvailable bool) ([]models.Product, error) {
	if m.ListProductsError != nil {
		return nil, m.ListProductsError
	}
	return m.FullRepository.ListProducts(ctx, restaurantID, onlyAvailable)
}

func (m *Repository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if m.GetProductError != nil {
		return nil, m.GetProductError
	}
	return m.FullRepository.GetProduct(ctx, id)
}

func (m *Repository) CreateProduct(ctx context.Context, p *models.Product) error {
	if m.CreateProductError != nil {
		return m.CreateProductError
	}
	return m.FullRepository.CreateProduct(ctx, p)
}

func (m *Repository) UpsertProduct(ctx context.Context, p *models.Product) (bool, error) {
	if m.UpsertProductError != nil {
		return false, m.UpsertProductError
	}
	return m.FullRepository.UpsertProduct(ctx, p)
}

func (m *Repository) DeleteProduct(ctx context.Context, id string) error {
	if m.DeleteProductError != nil {
		return m.DeleteProductError
	}
	return m.FullRepository.DeleteProduct(ctx, id)
}

// ===== Configuration Methods =====

func (m *Repository) GetCustomizationConfig(ctx context.Context, restaurantID string) ([]byte, error) {
	if m.GetCustomizationConfigError != nil {
		return nil, m.GetCustomizationConfigError
	}
	return m.FullRepository.GetCustomizationConfig(ctx, restaurantID)
}

func (m *Repository) SaveCustomizationConfig(ctx context.Context, restaurantID string, data []byte) error {
	if m.SaveCustomizationConfigError != nil {
		return m.SaveCustomizationConfigError
	}
	return m.FullRepository.SaveCustomizationConfig(ctx, restaurantID, data)
}

func (m *Repository) GetCuisineTemplate(ctx context.Context, cuisineType string) (*models.CuisineTemplate, error) {
	if m.GetCuisineTemplateError != nil {
		return nil, m.GetCuisineTemplateError
	}
	return m.FullRepository.GetCuisineTemplate(ctx, cuisineType)
}

func (m *Repository) SaveCuisineTemplate(ctx context.Context, t *models.CuisineTemplate) error {
	if m.SaveCuisineTemplateError != nil {
		return m.SaveCuisineTemplateError
	}
	return m.FullRepository.SaveCuisineTemplate(ctx, t)
}

// ===== Order Methods =====

func (m *Repository) CreateOrder(ctx context.Context, o *models.Order) error {
	if m.CreateOrderError != nil {
		return m.CreateOrderError
	}
	return m.FullRepository.CreateOrder(ctx, o)
}

func (m *Repository) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if m.GetOrderError != nil {
		return nil, m.GetOrderError
	}
	return m.FullRepository.GetOrder(ctx, id)
}

func (m *Repository) ListOrders(ctx context.Context, restaurantID string, statuses ...models.OrderStatus) ([]models.Order, error) {
	if m.ListOrdersError != nil {
		return nil, m.ListOrdersError
	}
	return m.FullRepository.ListOrders(ctx, restaurantID, statuses...)
}

func (m *Repository) AddOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error {
	if m.AddOrderItemsError != nil {
		return m.AddOrderItemsError
	}
	return m.FullRepository.AddOrderItems(ctx, orderID, items)
}

func (m *Repository) DeleteOrderItem(ctx context.Context, orderID string, itemID int64) error {
	if m.DeleteOrderItemError != nil {
		return m.DeleteOrderItemError
	}
	return m.FullRepository.DeleteOrderItem(ctx, orderID, itemID)
}

func (m *Repository) PlaceOrder(ctx context.Context, o *models.Order) error {
	if m.PlaceOrderError != nil {
		return m.PlaceOrderError
	}
	return m.FullRepository.PlaceOrder(ctx, o)
}

func (m *Repository) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	if m.UpdateOrderStatusError != nil {
		return m.UpdateOrderStatusError
	}
	return m.FullRepository.UpdateOrderStatus(ctx, id, status)
}

func (m *Repository) GetOrderStats(ctx context.Context, restaurantID string, since time.Time) (*models.OrderStats, error) {
	if m.GetOrderStatsError != nil {
		return nil, m.GetOrderStatsError
	}
	return m.FullRepository.GetOrderStats(ctx, restaurantID, since)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) ClearTable(ctx context.Context, table string) error {
	if m.ClearTableError != nil {
		return m.ClearTableError
	}
	return m.FullRepository.ClearTable(ctx, table)
}
