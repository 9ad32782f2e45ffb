package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/galettery/galettery/internal/customizer"
	"github.com/galettery/galettery/internal/errors"
	"github.com/galettery/galettery/internal/events"
	"github.com/galettery/galettery/internal/logger"
	"github.com/galettery/galettery/internal/models"
	"github.com/galettery/galettery/internal/repository"
)

// OrderService handles carts, order placement and the kitchen lifecycle
type OrderService struct {
	log         logger.Logger
	repo        repository.OrderRepository
	catalog     CatalogServicer
	settings    SettingsServicer
	publisher   events.Publisher
	broadcaster Broadcaster
}

// NewOrderService creates a new OrderService
func NewOrderService(log logger.Logger, repo repository.OrderRepository, catalog CatalogServicer, settings SettingsServicer, publisher events.Publisher) *OrderService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &OrderService{
		log:       log,
		repo:      repo,
		catalog:   catalog,
		settings:  settings,
		publisher: publisher,
	}
}

// SetBroadcaster sets the broadcaster for kitchen display updates
func (s *OrderService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// OrderDetails are the customer fields captured when an order is placed
type OrderDetails struct {
	CustomerName string
	TableNumber  string
}

// CreateCart opens an empty online cart for a restaurant
func (s *OrderService) CreateCart(ctx context.Context, restaurantID, locale string) (*models.Order, error) {
	if _, err := s.catalog.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	cart := &models.Order{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		Channel:      models.ChannelOnline,
		Status:       models.StatusCart,
		Locale:       locale,
		Items:        []models.OrderItem{},
	}
	if err := s.repo.CreateOrder(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// GetOrder retrieves a cart or an order with its lines
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("order %s not found", id)
	}
	return o, err
}

func (s *OrderService) getCart(ctx context.Context, id string) (*models.Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != models.StatusCart {
		return nil, ErrNotACart
	}
	return o, nil
}

// AddLines appends confirmed session lines to a cart of restaurantID
func (s *OrderService) AddLines(ctx context.Context, restaurantID, cartID string, lines []customizer.CartLineItem) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, errors.InvalidInput("no lines to add")
	}
	cart, err := s.getCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.RestaurantID != restaurantID {
		return nil, ErrCartMismatch
	}
	items := make([]models.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = models.OrderItemFromLine(line)
	}
	if err := s.repo.AddOrderItems(ctx, cartID, items); err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, cartID)
}

// RemoveLine deletes one line from a cart
func (s *OrderService) RemoveLine(ctx context.Context, cartID string, itemID int64) (*models.Order, error) {
	if _, err := s.getCart(ctx, cartID); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteOrderItem(ctx, cartID, itemID); err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("line %d not found", itemID)
		}
		return nil, err
	}
	return s.GetOrder(ctx, cartID)
}

// verifyLines re-prices every line from its structured choices against the
// current configuration and catalog
func (s *OrderService) verifyLines(ctx context.Context, restaurantID string, items []models.OrderItem) error {
	cfg, err := s.catalog.GetConfiguration(ctx, restaurantID)
	if err != nil {
		return err
	}
	for _, it := range items {
		product, err := s.catalog.GetProduct(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return ErrProductUnavailable
			}
			return err
		}
		if product.RestaurantID != restaurantID || !product.Available {
			return ErrProductUnavailable
		}
		item := product.Item()
		sel := customizer.SelectionFromChoices(it.Choices)
		if issues := customizer.Check(cfg, item, sel); len(issues) > 0 {
			msgs := make([]string, len(issues))
			for i, issue := range issues {
				msgs[i] = issue.String()
			}
			return &InvalidLineError{ItemID: it.ID, Name: it.Name, Issues: msgs}
		}
		computed := customizer.ComputePrice(cfg, item, sel)
		if !computed.Equal(it.UnitPrice) {
			return &PriceMismatchError{
				ItemID:   it.ID,
				Name:     it.Name,
				Stored:   it.UnitPrice.StringFixed(2),
				Computed: computed.StringFixed(2),
			}
		}
	}
	return nil
}

// PlaceOrder submits a cart to the kitchen after checking that ordering is
// open and that every line still costs what the customer saw
func (s *OrderService) PlaceOrder(ctx context.Context, cartID string, details OrderDetails) (*models.Order, error) {
	cart, err := s.getCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	open, err := s.settings.IsOrderingOpen(ctx, cart.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, ErrOrderingClosed
	}
	if err := s.verifyLines(ctx, cart.RestaurantID, cart.Items); err != nil {
		s.log.Warn("Cart rejected", "order_id", cartID, "error", err)
		return nil, err
	}

	cart.CustomerName = strings.TrimSpace(details.CustomerName)
	cart.TableNumber = strings.TrimSpace(details.TableNumber)
	cart.Total = cart.ComputeTotal()
	if err := s.repo.PlaceOrder(ctx, cart); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrNotACart
		}
		return nil, err
	}

	s.log.Info("Order placed", "order_id", cart.ID, "restaurant_id", cart.RestaurantID, "number", cart.Number, "total", cart.Total.StringFixed(2))
	s.notify(ctx, events.TopicOrderPlaced, cart)
	return cart, nil
}

// SubmitOrder stores a complete order taken at the counter. It skips the
// cart stage and is checked like a placed cart.
func (s *OrderService) SubmitOrder(ctx context.Context, o *models.Order) error {
	if len(o.Items) == 0 {
		return ErrEmptyCart
	}
	open, err := s.settings.IsOrderingOpen(ctx, o.RestaurantID)
	if err != nil {
		return err
	}
	if !open {
		return ErrOrderingClosed
	}
	if err := s.verifyLines(ctx, o.RestaurantID, o.Items); err != nil {
		return err
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.Status = models.StatusPending
	o.Total = o.ComputeTotal()
	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return err
	}
	s.log.Info("Order submitted", "order_id", o.ID, "restaurant_id", o.RestaurantID, "channel", o.Channel, "number", o.Number)
	s.notify(ctx, events.TopicOrderPlaced, o)
	return nil
}

// ListOrders returns the placed orders of a restaurant, optionally filtered by status
func (s *OrderService) ListOrders(ctx context.Context, restaurantID string, statuses ...models.OrderStatus) ([]models.Order, error) {
	for _, st := range statuses {
		if !st.Valid() {
			return nil, errors.InvalidInputf("invalid status %q", st)
		}
	}
	if len(statuses) == 0 {
		statuses = []models.OrderStatus{
			models.StatusPending, models.StatusPreparing, models.StatusReady,
			models.StatusCompleted, models.StatusCancelled,
		}
	}
	return s.repo.ListOrders(ctx, restaurantID, statuses...)
}

// UpdateStatus moves an order along the kitchen lifecycle
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, errors.InvalidInputf("invalid status %q", status)
	}
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransition(status) {
		return nil, errors.Conflictf("cannot move order from %s to %s", o.Status, status)
	}
	if err := s.repo.UpdateOrderStatus(ctx, id, status); err != nil {
		return nil, err
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()

	s.log.Info("Order status changed", "order_id", id, "number", o.Number, "status", status)
	s.notify(ctx, events.TopicOrderStatus, o)
	return o, nil
}

// Stats summarizes the orders placed since a point in time
func (s *OrderService) Stats(ctx context.Context, restaurantID string, since time.Time) (*models.OrderStats, error) {
	return s.repo.GetOrderStats(ctx, restaurantID, since)
}

// notify pushes an order to live displays and the event bus. Failures are
// logged; the order is already stored.
func (s *OrderService) notify(ctx context.Context, topic string, o *models.Order) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastOrder(topic, o)
	}
	e, err := events.NewEvent(topic, o.RestaurantID, o)
	if err != nil {
		s.log.Error("Failed to encode order event", "order_id", o.ID, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Warn("Failed to publish order event", "order_id", o.ID, "topic", topic, "error", err)
	}
}
