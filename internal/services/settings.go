package services

import (
	"context"

	"github.com/galettery/galettery/internal/logger"
	"github.com/galettery/galettery/internal/models"
	"github.com/galettery/galettery/internal/repository"
)

// Broadcaster defines the interface for pushing live updates to kitchen
// displays and dashboards
type Broadcaster interface {
	BroadcastOrderingStatus(restaurantID string, open bool)
	BroadcastOrder(eventType string, order *models.Order)
}

// SettingsService handles settings-related business logic
type SettingsService struct {
	log         logger.Logger
	repo        repository.SettingsRepository
	broadcaster Broadcaster
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *SettingsService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func orderingKey(restaurantID string) string {
	return "ordering_open:" + restaurantID
}

// IsOrderingOpen reports whether a restaurant currently accepts orders
func (s *SettingsService) IsOrderingOpen(ctx context.Context, restaurantID string) (bool, error) {
	value, err := s.repo.GetSetting(ctx, orderingKey(restaurantID))
	if err != nil {
		if err == repository.ErrNotFound {
			return true, nil // open until a merchant closes it
		}
		return false, err
	}
	return value == "true", nil
}

// SetOrderingOpen opens or closes ordering for a restaurant and broadcasts the change
func (s *SettingsService) SetOrderingOpen(ctx context.Context, restaurantID string, open bool) error {
	value := "false"
	if open {
		value = "true"
	}
	if err := s.repo.SetSetting(ctx, orderingKey(restaurantID), value); err != nil {
		return err
	}
	s.log.Info("Ordering status changed", "restaurant_id", restaurantID, "open", open)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastOrderingStatus(restaurantID, open)
	}
	return nil
}

// GetBaseURL returns the public base URL used in QR codes
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	return s.optional(ctx, "base_url")
}

// SetBaseURL saves the public base URL
func (s *SettingsService) SetBaseURL(ctx context.Context, url string) error {
	return s.repo.SetSetting(ctx, "base_url", url)
}

// GetBackendURL returns the hosted backend gateway URL
func (s *SettingsService) GetBackendURL(ctx context.Context) (string, error) {
	return s.optional(ctx, "backend_url")
}

// SetBackendURL saves the hosted backend gateway URL
func (s *SettingsService) SetBackendURL(ctx context.Context, url string) error {
	return s.repo.SetSetting(ctx, "backend_url", url)
}

// GetSetting retrieves an arbitrary setting
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, key)
}

// SetSetting saves an arbitrary setting
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

// optional reads a setting that has no default
func (s *SettingsService) optional(ctx context.Context, key string) (string, error) {
	value, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// AllSettings returns the settings shown on a restaurant dashboard
func (s *SettingsService) AllSettings(ctx context.Context, restaurantID string) (map[string]interface{}, error) {
	settings := make(map[string]interface{})

	open, err := s.IsOrderingOpen(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	settings["ordering_open"] = open

	baseURL, _ := s.GetBaseURL(ctx)
	settings["base_url"] = baseURL

	backendURL, _ := s.GetBackendURL(ctx)
	settings["backend_url"] = backendURL

	return settings, nil
}

// Settings represents global settings for update operations
type Settings struct {
	BaseURL         string
	BackendURL      string
	BackendAPIKey   string
	DefaultCurrency string
}

// UpdateSettings updates multiple settings at once; empty fields are left untouched
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	updates := []struct{ key, value string }{
		{"base_url", settings.BaseURL},
		{"backend_url", settings.BackendURL},
		{"backend_api_key", settings.BackendAPIKey},
		{"default_currency", settings.DefaultCurrency},
	}
	for _, u := range updates {
		if u.value == "" {
			continue
		}
		if err := s.repo.SetSetting(ctx, u.key, u.value); err != nil {
			return err
		}
	}
	return nil
}

// ResetTablesResult contains the result of a database reset
type ResetTablesResult struct {
	Tables  []string `json:"tables"`
	Message string   `json:"message"`
}

// ValidTables defines which tables can be reset from the dashboard
var ValidTables = map[string]bool{
	"orders": true, "order_items": true, "products": true, "customization_configs": true, "settings": true,
}

// ResetTables validates and clears the specified tables. Clearing orders
// also clears their lines, which are listed first.
func (s *SettingsService) ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error) {
	if len(tables) == 0 {
		return nil, ErrNoTablesSpecified
	}

	var tablesToReset []string
	for _, table := range tables {
		if !ValidTables[table] {
			return nil, &InvalidTableError{Table: table}
		}
		tablesToReset = append(tablesToReset, table)
	}
	if containsTable(tablesToReset, "orders") && !containsTable(tablesToReset, "order_items") {
		tablesToReset = append([]string{"order_items"}, tablesToReset...)
	}

	for _, table := range tablesToReset {
		if err := s.repo.ClearTable(ctx, table); err != nil {
			return nil, err
		}
	}
	s.log.Warn("Tables reset", "tables", tablesToReset)

	return &ResetTablesResult{
		Tables:  tablesToReset,
		Message: "Successfully deleted data from tables",
	}, nil
}

func containsTable(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
