package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/galettery/galettery/internal/logger"
)

// DefaultQRSize is the PNG edge in pixels when none is requested
const DefaultQRSize = 256

// QRService renders the QR codes customers scan to open a restaurant's menu
type QRService struct {
	log      logger.Logger
	catalog  CatalogServicer
	settings SettingsServicer
}

// NewQRService creates a new QRService
func NewQRService(log logger.Logger, catalog CatalogServicer, settings SettingsServicer) *QRService {
	return &QRService{log: log, catalog: catalog, settings: settings}
}

// MenuURL is the public ordering URL of a restaurant, optionally bound to a table
func (s *QRService) MenuURL(ctx context.Context, restaurantID, table string) (string, error) {
	r, err := s.catalog.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return "", err
	}
	baseURL, err := s.settings.GetBaseURL(ctx)
	if err != nil {
		return "", err
	}
	if baseURL == "" {
		return "", ErrNoBaseURL
	}
	menuURL := fmt.Sprintf("%s/r/%s", strings.TrimSuffix(baseURL, "/"), url.PathEscape(r.Slug))
	if table != "" {
		menuURL += "?table=" + url.QueryEscape(table)
	}
	return menuURL, nil
}

// MenuQR renders the menu QR code of a restaurant as a PNG
func (s *QRService) MenuQR(ctx context.Context, restaurantID string, size int) ([]byte, error) {
	return s.render(ctx, restaurantID, "", size)
}

// TableQR renders the QR code of one table as a PNG
func (s *QRService) TableQR(ctx context.Context, restaurantID, table string, size int) ([]byte, error) {
	if strings.TrimSpace(table) == "" {
		return nil, ErrInvalidQRTable
	}
	return s.render(ctx, restaurantID, table, size)
}

func (s *QRService) render(ctx context.Context, restaurantID, table string, size int) ([]byte, error) {
	if size == 0 {
		size = DefaultQRSize
	}
	if size < 128 || size > 1024 {
		return nil, ErrInvalidQRSize
	}
	menuURL, err := s.MenuURL(ctx, restaurantID, table)
	if err != nil {
		return nil, err
	}
	s.log.Debug("Rendering QR code", "restaurant_id", restaurantID, "url", menuURL, "size", size)
	return qrcode.Encode(menuURL, qrcode.Medium, size)
}
