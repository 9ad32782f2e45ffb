package handlers

import (
	"github.com/galettery/galettery/internal/auth"
	"github.com/galettery/galettery/internal/services"
	"github.com/galettery/galettery/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Catalog  services.CatalogServicer
	Sessions services.SessionServicer
	Orders   services.OrderServicer
	POS      services.POSServicer
	QR       services.QRServicer
	Settings services.SettingsServicer
	Auth     *auth.Auth
	Hub      *websocket.Hub
	Log      HTTPLogger
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	catalog services.CatalogServicer,
	sessions services.SessionServicer,
	orders services.OrderServicer,
	pos services.POSServicer,
	qr services.QRServicer,
	settings services.SettingsServicer,
	staffAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
) *Handlers {
	return &Handlers{
		Catalog:  catalog,
		Sessions: sessions,
		Orders:   orders,
		POS:      pos,
		QR:       qr,
		Settings: settings,
		Auth:     staffAuth,
		Hub:      hub,
		Log:      log,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }
