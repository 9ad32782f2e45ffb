package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/galettery/galettery/internal/auth"
	"github.com/galettery/galettery/internal/config"
	"github.com/galettery/galettery/internal/events"
	"github.com/galettery/galettery/internal/handlers"
	"github.com/galettery/galettery/internal/logger"
	"github.com/galettery/galettery/internal/repository"
	"github.com/galettery/galettery/internal/services"
	"github.com/galettery/galettery/internal/websocket"
	"github.com/galettery/galettery/pkg/backend"
)

// sweepInterval is how often idle customization sessions are collected
const sweepInterval = time.Minute

// App holds all application dependencies
type App struct {
	log         logger.Logger
	handlers    *handlers.Handlers
	repo        *repository.Repository
	settings    *services.SettingsService
	publisher   events.Publisher
	cancelSweep context.CancelFunc
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg *config.Config, client backend.Client, staffAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.NATSURL != "" {
		nats, err := events.NewNATSPublisher(cfg.NATSURL, log)
		if err != nil {
			repo.Close()
			return nil, err
		}
		publisher = nats
		log.Info("Order events enabled", "nats_url", cfg.NATSURL)
	}

	ctx := context.Background()

	// Initialize services
	catalogService := services.NewCatalogService(log, repo, client)
	settingsService := services.NewSettingsService(log, repo)
	sessionService := services.NewSessionService(log, catalogService, cfg.SessionTTL)
	orderService := services.NewOrderService(log, repo, catalogService, settingsService, publisher)
	posService := services.NewPOSService(log, sessionService, orderService)
	qrService := services.NewQRService(log, catalogService, settingsService)

	configureBackend(ctx, log, cfg, client, settingsService)
	if cfg.BaseURL != "" {
		if err := settingsService.SetBaseURL(ctx, cfg.BaseURL); err != nil {
			log.Warn("Failed to store base URL", "error", err)
		}
	}

	if cfg.TemplatesDir != "" {
		if _, err := catalogService.ImportTemplates(ctx, cfg.TemplatesDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				publisher.Close()
				repo.Close()
				return nil, fmt.Errorf("failed to import templates: %w", err)
			}
			log.Warn("Templates directory not found", "dir", cfg.TemplatesDir)
		}
	}

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, settingsService)
	hub.Start()
	settingsService.SetBroadcaster(hub)
	orderService.SetBroadcaster(hub)

	// Sweep idle sessions with context for graceful shutdown
	sweepCtx, cancel := context.WithCancel(context.Background())
	go sessionService.StartSweeper(sweepCtx, sweepInterval)

	h := handlers.New(
		catalogService,
		sessionService,
		orderService,
		posService,
		qrService,
		settingsService,
		staffAuth,
		hub,
		log,
	)

	return &App{
		log:         log,
		handlers:    h,
		repo:        repo,
		settings:    settingsService,
		publisher:   publisher,
		cancelSweep: cancel,
	}, nil
}

// configureBackend points the gateway client at the configured URL, falling
// back to what was saved from the dashboard
func configureBackend(ctx context.Context, log logger.Logger, cfg *config.Config, client backend.Client, settings *services.SettingsService) {
	url := cfg.BackendURL
	if url == "" {
		url, _ = settings.GetBackendURL(ctx)
	}
	if url != "" {
		client.SetBaseURL(url)
	}

	key := cfg.BackendAPIKey
	if key == "" {
		key, _ = settings.GetSetting(ctx, "backend_api_key")
	}
	if key != "" {
		client.SetAPIKey(key)
	}
	log.Debug("Backend configured", "url", url, "api_key", key != "")
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancelSweep != nil {
		a.cancelSweep()
		a.cancelSweep = nil
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("Failed to close event publisher", "error", err)
		}
		a.publisher = nil
	}
}

// Run starts the HTTP server
func (a *App) Run(addr string) error {
	// Set default base URL if not configured, using detected LAN IP
	ip := getPreferredIP(realNetworkProvider{})
	baseURL := fmt.Sprintf("http://%s%s", ip, addr)
	a.setDefaultBaseURL(baseURL)

	a.log.Info("Server starting", "url", baseURL)
	a.log.Info("Dashboard API", "url", baseURL+"/api/admin")
	return http.ListenAndServe(addr, a.Router())
}

// setDefaultBaseURL sets the base URL setting if not already configured
// or if current value uses localhost (which isn't useful for QR codes)
func (a *App) setDefaultBaseURL(baseURL string) {
	ctx := context.Background()
	existing, _ := a.settings.GetBaseURL(ctx)

	needsUpdate := existing == "" || strings.Contains(existing, "localhost")
	if needsUpdate {
		if err := a.settings.SetBaseURL(ctx, baseURL); err != nil {
			a.log.Warn("Failed to set default base_url", "error", err)
		} else {
			a.log.Info("Default base URL set", "url", baseURL)
		}
	}
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider lists network interfaces
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IPv4 address for phones on the shop's
// network to reach the server. Private ranges win; localhost is the last resort.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		if ip.IsPrivate() {
			return ip.String()
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}
