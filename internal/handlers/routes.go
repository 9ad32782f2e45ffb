package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger) // Custom conditional HTTP logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)

	r.Get("/healthz", h.handleHealth)

	// WebSockets stay outside the timeout middleware
	r.Get("/ws/restaurants/{id}", h.handleCustomerWs)
	r.With(h.Auth.RequireAuthAPI).Get("/api/admin/ws", h.handleKitchenWs)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// Customer API (public)
		r.Get("/api/restaurants/by-slug/{slug}", h.handleGetRestaurantBySlug)
		r.Get("/api/restaurants/{id}", h.handleGetRestaurant)
		r.Get("/api/restaurants/{id}/products", h.handleGetMenu)
		r.Get("/api/restaurants/{id}/configuration", h.handleGetConfiguration)
		r.Post("/api/restaurants/{id}/sessions", h.handleOpenSession)
		r.Post("/api/restaurants/{id}/carts", h.handleCreateCart)

		r.Get("/api/sessions/{id}", h.handleGetSession)
		r.Post("/api/sessions/{id}/actions", h.handleApplyAction)
		r.Post("/api/sessions/{id}/confirm", h.handleConfirmSession)
		r.Delete("/api/sessions/{id}", h.handleCancelSession)

		r.Get("/api/carts/{id}", h.handleGetCart)
		r.Delete("/api/carts/{id}/items/{itemID}", h.handleRemoveCartItem)
		r.Post("/api/carts/{id}/place", h.handlePlaceOrder)
		r.Get("/api/orders/{id}", h.handleGetOrder)

		// Auth routes (public)
		r.Post("/api/admin/login", h.handleLogin)
		r.Post("/api/admin/logout", h.handleLogout)

		// Merchant API (protected)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuthAPI)

			// Restaurants and catalog
			r.Get("/api/admin/restaurants", h.handleListRestaurants)
			r.Post("/api/admin/restaurants", h.handleCreateRestaurant)
			r.Get("/api/admin/restaurants/{id}/products", h.handleListProducts)
			r.Post("/api/admin/restaurants/{id}/products", h.handleCreateProduct)
			r.Put("/api/admin/products/{id}", h.handleUpdateProduct)
			r.Put("/api/admin/products/{id}/availability", h.handleSetAvailability)
			r.Delete("/api/admin/products/{id}", h.handleDeleteProduct)

			// Customization
			r.Get("/api/admin/restaurants/{id}/configuration", h.handleGetConfiguration)
			r.Put("/api/admin/restaurants/{id}/configuration", h.handleSaveConfiguration)
			r.Get("/api/admin/templates", h.handleListTemplates)

			// Kitchen
			r.Get("/api/admin/restaurants/{id}/orders", h.handleListOrders)
			r.Put("/api/admin/orders/{id}/status", h.handleUpdateOrderStatus)
			r.Get("/api/admin/restaurants/{id}/stats", h.handleGetStats)
			r.Put("/api/admin/restaurants/{id}/ordering", h.handleSetOrderingStatus)

			// QR Codes
			r.Get("/api/admin/restaurants/{id}/menu-url", h.handleGetMenuURL)
			r.Get("/api/admin/restaurants/{id}/qr", h.handleGetMenuQR)
			r.Get("/api/admin/restaurants/{id}/tables/{table}/qr", h.handleGetTableQR)

			// Backend
			r.Post("/api/admin/sync", h.handleSyncBackend)

			// Settings
			r.Get("/api/admin/settings", h.handleGetSettings)
			r.Put("/api/admin/settings", h.handleUpdateSettings)
			r.Post("/api/admin/reset-database", h.handleResetDatabase)

			// POS
			r.Post("/api/pos/tickets", h.handleOpenTicket)
			r.Get("/api/pos/tickets/{id}", h.handleGetTicket)
			r.Delete("/api/pos/tickets/{id}", h.handleCancelTicket)
			r.Post("/api/pos/tickets/{id}/persons", h.handleAddPerson)
			r.Put("/api/pos/tickets/{id}/active", h.handleSwitchPerson)
			r.Post("/api/pos/tickets/{id}/items", h.handleStartItem)
			r.Post("/api/pos/tickets/{id}/actions", h.handleTicketAction)
			r.Post("/api/pos/tickets/{id}/confirm", h.handleConfirmItem)
			r.Delete("/api/pos/tickets/{id}/persons/{person}/lines/{line}", h.handleRemoveTicketLine)
			r.Post("/api/pos/tickets/{id}/checkout", h.handleCheckout)
		})
	})

	return r
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]string{"status": "ok"})
}
