package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/galettery/galettery/internal/models"
	"github.com/galettery/galettery/internal/services"
	"github.com/galettery/galettery/internal/websocket"
)

// maxConfigurationSize bounds an uploaded configuration document
const maxConfigurationSize = 1 << 20

// ==================== Restaurants and products ====================

func (h *Handlers) handleListRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.Catalog.ListRestaurants(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, restaurants)
}

func (h *Handlers) handleCreateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req RestaurantCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	rest, err := h.Catalog.CreateRestaurant(r.Context(), services.Restaurant{
		Name:          req.Name,
		Slug:          req.Slug,
		CuisineType:   req.CuisineType,
		DefaultLocale: req.DefaultLocale,
		Locales:       req.Locales,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, rest)
}

// handleListProducts lists the whole catalog, sold-out products included
func (h *Handlers) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.ListProducts(r.Context(), chi.URLParam(r, "id"), false)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, products)
}

func (req ProductRequest) product() services.Product {
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	return services.Product{
		Name:             req.Name,
		NameTranslations: req.NameTranslations,
		Description:      req.Description,
		Category:         req.Category,
		Type:             req.Type,
		Price:            req.Price,
		Available:        available,
		DisplayOrder:     req.DisplayOrder,
	}
}

func (h *Handlers) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	product, err := h.Catalog.CreateProduct(r.Context(), chi.URLParam(r, "id"), req.product())
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, product)
}

func (h *Handlers) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	product, err := h.Catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req.product())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, product)
}

func (h *Handlers) handleSetAvailability(w http.ResponseWriter, r *http.Request) {
	var req AvailabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Catalog.SetProductAvailability(r.Context(), chi.URLParam(r, "id"), req.Available); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Availability updated")
}

func (h *Handlers) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Customization ====================

// handleSaveConfiguration stores a restaurant's configuration document, sent
// as raw JSON or YAML. Integrity issues are reported but do not block the save.
func (h *Handlers) handleSaveConfiguration(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxConfigurationSize))
	if err != nil {
		respondError(w, BadRequest("Failed to read body"))
		return
	}

	issues, err := h.Catalog.SaveConfiguration(r.Context(), chi.URLParam(r, "id"), data)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ConfigurationSaveResponse{Issues: issues})
}

func (h *Handlers) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Catalog.ListTemplates(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, templates)
}

// ==================== Kitchen ====================

// handleListOrders lists placed orders, filtered by ?status=pending,preparing
func (h *Handlers) handleListOrders(w http.ResponseWriter, r *http.Request) {
	var statuses []models.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, models.OrderStatus(strings.TrimSpace(s)))
		}
	}

	orders, err := h.Orders.ListOrders(r.Context(), chi.URLParam(r, "id"), statuses...)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, orders)
}

func (h *Handlers) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req OrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	order, err := h.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), models.OrderStatus(req.Status))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, order)
}

// handleGetStats summarizes orders since ?since= (RFC 3339), last 24 hours by default
func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	since := time.Now().Add(-24 * time.Hour)
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, BadRequest("Invalid since parameter"))
			return
		}
		since = t
	}

	stats, err := h.Orders.Stats(r.Context(), chi.URLParam(r, "id"), since)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stats)
}

func (h *Handlers) handleSetOrderingStatus(w http.ResponseWriter, r *http.Request) {
	var req OrderingStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.Catalog.GetRestaurant(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	if err := h.Settings.SetOrderingOpen(r.Context(), id, req.Open); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, OrderingStatusResponse{RestaurantID: id, Open: req.Open})
}

// handleKitchenWs streams every order of ?restaurant_id= to a kitchen display
func (h *Handlers) handleKitchenWs(w http.ResponseWriter, r *http.Request) {
	rest, err := h.Catalog.GetRestaurant(r.Context(), r.URL.Query().Get("restaurant_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	h.Hub.ServeWs(w, r, websocket.Subscription{RestaurantID: rest.ID, Kitchen: true})
}

// ==================== QR Codes ====================

func (h *Handlers) handleGetMenuURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.QR.MenuURL(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("table"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, MenuURLResponse{URL: url})
}

func (h *Handlers) handleGetMenuQR(w http.ResponseWriter, r *http.Request) {
	size, err := parseIntQuery(r, "size", 0)
	if err != nil {
		respondError(w, err)
		return
	}

	png, err := h.QR.MenuQR(r.Context(), chi.URLParam(r, "id"), size)
	if err != nil {
		respondError(w, err)
		return
	}
	respondPNG(w, png)
}

func (h *Handlers) handleGetTableQR(w http.ResponseWriter, r *http.Request) {
	size, err := parseIntQuery(r, "size", 0)
	if err != nil {
		respondError(w, err)
		return
	}

	png, err := h.QR.TableQR(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "table"), size)
	if err != nil {
		respondError(w, err)
		return
	}
	respondPNG(w, png)
}

// ==================== Backend, settings, maintenance ====================

func (h *Handlers) handleSyncBackend(w http.ResponseWriter, r *http.Request) {
	var req BackendSyncRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Catalog.SyncFromBackend(r.Context(), req.BackendURL)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// handleGetSettings returns global settings and the ordering status of ?restaurant_id=
func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.AllSettings(r.Context(), r.URL.Query().Get("restaurant_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, settings)
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	err := h.Settings.UpdateSettings(r.Context(), services.Settings{
		BaseURL:         req.BaseURL,
		BackendURL:      req.BackendURL,
		BackendAPIKey:   req.BackendAPIKey,
		DefaultCurrency: req.DefaultCurrency,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Settings updated")
}

func (h *Handlers) handleResetDatabase(w http.ResponseWriter, r *http.Request) {
	var req DatabaseResetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Settings.ResetTables(r.Context(), req.Tables)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}
