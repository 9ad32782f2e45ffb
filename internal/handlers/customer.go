package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/galettery/galettery/internal/customizer"
	"github.com/galettery/galettery/internal/services"
	"github.com/galettery/galettery/internal/websocket"
)

// requestLocale prefers an explicit locale and falls back to Accept-Language
func requestLocale(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return r.Header.Get("Accept-Language")
}

func (h *Handlers) restaurantResponse(w http.ResponseWriter, r *http.Request, lookup func() (RestaurantResponse, error)) {
	resp, err := lookup()
	if err != nil {
		respondError(w, err)
		return
	}
	open, err := h.Settings.IsOrderingOpen(r.Context(), resp.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	resp.OrderingOpen = open
	respondOK(w, resp)
}

func (h *Handlers) handleGetRestaurant(w http.ResponseWriter, r *http.Request) {
	h.restaurantResponse(w, r, func() (RestaurantResponse, error) {
		rest, err := h.Catalog.GetRestaurant(r.Context(), chi.URLParam(r, "id"))
		return RestaurantResponse{Restaurant: rest}, err
	})
}

func (h *Handlers) handleGetRestaurantBySlug(w http.ResponseWriter, r *http.Request) {
	h.restaurantResponse(w, r, func() (RestaurantResponse, error) {
		rest, err := h.Catalog.GetRestaurantBySlug(r.Context(), chi.URLParam(r, "slug"))
		return RestaurantResponse{Restaurant: rest}, err
	})
}

// handleGetMenu lists the products a customer can order
func (h *Handlers) handleGetMenu(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Catalog.GetRestaurant(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	products, err := h.Catalog.ListProducts(r.Context(), id, true)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, products)
}

func (h *Handlers) handleGetConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Catalog.GetConfiguration(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, cfg)
}

// ==================== Sessions ====================

func (h *Handlers) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req SessionOpenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.ProductID == "" {
		respondError(w, BadRequest("product_id is required"))
		return
	}

	view, err := h.Sessions.Open(r.Context(), chi.URLParam(r, "id"), req.ProductID, requestLocale(r, req.Locale))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, view)
}

func (h *Handlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, view)
}

// handleApplyAction runs one interaction. A refused action is not an error:
// the view comes back with applied=false.
func (h *Handlers) handleApplyAction(w http.ResponseWriter, r *http.Request) {
	var action services.Action
	if err := decodeJSON(r, &action); err != nil {
		respondError(w, err)
		return
	}

	view, err := h.Sessions.Apply(r.Context(), chi.URLParam(r, "id"), action)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, view)
}

func (h *Handlers) handleConfirmSession(w http.ResponseWriter, r *http.Request) {
	var req SessionConfirmRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	var resp ConfirmResponse
	var sink services.LineSink
	if req.CartID != "" {
		sink = func(ctx context.Context, restaurantID string, lines []customizer.CartLineItem) error {
			cart, err := h.Orders.AddLines(ctx, restaurantID, req.CartID, lines)
			resp.Cart = cart
			return err
		}
	}

	lines, err := h.Sessions.ConfirmInto(r.Context(), chi.URLParam(r, "id"), sink)
	if err != nil {
		respondError(w, err)
		return
	}
	resp.Lines = lines
	respondOK(w, resp)
}

func (h *Handlers) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Carts and orders ====================

func (h *Handlers) handleCreateCart(w http.ResponseWriter, r *http.Request) {
	var req CartCreateRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	cart, err := h.Orders.CreateCart(r.Context(), chi.URLParam(r, "id"), requestLocale(r, req.Locale))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, cart)
}

func (h *Handlers) handleGetCart(w http.ResponseWriter, r *http.Request) {
	h.handleGetOrder(w, r)
}

func (h *Handlers) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		respondError(w, BadRequest("Invalid itemID parameter"))
		return
	}

	cart, err := h.Orders.RemoveLine(r.Context(), chi.URLParam(r, "id"), itemID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, cart)
}

func (h *Handlers) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	order, err := h.Orders.PlaceOrder(r.Context(), chi.URLParam(r, "id"), services.OrderDetails{
		CustomerName: req.CustomerName,
		TableNumber:  req.TableNumber,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, order)
}

func (h *Handlers) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, order)
}

// handleCustomerWs streams ordering status and, with ?order_id=, the status
// of the customer's own order
func (h *Handlers) handleCustomerWs(w http.ResponseWriter, r *http.Request) {
	rest, err := h.Catalog.GetRestaurant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	h.Hub.ServeWs(w, r, websocket.Subscription{
		RestaurantID: rest.ID,
		OrderID:      r.URL.Query().Get("order_id"),
	})
}
