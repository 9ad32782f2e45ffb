package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/galettery/galettery/internal/services"
)

func (h *Handlers) handleOpenTicket(w http.ResponseWriter, r *http.Request) {
	var req TicketOpenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	ticket, err := h.POS.OpenTicket(r.Context(), req.RestaurantID, req.TableNumber)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, ticket)
}

func (h *Handlers) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.POS.GetTicket(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ticket)
}

func (h *Handlers) handleCancelTicket(w http.ResponseWriter, r *http.Request) {
	if err := h.POS.CancelTicket(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleAddPerson(w http.ResponseWriter, r *http.Request) {
	var req PersonAddRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	ticket, err := h.POS.AddPerson(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ticket)
}

func (h *Handlers) handleSwitchPerson(w http.ResponseWriter, r *http.Request) {
	var req PersonSwitchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	ticket, err := h.POS.SwitchPerson(r.Context(), chi.URLParam(r, "id"), req.Index)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ticket)
}

// handleStartItem opens a customization session for the active person
func (h *Handlers) handleStartItem(w http.ResponseWriter, r *http.Request) {
	var req SessionOpenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.ProductID == "" {
		respondError(w, BadRequest("product_id is required"))
		return
	}

	view, err := h.POS.StartItem(r.Context(), chi.URLParam(r, "id"), req.ProductID, requestLocale(r, req.Locale))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, view)
}

func (h *Handlers) handleTicketAction(w http.ResponseWriter, r *http.Request) {
	var action services.Action
	if err := decodeJSON(r, &action); err != nil {
		respondError(w, err)
		return
	}

	view, err := h.POS.Apply(r.Context(), chi.URLParam(r, "id"), action)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, view)
}

func (h *Handlers) handleConfirmItem(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.POS.ConfirmItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ticket)
}

func (h *Handlers) handleRemoveTicketLine(w http.ResponseWriter, r *http.Request) {
	person, err := parseIntParam(r, "person")
	if err != nil {
		respondError(w, err)
		return
	}
	line, err := parseIntParam(r, "line")
	if err != nil {
		respondError(w, err)
		return
	}

	ticket, err := h.POS.RemoveLine(r.Context(), chi.URLParam(r, "id"), person, line)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ticket)
}

func (h *Handlers) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	order, err := h.POS.Checkout(r.Context(), chi.URLParam(r, "id"), req.CustomerName)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, order)
}
