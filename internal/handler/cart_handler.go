package handler

import (
	"net/http"

	"bookstore/internal/model"
	"bookstore/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles shopping cart HTTP requests. Every route requires an
// authenticated caller and acts on the caller's own cart.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	cart, err := h.service.Get(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, cart)
}

// Add handles POST /api/cart/add requests.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	var req model.AddToCartRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	cart, err := h.service.Add(r.Context(), p.UserID, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, cart)
}

// Update handles PUT /api/cart/update requests.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	var req model.UpdateCartItemRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	cart, err := h.service.UpdateItem(r.Context(), p.UserID, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, cart)
}

// Remove handles DELETE /api/cart/remove/{itemId} requests.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	itemID, ok := pathID(w, r, "itemId", h.logger)
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), p.UserID, itemID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, cart)
}

// Clear handles DELETE /api/cart/clear requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	cart, err := h.service.Clear(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, cart)
}
