package handler

import (
	"net/http"

	"bookstore/internal/model"
	"bookstore/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	var req model.OrderRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.CreateOrder(r.Context(), p.UserID, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, order)
}

// CreateFromCart handles POST /api/orders/from-cart requests.
func (h *OrderHandler) CreateFromCart(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	var req model.CartOrderRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.CreateOrderFromCart(r.Context(), p.UserID, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, order)
}

// List handles GET /api/orders requests (admin).
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), queryInt(r, "page", 1), queryInt(r, "limit", 10))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, page)
}

// MyOrders handles GET /api/orders/my-orders requests.
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.ListByUser(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	orderID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	order, err := h.service.GetByID(r.Context(), p, orderID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/orders/{id}/status requests (admin).
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.OrderStatusRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, order)
}
