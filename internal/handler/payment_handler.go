package handler

import (
	"net/http"

	"bookstore/internal/model"
	"bookstore/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentHandler handles payment HTTP requests.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// Create handles POST /api/payments requests.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	var req model.PaymentRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	payment, err := h.service.Create(r.Context(), p, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusCreated, payment)
}

// CreateEthereum handles POST /api/payments/ethereum requests.
func (h *PaymentHandler) CreateEthereum(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	var req model.EthereumPaymentRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	checkout, err := h.service.CreateEthereum(r.Context(), p, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusCreated, checkout)
}

// ConfirmCashOnDelivery handles POST /api/payments/cod/{paymentId} requests.
func (h *PaymentHandler) ConfirmCashOnDelivery(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.target(w, r)
	if !ok {
		return
	}

	payment, err := h.service.ConfirmCashOnDelivery(r.Context(), p, id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, payment)
}

// ConfirmBankTransfer handles POST /api/payments/bank-transfer/{paymentId}
// requests. The body with a reference code is optional.
func (h *PaymentHandler) ConfirmBankTransfer(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.target(w, r)
	if !ok {
		return
	}

	var req model.BankConfirmRequest
	if !decodeOptional(w, r, &req, h.logger) {
		return
	}

	payment, err := h.service.ConfirmBankTransfer(r.Context(), p, id, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, payment)
}

// ConfirmEthereum handles POST /api/payments/ethereum/{paymentId} requests.
func (h *PaymentHandler) ConfirmEthereum(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.target(w, r)
	if !ok {
		return
	}

	var req model.EthereumConfirmRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	payment, err := h.service.ConfirmEthereum(r.Context(), p, id, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, payment)
}

// GetByID handles GET /api/payments/{paymentId} requests.
func (h *PaymentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.target(w, r)
	if !ok {
		return
	}

	payment, err := h.service.GetByID(r.Context(), p, id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, payment)
}

// ListByUser handles GET /api/payments/user/{userId} requests.
func (h *PaymentHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	userID, ok := pathID(w, r, "userId", h.logger)
	if !ok {
		return
	}

	payments, err := h.service.ListByUser(r.Context(), p, userID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, payments)
}

// ListByOrder handles GET /api/payments/order/{orderId} requests.
func (h *PaymentHandler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	orderID, ok := pathID(w, r, "orderId", h.logger)
	if !ok {
		return
	}

	payments, err := h.service.ListByOrder(r.Context(), p, orderID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, payments)
}

// Cancel handles PUT /api/payments/cancel/{paymentId} requests.
func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.target(w, r)
	if !ok {
		return
	}

	payment, err := h.service.Cancel(r.Context(), p, id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, payment)
}

// Refund handles POST /api/payments/refund/{paymentId} requests.
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.target(w, r)
	if !ok {
		return
	}

	payment, err := h.service.Refund(r.Context(), p, id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, payment)
}

// UpdateStatus handles PATCH /api/payments/{paymentId}/status requests (admin).
func (h *PaymentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "paymentId", h.logger)
	if !ok {
		return
	}

	var req model.PaymentStatusRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	payment, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, payment)
}

// Stats handles GET /api/payments/stats requests (admin).
func (h *PaymentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, stats)
}

// Methods handles GET /api/payments/methods requests.
func (h *PaymentHandler) Methods(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.service.Methods())
}

// target resolves the caller and the {paymentId} path parameter.
func (h *PaymentHandler) target(w http.ResponseWriter, r *http.Request) (model.Principal, uuid.UUID, bool) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return model.Principal{}, uuid.Nil, false
	}
	id, ok := pathID(w, r, "paymentId", h.logger)
	if !ok {
		return model.Principal{}, uuid.Nil, false
	}
	return p, id, true
}
