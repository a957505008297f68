package handler

import (
	"net/http"

	"bookstore/internal/model"
	"bookstore/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// BookHandler handles catalogue HTTP requests.
type BookHandler struct {
	service service.BookService
	logger  zerolog.Logger
}

// NewBookHandler creates a new book handler.
func NewBookHandler(service service.BookService, logger zerolog.Logger) *BookHandler {
	return &BookHandler{
		service: service,
		logger:  logger.With().Str("handler", "book").Logger(),
	}
}

// List handles GET /api/books requests.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), queryInt(r, "page", 1), queryInt(r, "limit", 10))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, page)
}

// Create handles POST /api/books requests.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.BookRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	book, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusCreated, book)
}

// GetByID handles GET /api/books/{id} requests.
func (h *BookHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	book, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, book)
}

// Update handles PUT /api/books/{id} requests.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var upd model.BookUpdate
	if !decode(w, r, &upd, h.logger) {
		return
	}

	book, err := h.service.Update(r.Context(), id, &upd)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, book)
}

// Delete handles DELETE /api/books/{id} requests.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeMessage(w, "book deleted")
}

// Search handles GET /api/books/search?q=&category=&minPrice=&maxPrice= requests.
func (h *BookHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.BookFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
	}

	for key, dst := range map[string]**decimal.Decimal{"minPrice": &filter.MinPrice, "maxPrice": &filter.MaxPrice} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid "+key, h.logger)
			return
		}
		*dst = &value
	}

	books, err := h.service.Search(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, books)
}

// Categories handles GET /api/books/categories requests.
func (h *BookHandler) Categories(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.Categories(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, names)
}

// Flagged returns a handler serving one curated list, e.g. GET /api/books/featured.
func (h *BookHandler) Flagged(flag model.BookFlag) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		books, err := h.service.ListFlagged(r.Context(), flag, queryInt(r, "limit", 0))
		if err != nil {
			writeServiceError(w, err, h.logger)
			return
		}
		writeData(w, http.StatusOK, books)
	}
}

// ByCategory handles GET /api/books/category/{category} requests.
func (h *BookHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	if category == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "category is required", h.logger)
		return
	}

	page, err := h.service.ListByCategory(r.Context(), category, queryInt(r, "page", 1), queryInt(r, "limit", 10))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, page)
}
