package handler

import (
	"net/http"

	"bookstore/internal/model"
	"bookstore/internal/service"

	"github.com/rs/zerolog"
)

// CategoryHandler handles category HTTP requests.
type CategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(service service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger.With().Str("handler", "category").Logger(),
	}
}

// List handles GET /api/categories requests.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, categories)
}

// Create handles POST /api/categories requests.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CategoryRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	category, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusCreated, category)
}

// ListMain handles GET /api/categories/main requests.
func (h *CategoryHandler) ListMain(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListMain(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, categories)
}

// Popular handles GET /api/categories/popular requests.
func (h *CategoryHandler) Popular(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Popular(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, counts)
}

// ListSub handles GET /api/categories/sub/{parentId} requests.
func (h *CategoryHandler) ListSub(w http.ResponseWriter, r *http.Request) {
	parentID, ok := pathID(w, r, "parentId", h.logger)
	if !ok {
		return
	}

	categories, err := h.service.ListSub(r.Context(), parentID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, categories)
}

// GetBySlug handles GET /api/categories/slug/{slug} requests.
func (h *CategoryHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, category)
}

// Books handles GET /api/categories/slug/{slug}/books requests.
func (h *CategoryHandler) Books(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.Books(r.Context(), r.PathValue("slug"), queryInt(r, "page", 1), queryInt(r, "limit", 10))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, books)
}

// GetByID handles GET /api/categories/{id} requests.
func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	category, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, category)
}

// Update handles PUT /api/categories/{id} requests.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var upd model.CategoryUpdate
	if !decode(w, r, &upd, h.logger) {
		return
	}

	category, err := h.service.Update(r.Context(), id, &upd)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, category)
}

// Delete handles DELETE /api/categories/{id} requests.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeMessage(w, "category deleted")
}
