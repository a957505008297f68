package handler

import (
	"net/http"

	"bookstore/internal/model"
	"bookstore/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles account HTTP requests.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /api/auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, resp)
}

// Profile handles GET /api/auth/profile requests.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.service.Profile(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/auth/profile requests.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	var req model.ProfileUpdateRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), p.UserID, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeData(w, http.StatusOK, user)
}
