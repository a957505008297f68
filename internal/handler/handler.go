package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"bookstore/internal/middleware"
	"bookstore/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Response is the envelope for every successful response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeData wraps data in the success envelope.
func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Response{Success: true, Data: data})
}

// writeMessage writes a success envelope carrying only a message.
func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message})
}

// writeError writes an error envelope with the given status code.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", message).Str("code", code).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Success: false, Message: message, Code: code})
}

// writeServiceError maps a service error onto an HTTP status. Anything that is
// not a domain error is reported as a generic server error.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	de, ok := model.AsDomainError(err)
	if !ok {
		logger.Error().Err(err).Msg("unexpected service error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "internal server error",
			Code:    model.ErrCodeInternalError,
		})
		return
	}
	writeError(w, statusFor(de.Kind()), de.Code, de.Message, logger)
}

func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindInvalidInput, model.KindOutOfStock:
		return http.StatusBadRequest
	case model.KindUnauthorised:
		return http.StatusUnauthorized
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v and validates it. It writes the error
// response itself and reports whether the handler should carry on.
func decode(w http.ResponseWriter, r *http.Request, v interface{}, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return check(w, v, logger)
}

// decodeOptional is decode for endpoints whose body may be empty.
func decodeOptional(w http.ResponseWriter, r *http.Request, v interface{}, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return check(w, v, logger)
}

func check(w http.ResponseWriter, v interface{}, logger zerolog.Logger) bool {
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, validationMessage(err), logger)
		return false
	}
	return true
}

// validationMessage turns the first validation failure into a readable sentence.
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "invalid request"
	}
	fe := errs[0]
	field := fe.Namespace()
	if _, rest, found := strings.Cut(field, "."); found {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		switch fe.Kind() {
		case reflect.Slice, reflect.Map:
			if fe.Param() == "1" {
				return fmt.Sprintf("%s must not be empty", field)
			}
			return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
		case reflect.String:
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		default:
			return fmt.Sprintf("%s must be at least %s", field, fe.Param())
		}
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// pathID parses a UUID path parameter, answering 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid "+name, logger)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(r *http.Request, key string, def int) int {
	value, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || value < 1 {
		return def
	}
	return value
}

// caller returns the authenticated principal, answering 401 when there is none.
func caller(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (model.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, model.ErrUnauthorised.Message, logger)
		return model.Principal{}, false
	}
	return p, true
}
