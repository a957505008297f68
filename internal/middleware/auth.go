package middleware

import (
	"context"
	"net/http"
	"strings"

	"bookstore/internal/model"

	"github.com/rs/zerolog"
)

type principalKey struct{}

// TokenParser resolves an access token to the caller it identifies.
type TokenParser interface {
	Parse(token string) (model.Principal, error)
}

// WithPrincipal returns a copy of ctx carrying the authenticated caller.
func WithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller stored by Authenticate.
func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(model.Principal)
	return p, ok
}

// Authenticate requires a valid "Authorization: Bearer <token>" header.
func Authenticate(parser TokenParser, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required")
				return
			}

			principal, err := parser.Parse(strings.TrimSpace(token))
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid bearer token")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAdmin rejects callers without the admin role. It must run after Authenticate.
func RequireAdmin(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required")
				return
			}
			if !principal.IsAdmin() {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("user_id", principal.UserID.String()).
					Msg("admin route denied")
				writeError(w, http.StatusForbidden, model.ErrCodeForbidden, "admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
