// Package auth issues and verifies access tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"bookstore/internal/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for malformed, tampered or expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the JWT claims carried by an access token.
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a token manager with the given signing secret and lifetime.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for the user.
func (m *TokenManager) Issue(user *model.User) (string, error) {
	now := m.now()
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns the caller it identifies.
func (m *TokenManager) Parse(tokenStr string) (model.Principal, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return model.Principal{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Principal{}, ErrInvalidToken
	}

	role := claims.Role
	if role != model.RoleAdmin {
		role = model.RoleUser
	}

	return model.Principal{UserID: userID, Role: role}, nil
}
