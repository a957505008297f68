package auth

import (
	"testing"
	"time"

	"bookstore/internal/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	tests := []struct {
		name string
		role model.Role
	}{
		{name: "Regular user", role: model.RoleUser},
		{name: "Admin", role: model.RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &model.User{ID: uuid.New(), Role: tt.role}

			token, err := manager.Issue(user)
			require.NoError(t, err)

			principal, err := manager.Parse(token)
			require.NoError(t, err)
			assert.Equal(t, user.ID, principal.UserID)
			assert.Equal(t, tt.role, principal.Role)
		})
	}
}

func TestTokenManager_Parse_Rejects(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)
	user := &model.User{ID: uuid.New(), Role: model.RoleUser}

	expired := NewTokenManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue(user)
	require.NoError(t, err)

	otherToken, err := NewTokenManager("other-secret", time.Hour).Issue(user)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role:             model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID.String()},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "Garbage", token: "not.a.token"},
		{name: "Expired", token: expiredToken},
		{name: "Wrong secret", token: otherToken},
		{name: "Unsigned", token: noneToken},
		{name: "Subject is not a user id", token: badSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	ok, err := CheckPassword(hash, "s3cret!")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-hash", "s3cret!")
	assert.Error(t, err)
}
