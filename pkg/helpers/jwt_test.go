package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/coachbar/catalog-api/internal/domain/entity"
)

func TestGenerateAndParseToken(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.GenerateToken("user-42", entity.RoleAdmin)
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-42", claims.UserID)
	require.Equal(t, entity.RoleAdmin, claims.Role)
	require.NotNil(t, claims.ExpiresAt)
}

func TestParseTokenWrongSecret(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	token, err := m.GenerateToken("user-42", entity.RoleUser)
	require.NoError(t, err)

	other := &JWTManager{Secret: []byte("different-secret"), TTL: time.Hour}
	_, err = other.ParseToken(token)
	require.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	m := &JWTManager{Secret: []byte("test-secret"), TTL: -time.Minute}
	token, err := m.GenerateToken("user-42", entity.RoleUser)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	require.Error(t, err)
}

func TestZeroTTLOmitsExpiry(t *testing.T) {
	m := &JWTManager{Secret: []byte("test-secret")}
	token, err := m.GenerateToken("user-42", entity.RoleUser)
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	require.Nil(t, claims.ExpiresAt)
}

func TestParseTokenRejectsUnknownRole(t *testing.T) {
	m := &JWTManager{Secret: []byte("test-secret")}
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "user-42", Role: entity.Role("superuser")})
	token, err := raw.SignedString(m.Secret)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	require.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	m := &JWTManager{Secret: []byte("test-secret")}
	_, err := m.ParseToken("not.a.token")
	require.Error(t, err)
}
