package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pushp314/agencydesk-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	config.AppConfig = &config.Config{JWTSecret: "test_secret_key_12345"}

	token, err := GenerateToken(7, "USER", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "USER", claims.Role)
}

func TestValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	config.AppConfig = &config.Config{JWTSecret: "test_secret_key_12345"}

	expired, err := GenerateToken(7, "USER", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired)
	assert.Error(t, err)

	foreign, err := GenerateToken(7, "USER", time.Hour)
	require.NoError(t, err)
	config.AppConfig = &config.Config{JWTSecret: "another_secret"}
	_, err = ValidateToken(foreign)
	assert.Error(t, err)
}

func TestValidateTokenRequiresSubject(t *testing.T) {
	config.AppConfig = &config.Config{JWTSecret: "test_secret_key_12345"}

	token, err := GenerateToken(0, "USER", time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestEmptySecretIsRejected(t *testing.T) {
	config.AppConfig = &config.Config{JWTSecret: "test_secret_key_12345"}
	token, err := GenerateToken(1, "ADMIN", time.Hour)
	require.NoError(t, err)

	config.AppConfig = &config.Config{JWTSecret: ""}

	_, err = GenerateToken(1, "ADMIN", time.Hour)
	assert.ErrorIs(t, err, ErrNoSigningKey)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: 1, Role: "ADMIN"}).SignedString([]byte(""))
	require.NoError(t, err)
	_, err = ValidateToken(forged)
	assert.ErrorIs(t, err, ErrNoSigningKey)

	_, err = ValidateToken(token)
	assert.ErrorIs(t, err, ErrNoSigningKey)
}
