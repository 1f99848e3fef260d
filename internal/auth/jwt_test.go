// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytics/backoffice/internal/config"
	"github.com/shoplytics/backoffice/internal/core"
)

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "jwt_private.pem")
	publicPath := filepath.Join(dir, "jwt_public.pem")

	require.NoError(t, GenerateKeyPair(privatePath, publicPath))

	manager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     privatePath,
		PublicKeyPath:      publicPath,
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: 7 * 24 * time.Hour,
		Issuer:             "shoplytics-backoffice",
		Audience:           "shoplytics-api",
	})
	require.NoError(t, err)

	return manager
}

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := newTestJWTManager(t)

	token, err := manager.CreateAccessToken(AccessTokenClaims{
		UserID:       42,
		Role:         "manager",
		TokenVersion: 3,
	})
	require.NoError(t, err)

	claims, err := manager.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.NotEmpty(t, claims.JTI)
	assert.WithinDuration(
		t,
		time.Now().Add(15*time.Minute),
		claims.ExpiresAt,
		time.Minute,
	)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	manager := newTestJWTManager(t)

	_, err := manager.VerifyAccessToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyRejectsTokenFromAnotherKey(t *testing.T) {
	first := newTestJWTManager(t)
	second := newTestJWTManager(t)

	token, err := first.CreateAccessToken(AccessTokenClaims{
		UserID: 1,
		Role:   "analyst",
	})
	require.NoError(t, err)

	_, err = second.VerifyAccessToken(context.Background(), token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestCreateRefreshTokenStartsNewFamily(t *testing.T) {
	manager := newTestJWTManager(t)

	data, err := manager.CreateRefreshToken(7, "")
	require.NoError(t, err)

	assert.NotEmpty(t, data.Token)
	assert.NotEmpty(t, data.FamilyID)
	assert.NotEqual(t, data.Token, data.Hash)
	assert.True(t, data.ExpiresAt.After(time.Now()))

	rotated, err := manager.CreateRefreshToken(7, data.FamilyID)
	require.NoError(t, err)
	assert.Equal(t, data.FamilyID, rotated.FamilyID)
	assert.NotEqual(t, data.Token, rotated.Token)
}

func TestVerifyRefreshTokenHash(t *testing.T) {
	manager := newTestJWTManager(t)

	data, err := manager.CreateRefreshToken(7, "")
	require.NoError(t, err)

	assert.True(t, manager.VerifyRefreshTokenHash(data.Token, data.Hash))
	assert.False(t, manager.VerifyRefreshTokenHash("tampered", data.Hash))
}
