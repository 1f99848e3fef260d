// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplytics/backoffice/internal/core"
)

type fakeVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (f *fakeVerifier) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*AccessTokenClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

type fakeSessions struct {
	blacklisted  bool
	versionStale bool
}

func (f *fakeSessions) IsAccessTokenBlacklisted(
	ctx context.Context,
	jti string,
) (bool, error) {
	return f.blacklisted, nil
}

func (f *fakeSessions) ValidateTokenVersion(
	ctx context.Context,
	userID int64,
	tokenVersion int,
) error {
	if f.versionStale {
		return fmt.Errorf("validate token version: %w", core.ErrTokenRevoked)
	}
	return nil
}

func validClaims() *AccessTokenClaims {
	return &AccessTokenClaims{
		UserID:       42,
		Role:         RoleManager,
		TokenVersion: 1,
		JTI:          "jti-1",
		ExpiresAt:    time.Now().Add(10 * time.Minute),
	}
}

func runAuthenticated(
	t *testing.T,
	verifier TokenVerifier,
	sessions SessionChecker,
	header string,
) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var captured *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/shops", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	rec := httptest.NewRecorder()
	Authenticator(verifier, sessions)(next).ServeHTTP(rec, req)
	return rec, captured
}

func TestAuthenticatorPopulatesContext(t *testing.T) {
	verifier := &fakeVerifier{claims: validClaims()}

	rec, captured := runAuthenticated(t, verifier, &fakeSessions{}, "Bearer abc")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)

	ctx := captured.Context()
	assert.Equal(t, int64(42), GetUserID(ctx))
	assert.Equal(t, RoleManager, GetUserRole(ctx))
	assert.True(t, IsAuthenticated(ctx))

	claims := GetClaims(ctx)
	require.NotNil(t, claims)
	assert.Equal(t, "jti-1", claims.JTI)
}

func TestAuthenticatorRejectsMissingToken(t *testing.T) {
	rec, captured := runAuthenticated(
		t,
		&fakeVerifier{claims: validClaims()},
		&fakeSessions{},
		"",
	)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestAuthenticatorRejectsExpiredToken(t *testing.T) {
	verifier := &fakeVerifier{
		err: fmt.Errorf("verify token: %w", core.ErrTokenExpired),
	}

	rec, _ := runAuthenticated(t, verifier, &fakeSessions{}, "Bearer abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_EXPIRED")
}

func TestAuthenticatorRejectsBlacklistedToken(t *testing.T) {
	verifier := &fakeVerifier{claims: validClaims()}
	sessions := &fakeSessions{blacklisted: true}

	rec, captured := runAuthenticated(t, verifier, sessions, "Bearer abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestAuthenticatorRejectsStaleTokenVersion(t *testing.T) {
	verifier := &fakeVerifier{claims: validClaims()}
	sessions := &fakeSessions{versionStale: true}

	rec, captured := runAuthenticated(t, verifier, sessions, "Bearer abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	asRole := func(role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), UserRoleKey, role)
		rec := httptest.NewRecorder()
		RequireRole(RoleManager, RoleRoot)(next).ServeHTTP(
			rec,
			req.WithContext(ctx),
		)
		return rec
	}

	assert.Equal(t, http.StatusOK, asRole(RoleManager).Code)
	assert.Equal(t, http.StatusOK, asRole(RoleRoot).Code)

	denied := asRole(RoleAnalyst)
	assert.Equal(t, http.StatusForbidden, denied.Code)
	assert.Contains(t, denied.Body.String(), "insufficient role")

	// no role on the context at all
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	RequireRole(RoleManager)(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExtractToken(t *testing.T) {
	newReq := func(header string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		return req
	}

	assert.Equal(t, "abc", ExtractToken(newReq("Bearer abc")))
	assert.Equal(t, "abc", ExtractToken(newReq("bearer abc")))
	assert.Empty(t, ExtractToken(newReq("")))
	assert.Empty(t, ExtractToken(newReq("Basic abc")))
	assert.Empty(t, ExtractToken(newReq("Bearer")))
}
