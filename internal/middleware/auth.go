// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shoplytics/backoffice/internal/core"
	"github.com/shoplytics/backoffice/internal/guard"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
	ClaimsKey   contextKey = "jwt_claims"
)

const (
	RoleRoot    = "root"
	RoleManager = "manager"
	RoleAnalyst = "analyst"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

type AccessTokenClaims struct {
	UserID       int64
	Role         string
	TokenVersion int
	JTI          string
	ExpiresAt    time.Time
}

// SessionChecker revalidates a syntactically valid token against server-side
// session state: the logout blacklist and the user's token version.
type SessionChecker interface {
	IsAccessTokenBlacklisted(ctx context.Context, jti string) (bool, error)
	ValidateTokenVersion(
		ctx context.Context,
		userID int64,
		tokenVersion int,
	) error
}

func Authenticator(
	verifier TokenVerifier,
	sessions SessionChecker,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			if sessions != nil {
				blacklisted, err := sessions.IsAccessTokenBlacklisted(
					r.Context(),
					claims.JTI,
				)
				if err == nil && blacklisted {
					core.JSONError(
						w,
						core.TokenRevokedError(),
					)
					return
				}

				if err := sessions.ValidateTokenVersion(
					r.Context(),
					claims.UserID,
					claims.TokenVersion,
				); err != nil {
					handleAuthError(w, err)
					return
				}
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetUserRole(r.Context())

			if userRole == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if d := guard.RoleIs(userRole, roles...); !d.Allowed {
				core.JSONError(w, core.ForbiddenError(d.Reason))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireRoot(next http.Handler) http.Handler {
	return RequireRole(RoleRoot)(next)
}

func RequireManager(next http.Handler) http.Handler {
	return RequireRole(RoleManager)(next)
}

func RequireAnalyst(next http.Handler) http.Handler {
	return RequireRole(RoleAnalyst)(next)
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(UserIDKey).(int64); ok {
		return id
	}
	return 0
}

func GetUserRole(ctx context.Context) string {
	if role, ok := ctx.Value(UserRoleKey).(string); ok {
		return role
	}
	return ""
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	if claims, ok := ctx.Value(ClaimsKey).(*AccessTokenClaims); ok {
		return claims
	}
	return nil
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != 0
}

func IsRoot(ctx context.Context) bool {
	return GetUserRole(ctx) == RoleRoot
}
