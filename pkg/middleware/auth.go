package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	jwtutil "github.com/Aldiyar2201/Visitor_Manager/pkg/jwt"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/logger"
)

type contextKey string

// UserContextKey is the request-context key holding the caller's claims.
const UserContextKey contextKey = "user"

// LoginPath is where unauthenticated callers are pointed. Requests already
// targeting it never get a redirect hint, to avoid a redirect loop.
const LoginPath = "/api/users/login"

// Remediation routes for accounts that authenticated but may not proceed.
const (
	PasswordChangePath = "/api/users/change-password"
	TwoFactorPath      = "/api/users/two-factor"
)

// AuthMiddleware validates the bearer token and stores the claims in the
// request context. A 401 response carries the originally requested path as
// a "redirect" query value so the client can return after login.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, r)
				return
			}

			claims, err := jwtutil.ValidateToken(strings.TrimPrefix(header, "Bearer "), jwtSecret)
			if err != nil {
				logger.Log.WithError(err).Warn("Rejected request with invalid token")
				unauthorized(w, r)
				return
			}

			// Accounts in a remediation state authenticate but may not
			// proceed anywhere else until they resolve it.
			if claims.NeedsPasswordChange && r.URL.Path != PasswordChangePath {
				w.Header().Set("Location", PasswordChangePath)
				http.Error(w, "Password change required", http.StatusForbidden)
				return
			}
			if claims.NeedsTwoFactor && r.URL.Path != TwoFactorPath {
				w.Header().Set("Location", TwoFactorPath)
				http.Error(w, "Two-factor verification required", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	// Skip the redirect hint when the request already targets the login
	// route; echoing it back would send the client in a circle.
	if r.URL.Path != LoginPath {
		w.Header().Set("Location", LoginPath+"?redirect="+url.QueryEscape(r.URL.RequestURI()))
	}
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// GetUserFromContext returns the claims stored by AuthMiddleware, or nil.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, ok := ctx.Value(UserContextKey).(*jwtutil.Claims)
	if !ok {
		return nil
	}
	return claims
}
