package middleware

import (
	"net/http"

	"github.com/Aldiyar2201/Visitor_Manager/internal/guard"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/logger"
)

// RequireRole restricts a subrouter to callers with the given role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if claims.Role != role {
				logger.Log.Warnf("User %s attempted to access %s without role %q", claims.UserID, r.URL.Path, role)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCheck evaluates a guard check against the caller on every request.
// The decision is computed per request, never cached.
func RequireCheck(check guard.Check) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			subject := guard.Subject{
				UserID:      claims.UserID,
				Role:        claims.Role,
				Permissions: claims.Permissions,
			}
			if d := guard.Evaluate(subject, check); !d.Allowed {
				logger.Log.WithField("userID", claims.UserID).Warnf("Access denied: %s", d.Reason)
				http.Error(w, "Forbidden: "+d.Reason, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
