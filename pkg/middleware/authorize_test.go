package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Aldiyar2201/Visitor_Manager/internal/guard"
	jwtutil "github.com/Aldiyar2201/Visitor_Manager/pkg/jwt"
	"github.com/stretchr/testify/assert"
)

func checkedRequest(t *testing.T, claims jwtutil.Claims, check guard.Check) int {
	t.Helper()
	handler := AuthMiddleware(testSecret)(
		RequireCheck(check)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

	req := httptest.NewRequest(http.MethodGet, "/api/escalation-rules", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, claims))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireCheckAdmitsAdmin(t *testing.T) {
	code := checkedRequest(t,
		jwtutil.Claims{UserID: "u1", Role: "admin"},
		guard.Check{AllowAdmin: true, Permission: "escalation_rules:manage"})
	assert.Equal(t, http.StatusOK, code)
}

func TestRequireCheckAdmitsPermissionHolder(t *testing.T) {
	code := checkedRequest(t,
		jwtutil.Claims{UserID: "u1", Role: "employee", Permissions: []string{"escalation_rules:manage"}},
		guard.Check{AllowAdmin: true, Permission: "escalation_rules:manage"})
	assert.Equal(t, http.StatusOK, code)
}

func TestRequireCheckRejectsOthers(t *testing.T) {
	code := checkedRequest(t,
		jwtutil.Claims{UserID: "u1", Role: "employee"},
		guard.Check{AllowAdmin: true, Permission: "escalation_rules:manage"})
	assert.Equal(t, http.StatusForbidden, code)
}
