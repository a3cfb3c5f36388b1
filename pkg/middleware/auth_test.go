package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtutil "github.com/Aldiyar2201/Visitor_Manager/pkg/jwt"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	logger.InitLogger()
}

func mintToken(t *testing.T, claims jwtutil.Claims) string {
	t.Helper()
	token, err := jwtutil.GenerateToken(claims, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func protectedRequest(token, path string) (*httptest.ResponseRecorder, bool) {
	reached := false
	handler := AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, reached
}

func TestRemediationFlagsSurviveMintAndValidate(t *testing.T) {
	token := mintToken(t, jwtutil.Claims{
		UserID:              "user-1",
		Email:               "a@b.c",
		Role:                "employee",
		NeedsPasswordChange: true,
		NeedsTwoFactor:      true,
	})

	claims, err := jwtutil.ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.True(t, claims.NeedsPasswordChange)
	assert.True(t, claims.NeedsTwoFactor)
}

func TestNeedsPasswordChangeBlocksOtherRoutes(t *testing.T) {
	token := mintToken(t, jwtutil.Claims{UserID: "user-1", NeedsPasswordChange: true})

	rec, reached := protectedRequest(token, "/api/visits")
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, PasswordChangePath, rec.Header().Get("Location"))
}

func TestNeedsPasswordChangeAllowsRemediationRoute(t *testing.T) {
	token := mintToken(t, jwtutil.Claims{UserID: "user-1", NeedsPasswordChange: true})

	rec, reached := protectedRequest(token, PasswordChangePath)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNeedsTwoFactorBlocksOtherRoutes(t *testing.T) {
	token := mintToken(t, jwtutil.Claims{UserID: "user-1", NeedsTwoFactor: true})

	rec, reached := protectedRequest(token, "/api/notifications")
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, TwoFactorPath, rec.Header().Get("Location"))
}

func TestCleanAccountPassesThrough(t *testing.T) {
	token := mintToken(t, jwtutil.Claims{UserID: "user-1", Role: "employee"})

	rec, reached := protectedRequest(token, "/api/visits")
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMissingTokenRedirectsToLogin(t *testing.T) {
	rec, reached := protectedRequest("", "/api/visits")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, LoginPath+"?redirect=%2Fapi%2Fvisits", rec.Header().Get("Location"))
}

func TestLoginRouteGetsNoRedirectHint(t *testing.T) {
	rec, _ := protectedRequest("", LoginPath)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
}
