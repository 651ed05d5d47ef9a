package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func adminTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AdminAuthMiddleware(testSecret))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"operator": c.GetString("operatorID")})
	})
	return r
}

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func getWithToken(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuthMiddleware_AllowsAdminToken(t *testing.T) {
	r := adminTestRouter(t)
	token := signToken(t, jwt.MapClaims{"role": "admin", "sub": "ops@routina"}, testSecret)

	w := getWithToken(r, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ops@routina")
}

func TestAdminAuthMiddleware_RejectsMissingToken(t *testing.T) {
	r := adminTestRouter(t)

	w := getWithToken(r, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthMiddleware_RejectsWrongSecret(t *testing.T) {
	r := adminTestRouter(t)
	token := signToken(t, jwt.MapClaims{"role": "admin"}, "other-secret")

	w := getWithToken(r, token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthMiddleware_RejectsNonAdminRole(t *testing.T) {
	r := adminTestRouter(t)
	token := signToken(t, jwt.MapClaims{"role": "user"}, testSecret)

	w := getWithToken(r, token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
