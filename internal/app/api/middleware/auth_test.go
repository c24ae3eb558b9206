package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", mw, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func signAdminToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAdminAuth(t *testing.T) {
	r := newAuthRouter(AdminAuthMiddleware(testSecret))

	valid := signAdminToken(t, testSecret, jwt.MapClaims{
		"sub":  "admin-1",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	wrongRole := signAdminToken(t, testSecret, jwt.MapClaims{
		"sub":  "user-1",
		"role": "user",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	expired := signAdminToken(t, testSecret, jwt.MapClaims{
		"sub":  "admin-1",
		"role": "admin",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signAdminToken(t, "other-secret", jwt.MapClaims{
		"sub":  "admin-1",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid admin token", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer scheme", "Basic abc", http.StatusUnauthorized},
		{"malformed token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong role", "Bearer " + wrongRole, http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong signing key", "Bearer " + wrongKey, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSweepAuth_WithSecret(t *testing.T) {
	r := newAuthRouter(SweepAuthMiddleware(testSecret))

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"correct token", testSecret, http.StatusOK},
		{"wrong token", "nope", http.StatusUnauthorized},
		{"missing token", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			if tt.token != "" {
				req.Header.Set("X-Sweep-Token", tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSweepAuth_EmptySecretPassesThrough(t *testing.T) {
	r := newAuthRouter(SweepAuthMiddleware(""))

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
