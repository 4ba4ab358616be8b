package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"nichifier-service/internal/domain/auth"
	xerrors "nichifier-service/internal/pkg/errors"
	"nichifier-service/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubAuthenticator map[string]*auth.User

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*jwt.Claims, *auth.User, error) {
	u, ok := s[token]
	if !ok {
		return nil, nil, fmt.Errorf("verify: %w", xerrors.ErrUnauthorized)
	}
	return &jwt.Claims{UserID: u.ID}, u, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(stubAuthenticator{
		"admin-token":  {ID: 1, Role: auth.RoleAdmin},
		"reader-token": {ID: 2, Role: auth.RoleSubscriber},
	}, "nichifier_token")

	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()), RecoveryMiddleware(zap.NewNop()))
	r.GET("/me", m.Auth(), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", MustGetUser(c).ID)
	})
	r.GET("/admin", append(m.AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})...)
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func get(r http.Handler, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthTokenSources(t *testing.T) {
	r := newTestRouter()

	w := get(r, "/me", func(req *http.Request) { req.Header.Set("Authorization", "Bearer reader-token") })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Body.String())

	w = get(r, "/me", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "nichifier_token", Value: "admin-token"})
	})
	assert.Equal(t, "1", w.Body.String())

	w = get(r, "/me?token=reader-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me?token=forged", nil).Code)
}

func TestAdminOnly(t *testing.T) {
	r := newTestRouter()

	w := get(r, "/admin", func(req *http.Request) { req.Header.Set("Authorization", "Bearer admin-token") })
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = get(r, "/admin", func(req *http.Request) { req.Header.Set("Authorization", "Bearer reader-token") })
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestIDAndRecovery(t *testing.T) {
	r := newTestRouter()

	w := get(r, "/panic", func(req *http.Request) { req.Header.Set(RequestIDHeader, "req-123") })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	w = get(r, "/me", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = get(r, "/x", func(req *http.Request) { req.Header.Set("Origin", "https://evil.example.com") })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardNeverAllowsCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"*", "https://app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/x", func(req *http.Request) { req.Header.Set("Origin", "https://blog.example.com") })
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	w = get(r, "/x", func(req *http.Request) { req.Header.Set("Origin", "https://app.example.com") })
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
