package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gtuventures/ventures-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(m *jwt.Manager) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(), RequestLogger())
	admin := r.Group("/admin", JWTAuth(m), RequireAdmin())
	admin.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "name": GetUserName(c)})
	})
	return r
}

func doRequest(r http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	m := jwt.NewManager("test-secret", "gtu-ventures", time.Hour)
	r := newProtectedRouter(m)

	adminToken, err := m.GenerateAccessToken("u-1", "Asha", jwt.RoleAdmin)
	require.NoError(t, err)
	editorToken, err := m.GenerateAccessToken("u-2", "Ravi", "editor")
	require.NoError(t, err)
	foreign, err := jwt.NewManager("other-secret", "gtu-ventures", time.Hour).GenerateAccessToken("u-1", "Asha", jwt.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		auth   string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + adminToken, http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"foreign signature", "Bearer " + foreign, http.StatusUnauthorized},
		{"non admin role", "Bearer " + editorToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusOK},
		{"lowercase scheme", "bearer " + adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, "/admin/whoami", tt.auth)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"id":"u-1","name":"Asha"}`, w.Body.String())
			}
		})
	}
}

func TestRequestLogger_PropagatesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc123", w.Body.String())

	w = doRequest(r, http.MethodGet, "/ping", "")
	assert.Len(t, w.Header().Get("X-Request-ID"), 8)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := doRequest(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestInputSanitizer(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(), InputSanitizer())
	r.GET("/search", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := doRequest(r, http.MethodGet, "/search?q=%3Cscript%3Ealert(1)", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodGet, "/search?q=drones", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("ok"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_WithoutRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(nil, DefaultRateLimitConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for range 3 {
		assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/", "").Code)
	}
}
