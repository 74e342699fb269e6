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

const testSecret = "middleware-test-secret-32-chars!!"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func tokenFor(t *testing.T, role, typ string) string {
	return signToken(t, jwt.MapClaims{
		"user_id": "7d0c9a36-1111-4d7e-9f3a-4f1f3e6d2b10", "username": "anita", "role": role, "typ": typ,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── JWT / roles ──────────────────────────────────────────────────────────────

func TestJWTAuth(t *testing.T) {
	r := gin.New()
	r.GET("/p", JWTAuth(testSecret), RequireRole("admin"), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Username)
	})

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "admin", "refresh"))
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "cashier", "access"))
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "admin", "access"))
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anita", w.Body.String())
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	r := gin.New()
	r.GET("/p", JWTAuth(testSecret), func(c *gin.Context) { c.Status(http.StatusOK) })

	expired := signToken(t, jwt.MapClaims{"user_id": "u", "role": "admin", "exp": time.Now().Add(-time.Minute).Unix()})
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

// ── Request id / terminal ────────────────────────────────────────────────────

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestTerminalID(t *testing.T) {
	r := gin.New()
	r.GET("/cart", JWTAuth(testSecret), TerminalID(), func(c *gin.Context) {
		c.String(http.StatusOK, GetTerminalID(c))
	})
	token := "Bearer " + tokenFor(t, "cashier", "access")

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", token)
	req.Header.Set(TerminalHeader, "counter-2")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "counter-2", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", token)
	w = serve(r, req)
	assert.Equal(t, "7d0c9a36-1111-4d7e-9f3a-4f1f3e6d2b10", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", token)
	req.Header.Set(TerminalHeader, "bad id with spaces")
	assert.Equal(t, http.StatusBadRequest, serve(r, req).Code)
}

// ── Recovery / error handler ─────────────────────────────────────────────────

func TestRecoveryAndErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), ErrorHandler())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/err", func(c *gin.Context) { _ = c.Error(assert.AnError) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/err", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), internalErrorMsg)
}

// ── Rate limiting ────────────────────────────────────────────────────────────

func TestWindowLimiter(t *testing.T) {
	l := newWindowLimiter(2, time.Minute)
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

	ok, _ := l.allow("1.2.3.4", now)
	assert.True(t, ok)
	ok, _ = l.allow("1.2.3.4", now)
	assert.True(t, ok)
	ok, _ = l.allow("1.2.3.4", now)
	assert.False(t, ok)
	ok, _ = l.allow("5.6.7.8", now)
	assert.True(t, ok)

	later := now.Add(61 * time.Second)
	ok, _ = l.allow("1.2.3.4", later)
	assert.True(t, ok)
	assert.Equal(t, 1, l.purge(later))
}

func TestRateLimiterMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(1, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
