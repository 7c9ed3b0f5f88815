package echomw

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tl "github.com/tuumbleweed/tintlog/logger"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireBearerToken(t *testing.T) {
	e := echo.New()
	e.GET("/private", okHandler, RequireBearerToken("s3cret"))

	testCases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer s3cret", http.StatusOK},
		{"scheme is case-insensitive", "bEaReR   s3cret ", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"basic scheme", "Basic czNjcmV0", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := serve(e, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusUnauthorized {
				assert.Equal(t, `Bearer realm="document-scanner"`, rec.Header().Get("WWW-Authenticate"))
				assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
			}
		})
	}
}

func TestRequireBearerTokenFailsClosed(t *testing.T) {
	e := echo.New()
	e.GET("/private", okHandler, RequireBearerToken("  "))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer ")
	assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)
}

func TestBearerTokenFromEnv(t *testing.T) {
	t.Setenv(EnvBearerToken, "  from-env \n")
	assert.Equal(t, "from-env", BearerTokenFromEnv())
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, 2)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"), "limits are per client")

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	now = now.Add(2 * limiterTTL)
	limiter.Allow("10.0.0.3")
	limiter.mu.Lock()
	assert.NotContains(t, limiter.clients, "10.0.0.1")
	assert.NotContains(t, limiter.clients, "10.0.0.2")
	assert.Contains(t, limiter.clients, "10.0.0.3")
	limiter.mu.Unlock()
}

func TestRateLimiterMiddleware(t *testing.T) {
	e := echo.New()
	e.GET("/limited", okHandler, NewRateLimiter(1, 1).Middleware)

	first := serve(e, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := serve(e, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"error":"too many requests"}`, second.Body.String())
}

func TestAcceptsBrotli(t *testing.T) {
	assert.True(t, acceptsBrotli("br"))
	assert.True(t, acceptsBrotli("gzip, deflate, br"))
	assert.True(t, acceptsBrotli("gzip;q=1.0, BR;q=0.5"))
	assert.False(t, acceptsBrotli(""))
	assert.False(t, acceptsBrotli("gzip, deflate"))
	assert.False(t, acceptsBrotli("br;q=0"))
	assert.False(t, acceptsBrotli("brotli"))
}

func TestBrotliMiddlewareCompresses(t *testing.T) {
	body := strings.Repeat(`{"text":"PASSPORT"}`, 200)
	e := echo.New()
	e.Use(BrotliMiddleware(5))
	e.GET("/big", func(c echo.Context) error {
		return c.Blob(http.StatusCreated, echo.MIMEApplicationJSON, []byte(body))
	})

	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set(echo.HeaderAcceptEncoding, "gzip, br")
	rec := serve(e, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "br", rec.Header().Get(echo.HeaderContentEncoding))
	assert.Equal(t, echo.HeaderAcceptEncoding, rec.Header().Get(echo.HeaderVary))
	assert.Equal(t, echo.MIMEApplicationJSON, rec.Header().Get(echo.HeaderContentType))
	assert.Less(t, rec.Body.Len(), len(body))

	decoded, err := io.ReadAll(brotli.NewReader(rec.Body))
	require.NoError(t, err)
	assert.Equal(t, body, string(decoded))
}

func TestBrotliMiddlewarePassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(BrotliMiddleware(5))
	e.GET("/plain", okHandler)
	e.DELETE("/empty", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	plain := serve(e, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusOK, plain.Code)
	assert.Empty(t, plain.Header().Get(echo.HeaderContentEncoding))
	assert.Equal(t, "ok", plain.Body.String())

	req := httptest.NewRequest(http.MethodDelete, "/empty", nil)
	req.Header.Set(echo.HeaderAcceptEncoding, "br")
	empty := serve(e, req)
	assert.Equal(t, http.StatusNoContent, empty.Code)
	assert.Empty(t, empty.Header().Get(echo.HeaderContentEncoding))
	assert.Zero(t, empty.Body.Len())
}

func TestRouteAccessLoggerMiddlewarePassesResult(t *testing.T) {
	e := echo.New()
	e.Use(RouteAccessLoggerMiddleware)
	e.GET("/health", okHandler)
	e.GET("/teapot", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	assert.Equal(t, http.StatusTeapot, serve(e, httptest.NewRequest(http.MethodGet, "/teapot", nil)).Code)
}

func TestRouteAccessLoggerWritesStatusAndSize(t *testing.T) {
	var buffer bytes.Buffer
	savedOutput, savedLevel := tl.LoggerOutput, tl.Cfg.LogLevel
	tl.LoggerOutput, tl.Cfg.LogLevel = &buffer, tl.Debug9
	t.Cleanup(func() {
		tl.LoggerOutput, tl.Cfg.LogLevel = savedOutput, savedLevel
	})

	e := echo.New()
	e.Use(RouteAccessLoggerMiddleware)
	e.GET("/teapot", func(c echo.Context) error { return c.String(http.StatusTeapot, "short and stout") })

	serve(e, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	logged := buffer.String()
	assert.NotContains(t, logged, "%!")
	assert.Contains(t, logged, "418")
	assert.Contains(t, logged, "15")
}

func TestDefaultValueConfig(t *testing.T) {
	cfg := DefaultValueConfig()
	assert.Equal(t, "127.0.0.1", cfg.Address)
	assert.Equal(t, 8401, cfg.Port)
	assert.Equal(t, "20M", cfg.BodyLimit)
	assert.Equal(t, 5, cfg.BrotliLevel)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout())
}

func TestInitializeConfigKeepsDefaultsAndCapsBrotli(t *testing.T) {
	saved := Cfg
	t.Cleanup(func() { Cfg = saved })

	InitializeConfig(&Config{Port: 9000, BrotliLevel: 20})
	assert.Equal(t, 9000, Cfg.Port)
	assert.Equal(t, "127.0.0.1", Cfg.Address)
	assert.Equal(t, 11, Cfg.BrotliLevel)
	assert.Equal(t, 10, Cfg.ShutdownTimeoutSeconds)
}
