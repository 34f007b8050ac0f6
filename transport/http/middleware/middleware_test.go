package middleware_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"todolist/config"
	otelMocks "todolist/infras/otel/mocks"
	cacheMocks "todolist/shared/cache/mocks"
	"todolist/shared/logger"
	"todolist/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func newAppMiddleware(t *testing.T, cfg *config.Config) (middleware.AppMiddleware, *cacheMocks.MockRedisCache, *middleware.Metrics) {
	t.Helper()

	ctrl := gomock.NewController(t)
	cache := cacheMocks.NewMockRedisCache(ctrl)
	metrics := middleware.NewMetrics()

	return middleware.NewAppMiddleware(otelMocks.NewOtel(), cfg, cache, metrics), cache, metrics
}

func limiterConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	return cfg
}

func TestRateLimit(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		app, _, _ := newAppMiddleware(t, &config.Config{})

		rec := httptest.NewRecorder()
		app.RateLimit()(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/todos", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	})

	t.Run("within limit", func(t *testing.T) {
		app, cache, _ := newAppMiddleware(t, limiterConfig())

		cache.EXPECT().
			Increment(gomock.Any(), "limiter:192.0.2.1", time.Minute).
			Return(int64(2), 30*time.Second, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/todos", nil)
		req.RemoteAddr = "192.0.2.1:5555"

		rec := httptest.NewRecorder()
		app.RateLimit()(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Window"))
	})

	t.Run("over limit", func(t *testing.T) {
		app, cache, _ := newAppMiddleware(t, limiterConfig())

		cache.EXPECT().
			Increment(gomock.Any(), "limiter:192.0.2.1", time.Minute).
			Return(int64(3), 12*time.Second, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/todos", nil)
		req.RemoteAddr = "192.0.2.1:5555"

		rec := httptest.NewRecorder()
		app.RateLimit()(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "12", rec.Header().Get("Retry-After"))
		assert.JSONEq(t, `{"message":"REQUEST LIMIT EXCEEDED"}`, rec.Body.String())
	})

	t.Run("client headers do not open a new window", func(t *testing.T) {
		app, cache, _ := newAppMiddleware(t, limiterConfig())

		cache.EXPECT().
			Increment(gomock.Any(), "limiter:192.0.2.1", time.Minute).
			Return(int64(1), time.Minute, nil).
			Times(2)

		for _, ua := range []string{"curl/8.0", "curl/8.1"} {
			req := httptest.NewRequest(http.MethodGet, "/v1/todos", nil)
			req.RemoteAddr = "192.0.2.1:5555"
			req.Header.Set("User-Agent", ua)
			req.Header.Set("X-Forwarded-For", "10.9.9.9")
			req.Header.Set("X-Real-IP", "10.8.8.8")

			rec := httptest.NewRecorder()
			app.RateLimit()(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("forwarded address behind trusted proxy", func(t *testing.T) {
		cfg := limiterConfig()
		cfg.App.TrustedProxies = []string{"10.0.0.0/8", "172.16.0.1"}

		app, cache, _ := newAppMiddleware(t, cfg)

		cache.EXPECT().
			Increment(gomock.Any(), "limiter:203.0.113.9", time.Minute).
			Return(int64(1), time.Minute, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/todos", nil)
		req.RemoteAddr = "10.0.0.2:4000"
		req.Header.Set("X-Forwarded-For", "198.51.100.1, 203.0.113.9, 172.16.0.1")

		rec := httptest.NewRecorder()
		app.RateLimit()(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("cache failure lets request through", func(t *testing.T) {
		app, cache, _ := newAppMiddleware(t, limiterConfig())

		cache.EXPECT().
			Increment(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(int64(0), time.Duration(0), errors.New("redis down"))

		req := httptest.NewRequest(http.MethodGet, "/v1/todos", nil)
		req.Header.Set("X-Real-IP", "198.51.100.7")

		rec := httptest.NewRecorder()
		app.RateLimit()(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequestID(t *testing.T) {
	app, _, _ := newAppMiddleware(t, &config.Config{})

	var seen string

	handler := app.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 200))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Len(t, seen, 36)
}

func TestLogging(t *testing.T) {
	originalLogger := log.Logger
	originalLevel := zerolog.GlobalLevel()

	defer func() {
		log.Logger = originalLogger
		zerolog.SetGlobalLevel(originalLevel)
	}()

	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	app, _, _ := newAppMiddleware(t, &config.Config{})
	handler := app.RequestID(app.Logging(http.HandlerFunc(okHandler)))

	req := httptest.NewRequest(http.MethodPost, "/v1/todos", nil)
	req.Header.Set("X-Request-ID", "log-1")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"method":"POST"`)
	assert.Contains(t, out, `"path":"/v1/todos"`)
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, `"request_id":"log-1"`)
}

func TestMetrics(t *testing.T) {
	app, _, metrics := newAppMiddleware(t, &config.Config{})

	router := chi.NewRouter()
	router.Use(app.Metrics)
	router.Use(app.Tracing)
	router.Get("/v1/todos/{id}", okHandler)

	for _, path := range []string{"/v1/todos/1", "/v1/todos/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `todolist_http_requests_total{code="200",method="GET",route="/v1/todos/{id}"} 2`)
	assert.Contains(t, body, `todolist_http_requests_total{code="404",method="GET",route="unmatched"} 1`)
	assert.Contains(t, body, "todolist_http_request_duration_seconds_bucket")
	assert.Contains(t, body, "todolist_http_requests_in_flight 0")
}

func TestAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		header     string
		code       int
	}{
		{name: "no key configured", configured: "", header: "", code: http.StatusOK},
		{name: "matching key", configured: "s3cret", header: "s3cret", code: http.StatusOK},
		{name: "missing key", configured: "s3cret", header: "", code: http.StatusForbidden},
		{name: "wrong key", configured: "s3cret", header: "guess", code: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.App.APIKey = tt.configured

			auth := middleware.NewAuthMiddleware(otelMocks.NewOtel(), cfg)

			req := httptest.NewRequest(http.MethodDelete, "/v1/todos/1", nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}

			rec := httptest.NewRecorder()
			auth.APIKey(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
