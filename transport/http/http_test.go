package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"todolist/config"
	"todolist/internal/domains/todo/model"
	"todolist/internal/handlers/todo"
	"todolist/transport/http/middleware"
	"todolist/transport/http/router"

	otelMocks "todolist/infras/otel/mocks"
	serviceMocks "todolist/internal/domains/todo/service/mocks"
	cacheMocks "todolist/shared/cache/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestServer(t *testing.T) (*HTTP, *serviceMocks.MockTodo) {
	t.Helper()

	ctrl := gomock.NewController(t)
	cfg := &config.Config{}
	otl := otelMocks.NewOtel()
	metrics := middleware.NewMetrics()
	service := serviceMocks.NewMockTodo(ctrl)

	app := middleware.NewAppMiddleware(otl, cfg, cacheMocks.NewMockRedisCache(ctrl), metrics)
	handler := todo.New(service, middleware.NewAuthMiddleware(otl, cfg), otl)
	r := router.New(router.DomainHandlers{Todo: handler})

	return New(cfg, r, app, metrics, otl, nil, nil), service
}

func serve(h *HTTP, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	return rec
}

func TestHTTP_Health(t *testing.T) {
	h, _ := newTestServer(t)

	rec := serve(h, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ServerStateReady, h.State())

	h.setState(ServerStateInGracePeriod)
	rec = serve(h, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h.setState(ServerStateInCleanupPeriod)
	rec = serve(h, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHTTP_Routes(t *testing.T) {
	h, service := newTestServer(t)

	service.EXPECT().FetchAll(gomock.Any()).Return([]model.Todo{}, nil)

	rec := serve(h, http.MethodGet, "/v1/todos")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = serve(h, http.MethodGet, "/v1/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "todolist_http_requests_total")

	rec = serve(h, http.MethodGet, "/swagger/doc.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Todolist API")
}

func TestHTTP_ReleaseWithoutResources(t *testing.T) {
	h, _ := newTestServer(t)

	assert.NotPanics(t, func() { h.release(t.Context()) })
}
