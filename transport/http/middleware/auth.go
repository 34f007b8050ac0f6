package middleware

import (
	"crypto/subtle"
	"net/http"
	"todolist/config"
	"todolist/infras/otel"
	"todolist/shared/constant"
	"todolist/shared/failure"
	"todolist/transport/http/response"
)

// Auth guards routes that change data.
type Auth interface {
	APIKey(http.Handler) http.Handler
}

type authImpl struct {
	otel otel.Otel
	cfg  *config.Config
}

func NewAuthMiddleware(otel otel.Otel, cfg *config.Config) Auth {
	return &authImpl{
		otel: otel,
		cfg:  cfg,
	}
}

// APIKey requires the X-API-Key header to match APP_API_KEY. Without a configured key
// every request passes.
func (m *authImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "api_key.middleware")

		expected := m.cfg.App.APIKey
		if expected == "" {
			scope.SetAttribute("http.auth", "disabled")
			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		apiKey := request.Header.Get(constant.RequestHeaderAPIKey)

		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			err := failure.ForbiddenError

			scope.SetAttribute("http.auth", "rejected")
			scope.TraceError(err)
			scope.End()

			response.WithError(writer, err)

			return
		}

		scope.SetAttribute("http.auth", "api_key")
		scope.End()
		next.ServeHTTP(writer, request)
	})
}
