package middleware

import (
	"fmt"
	"net/http"
	"net/netip"
	"todolist/config"
	"todolist/infras/otel"
	"todolist/shared/cache"
	"todolist/shared/constant"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const (
	otelHTTPScopeName = "http"
)

type AppMiddleware interface {
	RequestID(next http.Handler) http.Handler
	Logging(next http.Handler) http.Handler
	Tracing(next http.Handler) http.Handler
	Metrics(next http.Handler) http.Handler
	RateLimit() func(http.Handler) http.Handler
}

type appMiddleware struct {
	otel           otel.Otel
	config         *config.Config
	cache          cache.RedisCache
	metrics        *Metrics
	trustedProxies []netip.Prefix
}

func NewAppMiddleware(otel otel.Otel, config *config.Config, cache cache.RedisCache, metrics *Metrics) AppMiddleware {
	return &appMiddleware{
		otel:           otel,
		config:         config,
		cache:          cache,
		metrics:        metrics,
		trustedProxies: parseTrustedProxies(config.App.TrustedProxies),
	}
}

// parseTrustedProxies accepts single addresses and CIDR ranges. Invalid entries are skipped.
func parseTrustedProxies(entries []string) []netip.Prefix {
	prefixes := make([]netip.Prefix, 0, len(entries))

	for _, entry := range entries {
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, prefix.Masked())

			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			log.Warn().Err(err).Str("entry", entry).Msg("Ignoring invalid trusted proxy")

			continue
		}

		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return prefixes
}

func (a *appMiddleware) Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, scope := a.otel.NewScope(r.Context(), otelHTTPScopeName, fmt.Sprintf("%s %s", r.Method, r.URL.Path))
		defer scope.End()

		scope.SetAttributes(map[string]any{
			"app.name":        a.config.App.Name,
			"http.path":       r.URL.Path,
			"http.method":     r.Method,
			"http.user_agent": r.Header.Get(constant.RequestHeaderUserAgent),
			"http.host":       r.Host,
			"http.source":     a.clientIP(r),
		})

		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		code := status(ww)

		scope.SetAttributes(map[string]any{
			"http.route":       routePattern(r),
			"http.status_code": code,
		})

		if code >= http.StatusInternalServerError {
			scope.TraceError(fmt.Errorf("%s %s answered %d", r.Method, r.URL.Path, code))
		}
	})
}

// routePattern returns the matched chi pattern, or "" when no route matched.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}

	return ""
}

// status reports the written status code; a handler that never wrote answered 200.
func status(ww chiMiddleware.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}

	return ww.Status()
}
