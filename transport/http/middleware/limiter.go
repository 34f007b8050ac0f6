package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"
	"todolist/shared"
	"todolist/shared/constant"
	"todolist/shared/logger"
	"todolist/transport/http/response"
)

const (
	cacheKeyRateLimit = "limiter"
)

// RateLimit allows MaxRequests per client within a fixed window. When Redis is
// unavailable requests are let through.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.config.App.RateLimiter.Enable {
				next.ServeHTTP(w, r)

				return
			}

			maxReqs := a.config.App.RateLimiter.MaxRequests
			windowSecs := a.config.App.RateLimiter.WindowSeconds

			cacheKey := shared.BuildCacheKey(cacheKeyRateLimit, a.clientIP(r))

			count, ttl, err := a.cache.Increment(r.Context(), cacheKey, time.Duration(windowSecs)*time.Second)
			if err != nil {
				logger.FromContext(r.Context()).Warn().Err(err).Msg("rate limiter unavailable, letting request through")
				next.ServeHTTP(w, r)

				return
			}

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(maxReqs))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.FormatInt(max(0, int64(maxReqs)-count), 10))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(windowSecs))

			if count > int64(maxReqs) {
				if ttl > 0 {
					w.Header().Set(constant.ResponseHeaderRetryAfter, strconv.Itoa(int(ttl.Round(time.Second).Seconds())))
				}

				response.WithRequestLimitExceeded(w)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the connection address. Forwarding headers are only read when the
// connection comes from a trusted proxy, and X-Forwarded-For is walked from the right so
// the first address not belonging to a trusted proxy wins.
func (a *appMiddleware) clientIP(r *http.Request) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remote = host
	}

	if !a.isTrustedProxy(remote) {
		return remote
	}

	if xff := r.Header.Get(constant.RequestHeaderForwardedFor); xff != "" {
		hops := strings.Split(xff, ",")

		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop != "" && !a.isTrustedProxy(hop) {
				return hop
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get(constant.RequestHeaderRealIP)); xri != "" {
		return xri
	}

	return remote
}

func (a *appMiddleware) isTrustedProxy(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}

	addr = addr.Unmap()

	for _, prefix := range a.trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}

	return false
}
