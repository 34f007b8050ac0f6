package middleware

import (
	"net/http"
	"time"
	"todolist/shared/constant"
	"todolist/shared/logger"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const maxRequestIDLength = 128

// RequestID propagates the caller's X-Request-ID or generates one.
func (a *appMiddleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(constant.RequestHeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		w.Header().Set(constant.RequestHeaderRequestID, requestID)

		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), requestID)))
	})
}

func (a *appMiddleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		code := status(ww)

		event := logger.FromContext(r.Context()).Info()
		if code >= http.StatusInternalServerError {
			event = logger.FromContext(r.Context()).Error()
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", code).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("source", a.clientIP(r)).
			Msg("request handled")
	})
}
