package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bossy-radar/radar/internal/fetcher"
	"github.com/bossy-radar/radar/internal/logging"
	"github.com/bossy-radar/radar/internal/metrics"
)

// requestContext carries the request id into the logging context. When
// origin is set, snapshot fetches made while serving the request target it.
// origin is configuration; the request's Host and forwarding headers are
// never used to pick where the server fetches from.
func requestContext(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(middleware.RequestIDHeader)
			if id == "" {
				id = middleware.GetReqID(r.Context())
			}
			ctx := logging.WithRequestID(r.Context(), id)
			w.Header().Set(middleware.RequestIDHeader, logging.RequestID(ctx))

			if origin != "" {
				ctx = fetcher.WithOrigin(ctx, origin)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accessLog logs and measures every request by its route pattern
func accessLog(logger *zap.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" {
					route = p
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.HTTPRequest(r.Method, route, status, elapsed)

			logging.From(r.Context(), logger).Info("http_access",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.String("remote", r.RemoteAddr),
				zap.Duration("dur", elapsed),
			)
		})
	}
}
