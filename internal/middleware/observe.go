// internal/middleware/observe.go
//
// Request logging and Prometheus instrumentation.
//
// RequestLog stores a request-scoped zap logger (request id, method, path)
// in the context so handlers call logger.FromContext(ctx) and get the same
// fields, then logs one line per completed request.
//
// Instrument counts requests and observes latency by chi route pattern
// ("/courses/{slug}", never the raw path) to keep label cardinality bounded.
// Unmatched requests are labelled "unmatched".
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/cadence/internal/logger"
	"github.com/yanizio/cadence/internal/metrics"
)

// RequestLog attaches a request logger and logs completion.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := zap.S().With(
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), l)))

		l.Infow("request",
			"status", status(ww),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// Instrument records http_requests_total and http_request_duration_seconds.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.RequestsTotal.WithLabelValues(route, r.Method, statusClass(status(ww))).Inc()
		metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// status treats a handler that never called WriteHeader as 200.
func status(ww chimw.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
