package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/yanizio/cadence/internal/logger"
	"github.com/yanizio/cadence/internal/metrics"
)

// Recover turns a handler panic into a logged, counted 500 rendered by
// fallback.  http.ErrAbortHandler is re-raised so net/http can drop the
// connection as intended.
func Recover(fallback http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				metrics.PanicsTotal.Inc()
				logger.FromContext(r.Context()).Errorw("panic recovered",
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				fallback.ServeHTTP(w, r)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
