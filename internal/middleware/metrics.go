package middleware

import (
	"net/http"
	"time"

	"github.com/saurab2057/Filetool/internal/metrics"
)

// Metrics records request count and latency per matched route pattern.
// It must sit outside the ServeMux so r.Pattern is filled in once the mux has routed.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrapResponseWriter(w)

			next.ServeHTTP(rw, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.ObserveHTTP(route, r.Method, rw.statusCode, time.Since(start))
		})
	}
}
