package middleware

import (
	"net/http"
	"time"

	"github.com/cloo-solutions/concierge/internal/metrics"
)

// Metrics records request count and latency per chi route pattern. The
// /metrics endpoint itself is not counted.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !metrics.IsEnabled() || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		route := routePattern(r)
		if route == r.URL.Path && rec.statusCode() == http.StatusNotFound {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(r.Method, route, rec.statusCode(), time.Since(start))
	})
}
