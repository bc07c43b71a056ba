package middleware

import (
	"net/http"
	"strconv"
	"time"

	"eventboard/internal/metrics"
)

// Metrics records request duration by method, matched route pattern and status.
// It must wrap the ServeMux directly so the pattern is visible after dispatch.
func Metrics(m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(r.Method, route, strconv.Itoa(wrapped.status), time.Since(start))
	})
}
