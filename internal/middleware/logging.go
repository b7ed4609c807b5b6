package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// LogRequest traces every request, and logs the slow ones and server errors on top.
func LogRequest(slowThreshold time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := &responseWriter{w, http.StatusOK}
			begin := time.Now()

			next.ServeHTTP(resp, r)

			took := time.Since(begin)
			entry := log.WithFields(log.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": resp.statusCode,
				"took":   took.String(),
				"ua":     r.Header.Get("User-Agent"),
			})
			switch {
			case resp.statusCode >= http.StatusInternalServerError:
				entry.Warn("request failed")
			case slowThreshold > 0 && took > slowThreshold:
				entry.Info("slow request")
			default:
				entry.Trace("request")
			}
		})
	}
}
