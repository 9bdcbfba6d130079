// Package middleware contains HTTP middleware shared by all API routes.
package middleware

import (
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	log "github.com/sirupsen/logrus"
)

// LoggingHandler logs one structured entry per request once it has been
// served. Server errors are logged as warnings.
func LoggingHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(h, rw, r)

		fields := log.Fields{
			"method":     r.Method,
			"path":       r.RequestURI,
			"remote":     r.RemoteAddr,
			"user-agent": r.UserAgent(),
			"status":     m.Code,
			"size":       m.Written,
			"duration":   float64(m.Duration.Microseconds()) / float64(time.Millisecond/time.Microsecond),
		}

		if key := r.Header.Get("Idempotency-Key"); key != "" {
			fields["idempotency-key"] = key
		}

		entry := log.WithFields(fields)
		if m.Code >= http.StatusInternalServerError {
			entry.Warn("HTTP request")
			return
		}
		entry.Info("HTTP request")
	})
}
