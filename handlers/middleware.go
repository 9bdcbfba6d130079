package handlers

import (
	"net/http"

	"github.com/flow-hydraulics/nft-wallet-api/handlers/middleware"
	gorilla "github.com/gorilla/handlers"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func UseCors(h http.Handler) http.Handler {
	return gorilla.CORS(
		gorilla.AllowedOrigins([]string{"*"}),
		gorilla.AllowedHeaders([]string{"Content-Type", "Idempotency-Key"}),
	)(h)
}

func UseLogging(h http.Handler) http.Handler {
	return middleware.LoggingHandler(h)
}

func UseCompress(h http.Handler) http.Handler {
	return gorilla.CompressHandler(h)
}

func UseJson(h http.Handler) http.Handler {
	// Only PUT, POST, and PATCH requests are considered.
	return gorilla.ContentTypeHandler(h, "application/json")
}

// UseRateLimit rejects requests with 429 once more than limit requests per
// second (plus burst) arrive, counted over all callers.
func UseRateLimit(h http.Handler, limit float64, burst int) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(limit), burst)

	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			log.
				WithFields(log.Fields{"path": r.URL.Path, "remote": r.RemoteAddr}).
				Debug("Request rate limit exceeded")
			http.Error(rw, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		h.ServeHTTP(rw, r)
	})
}
