package middleware

import (
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-Id"

// LogRequest tags every request with an id (kept from the caller when present)
// and echoes it back in the response.
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			log.Tracef(" ====> request [%s] [%s] path: [%s] [UA: %s]", requestID, r.Method, r.URL.Path, r.Header.Get("User-Agent"))
			next.ServeHTTP(w, r)
		})
	}
}
