package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/2beens/trainingapp/internal/telemetry/metrics"
	"github.com/2beens/trainingapp/pkg"

	log "github.com/sirupsen/logrus"
)

// PanicRecovery turns a handler panic into a JSON 500 in the same shape as
// the api errors. http.ErrAbortHandler is passed on to net/http.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(r)
				}

				log.WithField("request_id", respWriter.Header().Get(RequestIDHeader)).
					Errorf("http: panic serving %s %s: %v\n%s", req.Method, req.URL.Path, r, debug.Stack())
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				pkg.WriteJSON(respWriter, http.StatusInternalServerError, map[string]string{
					"error": "internal server error",
				})
			}()

			next.ServeHTTP(respWriter, req)
		})
	}
}
