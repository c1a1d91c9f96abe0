package middleware

import (
	"io"
	"net/http"
)

// DefaultMaxBodyBytes bounds a request body; a saved session is a few KB.
const DefaultMaxBodyBytes = 1 << 20

// DrainAndCloseRequest caps the request body at maxBodyBytes (reads past it
// fail with *http.MaxBytesError) and, once the handler is done, drains what
// is left of the body and closes it so the connection can be reused.
func DrainAndCloseRequest(maxBodyBytes int64) func(next http.Handler) http.Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			body := r.Body
			r.Body = http.MaxBytesReader(w, body, maxBodyBytes)
			next.ServeHTTP(w, r)

			_, _ = io.CopyN(io.Discard, body, maxBodyBytes)
			_ = body.Close()
		})
	}
}
