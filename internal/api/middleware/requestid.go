package middleware

import (
	"net/http"

	"github.com/teachmate/teachmate/internal/logging"
)

// RequestID takes the caller-supplied X-Request-ID or generates one, echoes
// it on the response, and propagates it through the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := logging.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
