package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/saurab2057/Filetool/internal/ctxkeys"
)

const RequestIDHeader = "X-Request-Id"

// RequestID reuses an incoming X-Request-Id or generates one, and echoes it back.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctxkeys.WithRequestID(r.Context(), id)))
	})
}
