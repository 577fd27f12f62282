package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"civitas/pkg/logger"
)

type contextKey string

// RequestIDContextKey is the context key holding the request id.
const RequestIDContextKey contextKey = "request_id"

// RequestID tags every request with a unique id, exposed in the
// X-Request-ID response header and the request context.
func RequestID(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			r = r.WithContext(ctx)

			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r)
		})
	}
}

// GetRequestID extracts the request id from a context, if present.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDContextKey).(string); ok {
		return id
	}
	return ""
}
