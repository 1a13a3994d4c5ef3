package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/shareit-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID echoes X-Request-Id back to the client and tags the log context with it.
// Values that are not UUIDs are replaced.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(r.Header.Get(requestIDHeader))
			if err != nil {
				id = uuid.New()
			}
			w.Header().Set(requestIDHeader, id.String())
			if logg != nil {
				r = r.WithContext(logg.WithRequestID(r.Context(), id.String()))
			}
			next.ServeHTTP(w, r)
		})
	}
}
