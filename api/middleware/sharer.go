package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/shareit-backend/api/responses"
	pkgerrors "github.com/angelmondragon/shareit-backend/pkg/errors"
	"github.com/angelmondragon/shareit-backend/pkg/logger"
)

// SharerHeader carries the numeric id of the calling user.
const SharerHeader = "X-Sharer-User-Id"

// RequireSharer rejects requests without a numeric X-Sharer-User-Id.
func RequireSharer(logg *logger.Logger) func(http.Handler) http.Handler {
	return sharer(logg, true)
}

// OptionalSharer records the caller when the header is present and valid.
func OptionalSharer(logg *logger.Logger) func(http.Handler) http.Handler {
	return sharer(logg, false)
}

func sharer(logg *logger.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(SharerHeader))
			if raw == "" {
				if required {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, SharerHeader+" header required"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				if !required {
					next.ServeHTTP(w, r)
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, SharerHeader+" must be numeric").
					WithDetails(map[string]any{"header": SharerHeader}))
				return
			}

			ctx := WithUserID(r.Context(), userID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
