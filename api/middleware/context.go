package middleware

import (
	"context"

	pkgerrors "github.com/angelmondragon/shareit-backend/pkg/errors"
)

type contextKey string

const ctxUserID contextKey = "sharer_user_id"

// UserIDFromContext returns the caller id set by the sharer middleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	v, ok := ctx.Value(ctxUserID).(int64)
	return v, ok
}

// WithUserID injects the caller id into the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// CallerID returns the sharer id or a validation error when the header was not parsed.
func CallerID(ctx context.Context) (int64, error) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, SharerHeader+" header required")
	}
	return id, nil
}
