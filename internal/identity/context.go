// Package identity supplies the caller identity to core operations: it issues and
// verifies access tokens and carries the authenticated user id in a context.
package identity

import "context"

type ctxKey string

const userIDKey ctxKey = "foodgram.userID"

// Anonymous is the user id of an unauthenticated caller.
const Anonymous int64 = 0

// WithUserID stores authenticated user ID in context.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx fetches user ID from context; ok is false for anonymous callers.
func UserIDFromCtx(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	if !ok || id == Anonymous {
		return Anonymous, false
	}
	return id, true
}
