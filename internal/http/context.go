package http

import "context"

type contextKey string

const shiftIDContextKey contextKey = "shift_id"

// ContextWithShiftID injects the shift identifier resolved from the request path.
func ContextWithShiftID(ctx context.Context, shiftID string) context.Context {
	return context.WithValue(ctx, shiftIDContextKey, shiftID)
}

// ShiftIDFromContext extracts a shift identifier previously associated with the context.
func ShiftIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(shiftIDContextKey).(string)
	return id, ok
}
