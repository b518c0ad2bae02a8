package capability

import "context"

type contextKey int

const sessionIDKey contextKey = iota

// ContextWithSessionID tags ctx with the session a tool call belongs to.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}
