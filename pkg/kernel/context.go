package kernel

import "context"

// ContextKey is the type for values this module stores in a context.Context.
type ContextKey string

const (
	// RequestIDKey stores the HTTP request id.
	RequestIDKey ContextKey = "request_id"

	// TurnIDKey stores the id of the turn currently being processed.
	TurnIDKey ContextKey = "turn_id"
)

// WithTurnID returns a context carrying the given turn id.
func WithTurnID(ctx context.Context, id TurnID) context.Context {
	return context.WithValue(ctx, TurnIDKey, id)
}

// TurnIDFromContext extracts the turn id, if any, from the context.
func TurnIDFromContext(ctx context.Context) (TurnID, bool) {
	id, ok := ctx.Value(TurnIDKey).(TurnID)
	return id, ok
}
