package tool

import "context"

// UpdateFunc posts a progress message while a tool runs, so the user sees
// what the agent is doing in real time.
type UpdateFunc func(ctx context.Context, message string)

type contextKey struct{}

// WithUpdate returns a context carrying the given UpdateFunc
func WithUpdate(ctx context.Context, fn UpdateFunc) context.Context {
	return context.WithValue(ctx, contextKey{}, fn)
}

// Update calls the UpdateFunc stored in ctx. Without one it is a no-op.
func Update(ctx context.Context, message string) {
	if fn, ok := ctx.Value(contextKey{}).(UpdateFunc); ok {
		fn(ctx, message)
	}
}
