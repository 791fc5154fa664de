package access

import "context"

type resolutionContextKey struct{}

// ContextWithResolution attaches the gate's resolved scope to the context so
// downstream handlers can filter by organization without re-resolving.
func ContextWithResolution(ctx context.Context, res Resolution) context.Context {
	return context.WithValue(ctx, resolutionContextKey{}, &res)
}

// ResolutionFromContext extracts a previously attached resolution.
func ResolutionFromContext(ctx context.Context) (Resolution, bool) {
	if ctx == nil {
		return Resolution{}, false
	}
	v, ok := ctx.Value(resolutionContextKey{}).(*Resolution)
	if !ok || v == nil {
		return Resolution{}, false
	}
	return *v, true
}
