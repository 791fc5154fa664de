package auth

import (
	"context"

	"taskhive.org/internal/access"
)

type principalContextKey struct{}

// ContextWithPrincipal attaches the authenticated principal to the context.
func ContextWithPrincipal(ctx context.Context, p access.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, &p)
}

// PrincipalFromContext extracts the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (access.Principal, bool) {
	if ctx == nil {
		return access.Principal{}, false
	}
	v, ok := ctx.Value(principalContextKey{}).(*access.Principal)
	if !ok || v == nil {
		return access.Principal{}, false
	}
	return *v, true
}
