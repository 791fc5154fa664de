package access

import (
	"context"
	"errors"
	"fmt"

	"taskhive.org/internal/obs"
)

// Input carries the candidate focus-org ids extracted from a request's
// structured payload. Body wins over query, query over path.
type Input struct {
	BodyOrgID  string
	QueryOrgID string
	PathOrgID  string
}

// FocusOrgID returns the first non-empty candidate in priority order.
func (in Input) FocusOrgID() string {
	switch {
	case in.BodyOrgID != "":
		return in.BodyOrgID
	case in.QueryOrgID != "":
		return in.QueryOrgID
	default:
		return in.PathOrgID
	}
}

// Gate enforces the statically-declared permission requirements of an
// operation against the resolver's output. It is stateless and resolves
// fresh on every call.
type Gate struct {
	resolver     *Resolver
	requirements map[string][]string
}

// NewGate builds a gate over the resolver and a requirement table
// (operation id to required permission keys).
func NewGate(resolver *Resolver, requirements map[string][]string) (*Gate, error) {
	if resolver == nil {
		return nil, errors.New("access: gate requires a resolver")
	}
	if requirements == nil {
		requirements = DefaultRequirements()
	}
	return &Gate{resolver: resolver, requirements: requirements}, nil
}

// Required returns the permission keys the operation demands.
func (g *Gate) Required(operation string) []string {
	return g.requirements[operation]
}

// Authorize decides whether the principal may perform the operation.
//
// An operation with no required permissions is public and allowed without
// resolution, even for a nil principal. Otherwise a missing principal yields
// ErrUnauthenticated, and the resolved permission set must contain every
// required key (conjunction) or the call yields ErrForbidden. On success the
// returned resolution carries the accessible-org set for downstream
// filtering; callers attach it to the request context.
func (g *Gate) Authorize(ctx context.Context, principal *Principal, operation string, in Input) (Resolution, error) {
	required := g.requirements[operation]
	if len(required) == 0 {
		obs.AuthzDecision("allow")
		return Resolution{}, nil
	}
	if principal == nil || principal.UserID == "" {
		obs.AuthzDecision("unauthenticated")
		return Resolution{}, fmt.Errorf("%w: no principal on request", ErrUnauthenticated)
	}

	res, err := g.resolver.Resolve(ctx, principal.UserID, in.FocusOrgID())
	if err != nil {
		return Resolution{}, err
	}
	for _, key := range required {
		if !res.HasPermission(key) {
			obs.AuthzDecision("forbidden")
			return Resolution{}, fmt.Errorf("%w: missing permission %s", ErrForbidden, key)
		}
	}
	obs.AuthzDecision("allow")
	return res, nil
}
