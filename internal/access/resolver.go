package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Resolver computes, for a principal and an optional focus organization, the
// set of organizations they may act on and the union of permissions granted
// there. It holds no cross-request state; every call resolves fresh against
// the stores.
type Resolver struct {
	orgs        OrganizationStore
	roles       RoleStore
	assignments AssignmentStore
}

// NewResolver wires the resolver to its repositories.
func NewResolver(orgs OrganizationStore, roles RoleStore, assignments AssignmentStore) (*Resolver, error) {
	if orgs == nil || roles == nil || assignments == nil {
		return nil, errors.New("access: resolver requires org, role and assignment stores")
	}
	return &Resolver{orgs: orgs, roles: roles, assignments: assignments}, nil
}

// Resolve returns the accessible-organization set and granted permission set
// for the user. When focusOrgID is non-empty the considered assignments are
// restricted to the focus org, its parent and its direct children; a focus
// org that does not exist narrows the restriction to the focus id alone.
//
// A role granted at a parent organization cascades one hop down: every direct
// child of an assignment's org joins the accessible set. A user with no
// assignments resolves to two empty sets, which is a legitimate "no access"
// result and not an error.
func (r *Resolver) Resolve(ctx context.Context, userID, focusOrgID string) (Resolution, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Resolution{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	var candidates []string
	if focusOrgID = strings.TrimSpace(focusOrgID); focusOrgID != "" {
		var err error
		candidates, err = r.focusClosure(ctx, focusOrgID)
		if err != nil {
			return Resolution{}, err
		}
	}

	assignments, err := r.assignments.ListByUser(ctx, userID, candidates)
	if err != nil {
		return Resolution{}, fmt.Errorf("list assignments: %w", err)
	}

	res := newResolution()
	if len(assignments) == 0 {
		return res, nil
	}

	roleIDs := make([]string, 0, len(assignments))
	orgIDs := make([]string, 0, len(assignments))
	seenRoles := make(map[string]struct{}, len(assignments))
	seenOrgs := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		if _, ok := seenRoles[a.RoleID]; !ok {
			seenRoles[a.RoleID] = struct{}{}
			roleIDs = append(roleIDs, a.RoleID)
		}
		if _, ok := seenOrgs[a.OrgID]; !ok {
			seenOrgs[a.OrgID] = struct{}{}
			orgIDs = append(orgIDs, a.OrgID)
		}
	}

	permsByRole, err := r.roles.PermissionsForRoles(ctx, roleIDs)
	if err != nil {
		return Resolution{}, fmt.Errorf("load role permissions: %w", err)
	}
	childrenByOrg, err := r.orgs.Children(ctx, orgIDs)
	if err != nil {
		return Resolution{}, fmt.Errorf("load org children: %w", err)
	}

	for _, a := range assignments {
		res.OrgIDs[a.OrgID] = struct{}{}
		for _, key := range permsByRole[a.RoleID] {
			res.Permissions[key] = struct{}{}
		}
		// Cascade: a grant at a parent org extends visibility to its
		// children, whether or not the focus restriction included them.
		for _, child := range childrenByOrg[a.OrgID] {
			res.OrgIDs[child] = struct{}{}
		}
	}
	return res, nil
}

// focusClosure returns the focus org plus its parent (if any) and direct
// children. A missing focus org contributes nothing extra: the closure
// degrades to the focus id itself.
func (r *Resolver) focusClosure(ctx context.Context, orgID string) ([]string, error) {
	ids := []string{orgID}
	org, err := r.orgs.Find(ctx, orgID)
	if errors.Is(err, ErrNotFound) {
		return ids, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find focus org: %w", err)
	}
	if org.ParentID != "" {
		ids = append(ids, org.ParentID)
	}
	children, err := r.orgs.Children(ctx, []string{orgID})
	if err != nil {
		return nil, fmt.Errorf("load focus children: %w", err)
	}
	ids = append(ids, children[orgID]...)
	return ids, nil
}
