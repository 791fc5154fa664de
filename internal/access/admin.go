package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Admin provides the management operations behind org, role and assignment
// endpoints. Validation lives here; uniqueness and referential integrity are
// enforced by the stores.
type Admin struct {
	orgs        OrganizationStore
	roles       RoleStore
	assignments AssignmentStore
	permissions PermissionStore
}

// NewAdmin wires the management service to its repositories.
func NewAdmin(orgs OrganizationStore, roles RoleStore, assignments AssignmentStore, permissions PermissionStore) (*Admin, error) {
	if orgs == nil || roles == nil || assignments == nil || permissions == nil {
		return nil, errors.New("access: admin requires all stores")
	}
	return &Admin{orgs: orgs, roles: roles, assignments: assignments, permissions: permissions}, nil
}

// EnsureCatalog makes sure the builtin permission catalog exists.
func (a *Admin) EnsureCatalog(ctx context.Context) error {
	return a.permissions.Ensure(ctx, BuiltinPermissions)
}

// CreateOrganization creates a root org, or a child when parentID is set.
// The parent must itself be a root org: the hierarchy never exceeds two
// levels.
func (a *Admin) CreateOrganization(ctx context.Context, name, parentID string) (*Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: organization name is required", ErrInvalidInput)
	}
	parentID = strings.TrimSpace(parentID)
	if parentID != "" {
		parent, err := a.orgs.Find(ctx, parentID)
		if err != nil {
			return nil, fmt.Errorf("find parent org: %w", err)
		}
		if !parent.Root() {
			return nil, fmt.Errorf("%w: parent %s is itself a child organization", ErrInvalidInput, parentID)
		}
	}
	org := &Organization{Name: name, ParentID: parentID}
	if err := a.orgs.Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// ListOrganizations returns all organizations.
func (a *Admin) ListOrganizations(ctx context.Context) ([]*Organization, error) {
	return a.orgs.List(ctx)
}

// CreateRole creates a role scoped to the given organization.
func (a *Admin) CreateRole(ctx context.Context, orgID, name, description string) (*Role, error) {
	orgID = strings.TrimSpace(orgID)
	name = strings.TrimSpace(name)
	if orgID == "" || name == "" {
		return nil, fmt.Errorf("%w: org id and role name are required", ErrInvalidInput)
	}
	if _, err := a.orgs.Find(ctx, orgID); err != nil {
		return nil, fmt.Errorf("find org: %w", err)
	}
	role := &Role{OrgID: orgID, Name: name, Description: strings.TrimSpace(description)}
	if err := a.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// ListRoles returns the roles of one organization.
func (a *Admin) ListRoles(ctx context.Context, orgID string) ([]*Role, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, fmt.Errorf("%w: org id is required", ErrInvalidInput)
	}
	return a.roles.ListByOrg(ctx, orgID)
}

// SetRolePermissions replaces the role's permission set wholesale. Every key
// must exist in the catalog.
func (a *Admin) SetRolePermissions(ctx context.Context, roleID string, keys []string) error {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return fmt.Errorf("%w: role id is required", ErrInvalidInput)
	}
	deduped := dedupe(keys)
	for _, key := range deduped {
		if _, err := a.permissions.Find(ctx, key); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: unknown permission %s", ErrInvalidInput, key)
			}
			return err
		}
	}
	return a.roles.SetPermissions(ctx, roleID, deduped)
}

// Assign grants the role to the user within the organization. The role must
// be scoped to that same organization. Re-granting an existing triple
// returns the original assignment.
func (a *Admin) Assign(ctx context.Context, userID, orgID, roleID string) (Assignment, error) {
	userID = strings.TrimSpace(userID)
	orgID = strings.TrimSpace(orgID)
	roleID = strings.TrimSpace(roleID)
	if userID == "" || orgID == "" || roleID == "" {
		return Assignment{}, fmt.Errorf("%w: user, org and role ids are required", ErrInvalidInput)
	}
	role, err := a.roles.Find(ctx, roleID)
	if err != nil {
		return Assignment{}, fmt.Errorf("find role: %w", err)
	}
	if role.OrgID != orgID {
		return Assignment{}, fmt.Errorf("%w: role %s does not belong to org %s", ErrInvalidInput, roleID, orgID)
	}
	return a.assignments.Assign(ctx, Assignment{UserID: userID, OrgID: orgID, RoleID: roleID})
}

// ListUserAssignments returns every grant the user holds.
func (a *Admin) ListUserAssignments(ctx context.Context, userID string) ([]Assignment, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return a.assignments.ListByUser(ctx, userID, nil)
}

// ListPermissions returns the full catalog.
func (a *Admin) ListPermissions(ctx context.Context) ([]Permission, error) {
	return a.permissions.List(ctx)
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
