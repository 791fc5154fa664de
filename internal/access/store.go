package access

import "context"

// OrganizationStore manages the two-level organization tree.
type OrganizationStore interface {
	Create(ctx context.Context, org *Organization) error
	Find(ctx context.Context, id string) (*Organization, error)
	List(ctx context.Context) ([]*Organization, error)
	// Children returns the direct child ids of each given parent in one
	// round trip. Parents without children simply have no map entry.
	Children(ctx context.Context, parentIDs []string) (map[string][]string, error)
}

// RoleStore manages roles and their permission sets.
type RoleStore interface {
	Create(ctx context.Context, role *Role) error
	Find(ctx context.Context, id string) (*Role, error)
	ListByOrg(ctx context.Context, orgID string) ([]*Role, error)
	// SetPermissions replaces the role's permission set wholesale.
	SetPermissions(ctx context.Context, roleID string, keys []string) error
	// PermissionsForRoles returns granted permission keys per role in one
	// round trip. A role with no permission rows yields no map entry.
	PermissionsForRoles(ctx context.Context, roleIDs []string) (map[string][]string, error)
}

// AssignmentStore manages user-org-role grants.
type AssignmentStore interface {
	// Assign records the grant. Granting an already-present
	// (user, org, role) triple returns the existing assignment.
	Assign(ctx context.Context, a Assignment) (Assignment, error)
	// ListByUser returns the user's assignments. A non-empty orgIDs slice
	// restricts the result to those organizations.
	ListByUser(ctx context.Context, userID string, orgIDs []string) ([]Assignment, error)
}

// PermissionStore manages the static permission catalog.
type PermissionStore interface {
	Ensure(ctx context.Context, perms []Permission) error
	Find(ctx context.Context, key string) (*Permission, error)
	List(ctx context.Context) ([]Permission, error)
}
