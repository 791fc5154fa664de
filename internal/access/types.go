package access

import (
	"sort"
	"time"
)

// Organization is a tenant scoping unit. ParentID is empty for root
// organizations. A child's parent must itself be a root: the hierarchy is
// capped at two levels and re-parenting is unsupported.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Root reports whether the organization has no parent.
func (o Organization) Root() bool { return o.ParentID == "" }

// Permission is an immutable catalog entry. Keys follow a resource:verb
// naming convention but are treated as opaque strings everywhere in this
// package.
type Permission struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Role is an org-scoped named bundle of permissions. Role names are unique
// within an organization; the permission set is replaced wholesale on update.
type Role struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"org_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Assignment grants one role to one user within one organization. The
// (UserID, OrgID, RoleID) triple is unique; granting the same role twice in
// the same org is a no-op.
type Assignment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	OrgID     string    `json:"org_id"`
	RoleID    string    `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Principal is an authenticated actor making a request.
type Principal struct {
	UserID string
	Email  string
}

// Resolution is the resolver's output: the organizations a principal may act
// within (including cascaded children) and the union of permissions granted
// by their assignments.
type Resolution struct {
	OrgIDs      map[string]struct{}
	Permissions map[string]struct{}
}

func newResolution() Resolution {
	return Resolution{
		OrgIDs:      make(map[string]struct{}),
		Permissions: make(map[string]struct{}),
	}
}

// HasOrg reports whether the organization is in the accessible set.
func (r Resolution) HasOrg(orgID string) bool {
	_, ok := r.OrgIDs[orgID]
	return ok
}

// HasPermission reports whether the permission key was granted.
func (r Resolution) HasPermission(key string) bool {
	_, ok := r.Permissions[key]
	return ok
}

// OrgIDList returns the accessible organization ids in sorted order, suitable
// for SQL IN filters and stable log output.
func (r Resolution) OrgIDList() []string {
	if len(r.OrgIDs) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.OrgIDs))
	for id := range r.OrgIDs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
