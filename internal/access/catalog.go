package access

// Permission keys known to the service. The resolver never inspects their
// structure; the resource:verb shape is a naming convention only.
const (
	PermTaskRead    = "task:read"
	PermTaskCreate  = "task:create"
	PermTaskUpdate  = "task:update"
	PermTaskDelete  = "task:delete"
	PermAuditRead   = "audit:read"
	PermOrgManage   = "org:manage"
	PermRoleManage  = "role:manage"
)

// BuiltinPermissions is the static permission catalog, ensured at startup.
var BuiltinPermissions = []Permission{
	{Key: PermTaskRead, Description: "Read tasks"},
	{Key: PermTaskCreate, Description: "Create tasks"},
	{Key: PermTaskUpdate, Description: "Update tasks"},
	{Key: PermTaskDelete, Description: "Delete tasks"},
	{Key: PermAuditRead, Description: "Read audit logs"},
	{Key: PermOrgManage, Description: "Manage organizations"},
	{Key: PermRoleManage, Description: "Manage roles"},
}

// Default role names created by the seed for every root organization.
const (
	RoleOwner  = "Owner"
	RoleAdmin  = "Admin"
	RoleViewer = "Viewer"
)

// DefaultRolePermissions maps the seeded roles to their permission keys.
// Owner holds everything, Admin holds task CRUD plus audit access, Viewer is
// read-only.
func DefaultRolePermissions() map[string][]string {
	return map[string][]string{
		RoleOwner: {
			PermTaskRead, PermTaskCreate, PermTaskUpdate, PermTaskDelete,
			PermAuditRead, PermOrgManage, PermRoleManage,
		},
		RoleAdmin: {
			PermTaskRead, PermTaskCreate, PermTaskUpdate, PermTaskDelete,
			PermAuditRead,
		},
		RoleViewer: {PermTaskRead},
	}
}
