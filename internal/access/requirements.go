package access

// Operation identifiers used as keys into the gate's requirement table.
const (
	OpTaskCreate         = "task.create"
	OpTaskList           = "task.list"
	OpTaskUpdate         = "task.update"
	OpTaskDelete         = "task.delete"
	OpAuditList          = "audit.list"
	OpOrgCreate          = "org.create"
	OpOrgList            = "org.list"
	OpRoleCreate         = "role.create"
	OpRoleList           = "role.list"
	OpRoleSetPermissions = "role.set_permissions"
	OpAssignRole         = "assignment.create"
	OpAssignList         = "assignment.list"
	OpPermissionList     = "permission.list"
)

// DefaultRequirements statically declares the permission keys each operation
// needs, replacing any runtime metadata lookup. An operation absent from the
// table, or mapped to an empty list, is public.
func DefaultRequirements() map[string][]string {
	return map[string][]string{
		OpTaskCreate:         {PermTaskCreate},
		OpTaskList:           {PermTaskRead},
		OpTaskUpdate:         {PermTaskUpdate},
		OpTaskDelete:         {PermTaskDelete},
		OpAuditList:          {PermAuditRead},
		OpOrgCreate:          {PermOrgManage},
		OpOrgList:            {PermTaskRead},
		OpRoleCreate:         {PermRoleManage},
		OpRoleList:           {PermRoleManage},
		OpRoleSetPermissions: {PermRoleManage},
		OpAssignRole:         {PermRoleManage},
		OpAssignList:         {PermRoleManage},
		OpPermissionList:     {PermRoleManage},
	}
}
