package httpapi

import (
	"net/http"
	"strings"

	"taskhive.org/internal/access"
	"taskhive.org/internal/audit"
)

type createOrgRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

type createRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type setPermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

type assignRoleRequest struct {
	OrgID  string `json:"org_id"`
	RoleID string `json:"role_id"`
}

func (a *API) handleOrgsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listOrgs(w, r)
	case http.MethodPost:
		a.createOrg(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listOrgs(w http.ResponseWriter, r *http.Request) {
	r, res, ok := a.guard(w, r, access.OpOrgList, access.Input{})
	if !ok {
		return
	}

	orgs, err := a.opts.Admin.ListOrganizations(r.Context())
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	// Only orgs within the caller's resolved scope are returned.
	visible := make([]*access.Organization, 0, len(orgs))
	for _, org := range orgs {
		if res.HasOrg(org.ID) {
			visible = append(visible, org)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"organizations": visible,
		"count":         len(visible),
	})
}

func (a *API) createOrg(w http.ResponseWriter, r *http.Request) {
	var req createOrgRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	in := access.Input{BodyOrgID: strings.TrimSpace(req.ParentID)}
	r, _, ok := a.guard(w, r, access.OpOrgCreate, in)
	if !ok {
		return
	}

	org, err := a.opts.Admin.CreateOrganization(r.Context(), req.Name, req.ParentID)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	a.recordAction(r, audit.Entry{
		Action:     "CREATE",
		Resource:   "organization",
		ResourceID: org.ID,
		OrgID:      org.ID,
		Details:    org.Name,
	})

	writeJSON(w, http.StatusCreated, org)
}

// handleOrgScoped dispatches /v1/orgs/{id}/roles.
func (a *API) handleOrgScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/orgs/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "roles" {
		http.NotFound(w, r)
		return
	}
	orgID := parts[0]

	switch r.Method {
	case http.MethodGet:
		a.listRoles(w, r, orgID)
	case http.MethodPost:
		a.createRole(w, r, orgID)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listRoles(w http.ResponseWriter, r *http.Request, orgID string) {
	r, _, ok := a.guard(w, r, access.OpRoleList, access.Input{PathOrgID: orgID})
	if !ok {
		return
	}

	roles, err := a.opts.Admin.ListRoles(r.Context(), orgID)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"roles": roles,
		"count": len(roles),
	})
}

func (a *API) createRole(w http.ResponseWriter, r *http.Request, orgID string) {
	var req createRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	r, _, ok := a.guard(w, r, access.OpRoleCreate, access.Input{PathOrgID: orgID})
	if !ok {
		return
	}

	role, err := a.opts.Admin.CreateRole(r.Context(), orgID, req.Name, req.Description)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	a.recordAction(r, audit.Entry{
		Action:     "CREATE",
		Resource:   "role",
		ResourceID: role.ID,
		OrgID:      role.OrgID,
		Details:    role.Name,
	})

	writeJSON(w, http.StatusCreated, role)
}

// handleRoleResource dispatches /v1/roles/{id}/permissions.
func (a *API) handleRoleResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/roles/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "permissions" {
		http.NotFound(w, r)
		return
	}
	roleID := parts[0]

	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}

	var req setPermissionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	r, _, ok := a.guard(w, r, access.OpRoleSetPermissions, access.Input{})
	if !ok {
		return
	}

	if err := a.opts.Admin.SetRolePermissions(r.Context(), roleID, req.Permissions); err != nil {
		handleAccessError(w, r, err)
		return
	}

	a.recordAction(r, audit.Entry{
		Action:     "UPDATE",
		Resource:   "role",
		ResourceID: roleID,
		Details:    "Replaced permissions: " + strings.Join(req.Permissions, ", "),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"role_id":     roleID,
		"permissions": req.Permissions,
	})
}

func (a *API) handlePermissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	r, _, ok := a.guard(w, r, access.OpPermissionList, access.Input{})
	if !ok {
		return
	}

	perms, err := a.opts.Admin.ListPermissions(r.Context())
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"permissions": perms,
		"count":       len(perms),
	})
}

// handleUserResource dispatches /v1/users/{id}/assignments.
func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "assignments" {
		http.NotFound(w, r)
		return
	}
	userID := parts[0]

	switch r.Method {
	case http.MethodGet:
		a.listAssignments(w, r, userID)
	case http.MethodPost:
		a.assignRole(w, r, userID)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listAssignments(w http.ResponseWriter, r *http.Request, userID string) {
	r, _, ok := a.guard(w, r, access.OpAssignList, access.Input{})
	if !ok {
		return
	}

	assignments, err := a.opts.Admin.ListUserAssignments(r.Context(), userID)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"assignments": assignments,
		"count":       len(assignments),
	})
}

func (a *API) assignRole(w http.ResponseWriter, r *http.Request, userID string) {
	var req assignRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	in := access.Input{BodyOrgID: strings.TrimSpace(req.OrgID)}
	r, _, ok := a.guard(w, r, access.OpAssignRole, in)
	if !ok {
		return
	}

	assignment, err := a.opts.Admin.Assign(r.Context(), userID, req.OrgID, req.RoleID)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	a.recordAction(r, audit.Entry{
		Action:     "CREATE",
		Resource:   "assignment",
		ResourceID: assignment.ID,
		OrgID:      assignment.OrgID,
		Details:    "Granted role " + assignment.RoleID + " to user " + userID,
	})

	writeJSON(w, http.StatusCreated, assignment)
}
