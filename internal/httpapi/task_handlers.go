package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"taskhive.org/internal/access"
	"taskhive.org/internal/audit"
	"taskhive.org/internal/auth"
	"taskhive.org/internal/task"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	OrgID       string `json:"org_id"`
}

type updateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Category    *string `json:"category,omitempty"`
}

func (a *API) handleTasksCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listTasks(w, r)
	case http.MethodPost:
		a.createTask(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	in := access.Input{QueryOrgID: strings.TrimSpace(r.URL.Query().Get("org_id"))}
	r, res, ok := a.guard(w, r, access.OpTaskList, in)
	if !ok {
		return
	}

	tasks, err := a.opts.Tasks.ListAccessible(r.Context(), res)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	a.recordAction(r, audit.Entry{
		Action:   "READ",
		Resource: "task",
		OrgID:    in.FocusOrgID(),
		Details:  fmt.Sprintf("Listed tasks for %d org(s)", len(res.OrgIDList())),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": tasks,
		"count": len(tasks),
	})
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	in := access.Input{BodyOrgID: strings.TrimSpace(req.OrgID)}
	r, res, ok := a.guard(w, r, access.OpTaskCreate, in)
	if !ok {
		return
	}
	if !res.HasOrg(req.OrgID) {
		writeError(w, r, http.StatusForbidden, "no access to the target organization")
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	t, err := a.opts.Tasks.Create(r.Context(), principal.UserID, task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		OrgID:       req.OrgID,
	})
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	a.recordAction(r, audit.Entry{
		Action:     "CREATE",
		Resource:   "task",
		ResourceID: t.ID,
		OrgID:      t.OrgID,
		Details:    t.Title,
	})

	writeJSON(w, http.StatusCreated, t)
}

func (a *API) handleTaskResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/tasks/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPut:
		a.updateTask(w, r, id)
	case http.MethodDelete:
		a.deleteTask(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request, id string) {
	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	r, res, ok := a.guard(w, r, access.OpTaskUpdate, access.Input{})
	if !ok {
		return
	}

	t, err := a.opts.Tasks.Update(r.Context(), id, task.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Category:    req.Category,
	}, res)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	a.recordAction(r, audit.Entry{
		Action:     "UPDATE",
		Resource:   "task",
		ResourceID: t.ID,
		OrgID:      t.OrgID,
		Details:    t.Title,
	})

	writeJSON(w, http.StatusOK, t)
}

func (a *API) deleteTask(w http.ResponseWriter, r *http.Request, id string) {
	r, res, ok := a.guard(w, r, access.OpTaskDelete, access.Input{})
	if !ok {
		return
	}

	t, err := a.opts.Tasks.Delete(r.Context(), id, res)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	a.recordAction(r, audit.Entry{
		Action:     "DELETE",
		Resource:   "task",
		ResourceID: t.ID,
		OrgID:      t.OrgID,
		Details:    t.Title,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"deleted": t.ID,
	})
}

// recordAction appends an audit record on behalf of the authenticated caller.
// Audit failures never fail the request.
func (a *API) recordAction(r *http.Request, e audit.Entry) {
	if a.opts.Audit == nil {
		return
	}
	principal, _ := auth.PrincipalFromContext(r.Context())
	e.UserID = principal.UserID
	e.UserEmail = principal.Email
	_, _ = a.opts.Audit.Record(r.Context(), e)
}
