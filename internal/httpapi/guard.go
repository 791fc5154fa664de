package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"taskhive.org/internal/access"
	"taskhive.org/internal/audit"
	"taskhive.org/internal/auth"
)

// guard runs the enforcement gate for the operation. On Allow it returns the
// request with the resolved scope attached to its context. On deny it writes
// the error response, records the denied attempt in the audit trail, and
// reports ok=false.
func (a *API) guard(w http.ResponseWriter, r *http.Request, operation string, in access.Input) (*http.Request, access.Resolution, bool) {
	principal, havePrincipal := auth.PrincipalFromContext(r.Context())
	var p *access.Principal
	if havePrincipal {
		p = &principal
	}

	res, err := a.opts.Gate.Authorize(r.Context(), p, operation, in)
	if err != nil {
		switch {
		case errors.Is(err, access.ErrUnauthenticated):
			writeError(w, r, http.StatusUnauthorized, "authentication required")
		case errors.Is(err, access.ErrForbidden):
			a.recordDenial(r, principal, operation, in)
			writeError(w, r, http.StatusForbidden, "insufficient permissions")
		case errors.Is(err, access.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, err.Error())
		default:
			writeError(w, r, http.StatusInternalServerError, "authorization failed")
		}
		return r, access.Resolution{}, false
	}

	return r.WithContext(access.ContextWithResolution(r.Context(), res)), res, true
}

// recordDenial writes a DENIED audit record. Denied attempts are as
// audit-worthy as allowed mutations; the append is best-effort like every
// other audit write.
func (a *API) recordDenial(r *http.Request, principal access.Principal, operation string, in access.Input) {
	if a.opts.Audit == nil {
		return
	}
	_, _ = a.opts.Audit.Record(r.Context(), audit.Entry{
		Action:    "DENIED",
		Resource:  operation,
		UserID:    principal.UserID,
		UserEmail: principal.Email,
		OrgID:     in.FocusOrgID(),
		Details:   fmt.Sprintf("required: %v", a.opts.Gate.Required(operation)),
	})
}
