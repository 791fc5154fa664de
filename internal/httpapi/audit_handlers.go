package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"taskhive.org/internal/access"
)

func (a *API) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	r, res, ok := a.guard(w, r, access.OpAuditList, access.Input{})
	if !ok {
		return
	}

	records, err := a.opts.Audit.FindAll(r.Context(), res.OrgIDList())
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

// handleAuditStream streams freshly appended audit records over SSE. Only
// records in the caller's accessible orgs are forwarded.
func (a *API) handleAuditStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	r, res, ok := a.guard(w, r, access.OpAuditList, access.Input{})
	if !ok {
		return
	}

	if a.opts.AuditStream == nil {
		writeError(w, r, http.StatusNotImplemented, "streaming is not enabled")
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := a.opts.AuditStream.Subscribe(r.Context())
	for rec := range ch {
		// Records without an org id are system-wide and visible to anyone
		// allowed on this endpoint.
		if rec.OrgID != "" && !res.HasOrg(rec.OrgID) {
			continue
		}
		payload, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "event: audit\ndata: %s\n\n", payload)
		flusher.Flush()
	}
}
