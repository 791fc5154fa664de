package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"taskhive.org/api/spec"
	"taskhive.org/internal/access"
	"taskhive.org/internal/audit"
	"taskhive.org/internal/auth"
	"taskhive.org/internal/obs"
	"taskhive.org/internal/task"
)

// ReadyProbe reports readiness (database reachability).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options carries the collaborators of the HTTP layer.
type Options struct {
	Version        string
	ReadyProbe     ReadyProbe
	Gate           *access.Gate
	Admin          *access.Admin
	Tasks          *task.Service
	Audit          *audit.Recorder
	AuditStream    *audit.Stream
	Identity       *auth.Service
	Tokens         *auth.TokenManager
	RateLimitRPS   int
	RateLimitBurst int
	MaxBodyBytes   int64
}

// API is the HTTP layer.
type API struct {
	mux  *http.ServeMux
	log  *zap.Logger
	opts Options
}

// New wires all routes.
func New(opts Options) *API {
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 20
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = opts.RateLimitRPS * 2
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	a := &API{
		mux:  http.NewServeMux(),
		log:  obs.Logger(),
		opts: opts,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.HandleFunc("/openapi.yaml", a.OpenAPISpec)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)

	a.mux.HandleFunc("/v1/tasks", a.handleTasksCollection)
	a.mux.HandleFunc("/v1/tasks/", a.handleTaskResource)

	a.mux.HandleFunc("/v1/orgs", a.handleOrgsCollection)
	a.mux.HandleFunc("/v1/orgs/", a.handleOrgScoped)
	a.mux.HandleFunc("/v1/roles/", a.handleRoleResource)
	a.mux.HandleFunc("/v1/permissions", a.handlePermissions)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)

	a.mux.HandleFunc("/v1/audit-log", a.handleAuditLog)
	a.mux.HandleFunc("/v1/audit/stream", a.handleAuditStream)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	h := http.Handler(a.mux)
	h = a.withAuth(h)
	h = RateLimit(h, a.opts.RateLimitBurst, a.opts.RateLimitRPS)
	h = MaxBodyBytes(h, a.opts.MaxBodyBytes)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = a.Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "taskhive-api",
		"version": a.opts.Version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.opts.ReadyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "taskhive-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.opts.Version,
	})
}

func (a *API) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(spec.OpenAPI)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
