package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskhive.org/internal/obs"
)

// ListLimit caps a single FindAll call. Callers needing more history have to
// paginate on their own.
const ListLimit = 200

// Record is one immutable row in the audit trail. It outlives the entities it
// references; ids are historical, not foreign keys.
type Record struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id,omitempty"`
	UserID     string    `json:"user_id"`
	UserEmail  string    `json:"user_email,omitempty"`
	OrgID      string    `json:"org_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Entry is the caller-supplied part of a record.
type Entry struct {
	Action     string
	Resource   string
	ResourceID string
	UserID     string
	UserEmail  string
	OrgID      string
	Details    string
}

// Store appends and reads immutable audit rows.
type Store interface {
	Append(ctx context.Context, rec *Record) error
	// List returns records newest-first, restricted to the given orgs when
	// the slice is non-empty, at most limit rows.
	List(ctx context.Context, orgIDs []string, limit int) ([]Record, error)
}

// Recorder writes the audit trail. Appends are best-effort relative to the
// action they document: a store failure is logged and surfaced but must never
// abort the business operation, so callers ignore the returned error.
type Recorder struct {
	store  Store
	stream *Stream
	log    *zap.Logger
	now    func() time.Time
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithStream publishes every appended record to the given fan-out stream.
func WithStream(s *Stream) RecorderOption {
	return func(r *Recorder) { r.stream = s }
}

// WithClock overrides the time source for tests.
func WithClock(fn func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if fn != nil {
			r.now = fn
		}
	}
}

// NewRecorder builds a Recorder over the store.
func NewRecorder(store Store, opts ...RecorderOption) (*Recorder, error) {
	if store == nil {
		return nil, errors.New("audit: store is required")
	}
	r := &Recorder{store: store, log: obs.Logger(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Record appends the entry. For write actions callers invoke it only after
// the mutation succeeded; for reads it documents that the read happened
// regardless of result size.
func (r *Recorder) Record(ctx context.Context, e Entry) (Record, error) {
	e.Action = strings.TrimSpace(e.Action)
	e.Resource = strings.TrimSpace(e.Resource)
	if e.Action == "" || e.Resource == "" {
		return Record{}, fmt.Errorf("audit: action and resource are required")
	}
	rec := Record{
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		UserID:     e.UserID,
		UserEmail:  e.UserEmail,
		OrgID:      e.OrgID,
		Details:    e.Details,
		Timestamp:  r.now().UTC(),
	}
	if err := r.store.Append(ctx, &rec); err != nil {
		r.log.Error("audit append failed",
			zap.String("action", rec.Action),
			zap.String("resource", rec.Resource),
			zap.String("user_id", rec.UserID),
			zap.Error(err))
		return Record{}, fmt.Errorf("audit: append: %w", err)
	}
	obs.AuditRecorded()
	r.log.Info("audit",
		zap.String("action", rec.Action),
		zap.String("resource", rec.Resource),
		zap.String("resource_id", rec.ResourceID),
		zap.String("user_id", rec.UserID),
		zap.String("org_id", rec.OrgID))
	if r.stream != nil {
		r.stream.Publish(rec)
	}
	return rec, nil
}

// FindAll returns the newest records, filtered to the given organizations
// when orgIDs is non-empty, capped at ListLimit.
func (r *Recorder) FindAll(ctx context.Context, orgIDs []string) ([]Record, error) {
	return r.store.List(ctx, orgIDs, ListLimit)
}
