package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskhive.org/internal/access"
)

var (
	ErrNotFound     = errors.New("task: not found")
	ErrInvalidInput = errors.New("task: invalid input")
)

const (
	defaultStatus   = "open"
	defaultCategory = "General"
)

// Task is a unit of work scoped to one organization.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Category    string    `json:"category"`
	OrgID       string    `json:"org_id"`
	CreatedByID string    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store persists tasks.
type Store interface {
	Create(ctx context.Context, t *Task) error
	Find(ctx context.Context, id string) (*Task, error)
	// ListByOrgs returns tasks belonging to the given orgs, newest-first.
	ListByOrgs(ctx context.Context, orgIDs []string) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
}

// CreateInput is the payload for Create.
type CreateInput struct {
	Title       string
	Description string
	Category    string
	OrgID       string
}

// UpdateInput carries optional field updates; nil means leave unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *string
	Category    *string
}

// Service implements task CRUD. It never resolves access itself: every call
// takes the gate's resolution and filters by the accessible-org set.
type Service struct {
	store Store
}

// NewService wires the task service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("task: store is required")
	}
	return &Service{store: store}, nil
}

// Create stores a new task in the given organization on behalf of the user.
// The gate has already verified task:create within the org's scope.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.OrgID = strings.TrimSpace(in.OrgID)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.OrgID == "" {
		return nil, fmt.Errorf("%w: org id is required", ErrInvalidInput)
	}
	t := &Task{
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Status:      defaultStatus,
		Category:    defaultCategory,
		OrgID:       in.OrgID,
		CreatedByID: userID,
	}
	if c := strings.TrimSpace(in.Category); c != "" {
		t.Category = c
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListAccessible returns the tasks in the resolution's accessible orgs,
// newest-first. An empty accessible set yields an empty list.
func (s *Service) ListAccessible(ctx context.Context, res access.Resolution) ([]*Task, error) {
	orgIDs := res.OrgIDList()
	if len(orgIDs) == 0 {
		return []*Task{}, nil
	}
	return s.store.ListByOrgs(ctx, orgIDs)
}

// Find returns one task by id.
func (s *Service) Find(ctx context.Context, id string) (*Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: task id is required", ErrInvalidInput)
	}
	return s.store.Find(ctx, id)
}

// Update applies the changes if the task's org is within the resolved scope.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput, res access.Resolution) (*Task, error) {
	t, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !res.HasOrg(t.OrgID) {
		return nil, fmt.Errorf("%w: no access to the task's organization", access.ErrForbidden)
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		t.Status = strings.TrimSpace(*in.Status)
	}
	if in.Category != nil {
		t.Category = strings.TrimSpace(*in.Category)
	}
	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the task if its org is within the resolved scope.
func (s *Service) Delete(ctx context.Context, id string, res access.Resolution) (*Task, error) {
	t, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !res.HasOrg(t.OrgID) {
		return nil, fmt.Errorf("%w: no access to the task's organization", access.ErrForbidden)
	}
	if err := s.store.Delete(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}
