package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskhive.org/internal/access"
)

// UserStore manages account persistence.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// AssignStatus classifies the outcome of the registration role grant.
type AssignStatus string

const (
	AssignStatusAssigned AssignStatus = "assigned"
	AssignStatusSkipped  AssignStatus = "skipped"
	AssignStatusFailed   AssignStatus = "failed"
)

// AssignOutcome is the explicit result of the post-registration default role
// grant. It is surfaced to the caller instead of being swallowed into a log
// line: registration itself succeeds either way, but the caller learns
// whether the new account can see anything yet.
type AssignOutcome struct {
	Status     AssignStatus       `json:"status"`
	Reason     string             `json:"reason,omitempty"`
	Assignment *access.Assignment `json:"assignment,omitempty"`
	Err        error              `json:"-"`
}

// Service implements registration and login. Both return the opaque
// authenticated identity; token minting stays in TokenManager.
type Service struct {
	users UserStore
	orgs  access.OrganizationStore
	roles access.RoleStore
	admin *access.Admin
}

// NewService wires the identity service.
func NewService(users UserStore, orgs access.OrganizationStore, roles access.RoleStore, admin *access.Admin) (*Service, error) {
	if users == nil || orgs == nil || roles == nil || admin == nil {
		return nil, errors.New("auth: all collaborators are required")
	}
	return &Service{users: users, orgs: orgs, roles: roles, admin: admin}, nil
}

// Register creates the account and attempts the default Viewer grant in the
// oldest root organization.
func (s *Service) Register(ctx context.Context, email, password string) (*User, AssignOutcome, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, AssignOutcome{}, fmt.Errorf("%w: valid email is required", ErrInvalidCredentials)
	}
	if strings.TrimSpace(password) == "" {
		return nil, AssignOutcome{}, fmt.Errorf("%w: password is required", ErrInvalidCredentials)
	}
	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, AssignOutcome{}, ErrEmailTaken
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, AssignOutcome{}, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, AssignOutcome{}, err
	}
	user := &User{Email: email, PasswordHash: hash, IsActive: true}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, AssignOutcome{}, err
	}
	return user, s.assignDefaultRole(ctx, user), nil
}

// Login verifies credentials and returns the account.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

// assignDefaultRole grants the Viewer role of the oldest root organization to
// a freshly registered account. Missing prerequisites skip the grant rather
// than fail registration.
func (s *Service) assignDefaultRole(ctx context.Context, user *User) AssignOutcome {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return AssignOutcome{Status: AssignStatusFailed, Err: err}
	}
	var root *access.Organization
	for _, org := range orgs {
		if org.Root() {
			root = org
			break
		}
	}
	if root == nil {
		return AssignOutcome{Status: AssignStatusSkipped, Reason: "no root organization exists"}
	}

	roles, err := s.roles.ListByOrg(ctx, root.ID)
	if err != nil {
		return AssignOutcome{Status: AssignStatusFailed, Err: err}
	}
	var viewer *access.Role
	for _, role := range roles {
		if role.Name == access.RoleViewer {
			viewer = role
			break
		}
	}
	if viewer == nil {
		return AssignOutcome{Status: AssignStatusSkipped, Reason: fmt.Sprintf("viewer role missing in %s", root.Name)}
	}

	assignment, err := s.admin.Assign(ctx, user.ID, root.ID, viewer.ID)
	if err != nil {
		return AssignOutcome{Status: AssignStatusFailed, Err: err}
	}
	return AssignOutcome{Status: AssignStatusAssigned, Assignment: &assignment}
}
