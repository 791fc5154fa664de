package auth

import (
	"context"
	"errors"
	"testing"

	"taskhive.org/internal/access"
)

type stubUserStore struct {
	createFn      func(context.Context, *User) error
	findFn        func(context.Context, string) (*User, error)
	findByEmailFn func(context.Context, string) (*User, error)
}

func (s *stubUserStore) Create(ctx context.Context, u *User) error {
	if s.createFn != nil {
		return s.createFn(ctx, u)
	}
	u.ID = "user-1"
	return nil
}

func (s *stubUserStore) Find(ctx context.Context, id string) (*User, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (s *stubUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	if s.findByEmailFn != nil {
		return s.findByEmailFn(ctx, email)
	}
	return nil, ErrNotFound
}

type stubOrgStore struct {
	listFn func(context.Context) ([]*access.Organization, error)
}

func (s *stubOrgStore) Create(_ context.Context, _ *access.Organization) error { return nil }
func (s *stubOrgStore) Find(_ context.Context, _ string) (*access.Organization, error) {
	return nil, access.ErrNotFound
}
func (s *stubOrgStore) List(ctx context.Context) ([]*access.Organization, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}
func (s *stubOrgStore) Children(_ context.Context, _ []string) (map[string][]string, error) {
	return map[string][]string{}, nil
}

type stubRoleStore struct {
	findFn func(context.Context, string) (*access.Role, error)
	listFn func(context.Context, string) ([]*access.Role, error)
}

func (s *stubRoleStore) Create(_ context.Context, _ *access.Role) error { return nil }
func (s *stubRoleStore) Find(ctx context.Context, id string) (*access.Role, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, access.ErrNotFound
}
func (s *stubRoleStore) ListByOrg(ctx context.Context, orgID string) ([]*access.Role, error) {
	if s.listFn != nil {
		return s.listFn(ctx, orgID)
	}
	return nil, nil
}
func (s *stubRoleStore) SetPermissions(_ context.Context, _ string, _ []string) error { return nil }
func (s *stubRoleStore) PermissionsForRoles(_ context.Context, _ []string) (map[string][]string, error) {
	return map[string][]string{}, nil
}

type stubAssignmentStore struct {
	assignFn func(context.Context, access.Assignment) (access.Assignment, error)
}

func (s *stubAssignmentStore) Assign(ctx context.Context, a access.Assignment) (access.Assignment, error) {
	if s.assignFn != nil {
		return s.assignFn(ctx, a)
	}
	a.ID = "asg-1"
	return a, nil
}
func (s *stubAssignmentStore) ListByUser(_ context.Context, _ string, _ []string) ([]access.Assignment, error) {
	return nil, nil
}

type stubPermissionStore struct{}

func (stubPermissionStore) Ensure(_ context.Context, _ []access.Permission) error { return nil }
func (stubPermissionStore) Find(_ context.Context, _ string) (*access.Permission, error) {
	return nil, access.ErrNotFound
}
func (stubPermissionStore) List(_ context.Context) ([]access.Permission, error) { return nil, nil }

func newTestService(t *testing.T, users *stubUserStore, orgs *stubOrgStore, roles *stubRoleStore, assignments *stubAssignmentStore) *Service {
	t.Helper()
	admin, err := access.NewAdmin(orgs, roles, assignments, stubPermissionStore{})
	if err != nil {
		t.Fatalf("NewAdmin: %v", err)
	}
	svc, err := NewService(users, orgs, roles, admin)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func rootAndViewer() (*stubOrgStore, *stubRoleStore) {
	orgs := &stubOrgStore{
		listFn: func(_ context.Context) ([]*access.Organization, error) {
			return []*access.Organization{
				{ID: "root-1", Name: "TaskHive HQ"},
				{ID: "child-1", Name: "Engineering", ParentID: "root-1"},
			}, nil
		},
	}
	roles := &stubRoleStore{
		findFn: func(_ context.Context, id string) (*access.Role, error) {
			return &access.Role{ID: id, OrgID: "root-1", Name: access.RoleViewer}, nil
		},
		listFn: func(_ context.Context, orgID string) ([]*access.Role, error) {
			if orgID != "root-1" {
				return nil, nil
			}
			return []*access.Role{
				{ID: "role-owner", OrgID: "root-1", Name: access.RoleOwner},
				{ID: "role-viewer", OrgID: "root-1", Name: access.RoleViewer},
			}, nil
		},
	}
	return orgs, roles
}

func TestRegisterAssignsDefaultViewer(t *testing.T) {
	orgs, roles := rootAndViewer()
	svc := newTestService(t, &stubUserStore{}, orgs, roles, &stubAssignmentStore{})

	user, outcome, err := svc.Register(context.Background(), "New@Example.com", "hunter2pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "new@example.com" {
		t.Fatalf("expected lowered email, got %s", user.Email)
	}
	if outcome.Status != AssignStatusAssigned {
		t.Fatalf("expected assigned, got %s (%s)", outcome.Status, outcome.Reason)
	}
	if outcome.Assignment == nil || outcome.Assignment.OrgID != "root-1" || outcome.Assignment.RoleID != "role-viewer" {
		t.Fatalf("unexpected assignment: %+v", outcome.Assignment)
	}
}

func TestRegisterSkipsWithoutRootOrg(t *testing.T) {
	orgs := &stubOrgStore{
		listFn: func(_ context.Context) ([]*access.Organization, error) {
			return nil, nil
		},
	}
	svc := newTestService(t, &stubUserStore{}, orgs, &stubRoleStore{}, &stubAssignmentStore{})

	_, outcome, err := svc.Register(context.Background(), "a@b.c", "password1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if outcome.Status != AssignStatusSkipped {
		t.Fatalf("expected skipped, got %s", outcome.Status)
	}
	if outcome.Reason == "" {
		t.Fatalf("skipped outcome must carry a reason")
	}
}

func TestRegisterSkipsWithoutViewerRole(t *testing.T) {
	orgs, _ := rootAndViewer()
	roles := &stubRoleStore{
		listFn: func(_ context.Context, _ string) ([]*access.Role, error) {
			return []*access.Role{{ID: "role-owner", OrgID: "root-1", Name: access.RoleOwner}}, nil
		},
	}
	svc := newTestService(t, &stubUserStore{}, orgs, roles, &stubAssignmentStore{})

	_, outcome, err := svc.Register(context.Background(), "a@b.c", "password1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if outcome.Status != AssignStatusSkipped {
		t.Fatalf("expected skipped, got %s", outcome.Status)
	}
}

func TestRegisterFailedOutcomeOnAssignError(t *testing.T) {
	orgs, roles := rootAndViewer()
	boom := errors.New("db down")
	assignments := &stubAssignmentStore{
		assignFn: func(_ context.Context, _ access.Assignment) (access.Assignment, error) {
			return access.Assignment{}, boom
		},
	}
	svc := newTestService(t, &stubUserStore{}, orgs, roles, assignments)

	user, outcome, err := svc.Register(context.Background(), "a@b.c", "password1")
	if err != nil {
		t.Fatalf("registration itself must not fail: %v", err)
	}
	if user == nil || user.ID == "" {
		t.Fatalf("expected created user, got %+v", user)
	}
	if outcome.Status != AssignStatusFailed {
		t.Fatalf("expected failed, got %s", outcome.Status)
	}
	if !errors.Is(outcome.Err, boom) {
		t.Fatalf("expected carried error, got %v", outcome.Err)
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	users := &stubUserStore{
		findByEmailFn: func(_ context.Context, _ string) (*User, error) {
			return &User{ID: "user-1", Email: "a@b.c"}, nil
		},
	}
	svc := newTestService(t, users, &stubOrgStore{}, &stubRoleStore{}, &stubAssignmentStore{})

	_, _, err := svc.Register(context.Background(), "a@b.c", "password1")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc := newTestService(t, &stubUserStore{}, &stubOrgStore{}, &stubRoleStore{}, &stubAssignmentStore{})
	if _, _, err := svc.Register(context.Background(), "not-an-email", "password1"); err == nil {
		t.Fatalf("expected error for invalid email")
	}
	if _, _, err := svc.Register(context.Background(), "a@b.c", "  "); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestLogin(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	account := &User{ID: "user-1", Email: "a@b.c", PasswordHash: hash, IsActive: true}
	users := &stubUserStore{
		findByEmailFn: func(_ context.Context, email string) (*User, error) {
			if email == "a@b.c" {
				return account, nil
			}
			return nil, ErrNotFound
		},
	}
	svc := newTestService(t, users, &stubOrgStore{}, &stubRoleStore{}, &stubAssignmentStore{})

	user, err := svc.Login(context.Background(), "A@B.C", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := svc.Login(context.Background(), "a@b.c", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@b.c", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	account.IsActive = false
	if _, err := svc.Login(context.Background(), "a@b.c", "correct horse"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}
