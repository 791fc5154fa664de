package access

import (
	"context"
	"errors"
	"testing"
)

type stubPermissionStore struct {
	ensureFn func(context.Context, []Permission) error
	findFn   func(context.Context, string) (*Permission, error)
	listFn   func(context.Context) ([]Permission, error)
}

func (s *stubPermissionStore) Ensure(ctx context.Context, perms []Permission) error {
	if s.ensureFn != nil {
		return s.ensureFn(ctx, perms)
	}
	return nil
}

func (s *stubPermissionStore) Find(ctx context.Context, key string) (*Permission, error) {
	if s.findFn != nil {
		return s.findFn(ctx, key)
	}
	return nil, ErrNotFound
}

func (s *stubPermissionStore) List(ctx context.Context) ([]Permission, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func newTestAdmin(t *testing.T, orgs *stubOrgStore, roles *stubRoleStore, assignments *stubAssignmentStore, perms *stubPermissionStore) *Admin {
	t.Helper()
	a, err := NewAdmin(orgs, roles, assignments, perms)
	if err != nil {
		t.Fatalf("NewAdmin: %v", err)
	}
	return a
}

func TestCreateOrganizationRejectsThirdLevel(t *testing.T) {
	orgs := &stubOrgStore{
		findFn: func(_ context.Context, id string) (*Organization, error) {
			if id == "child-1" {
				return &Organization{ID: "child-1", Name: "Child", ParentID: "root"}, nil
			}
			return nil, ErrNotFound
		},
	}
	a := newTestAdmin(t, orgs, &stubRoleStore{}, &stubAssignmentStore{}, &stubPermissionStore{})

	_, err := a.CreateOrganization(context.Background(), "Grandchild", "child-1")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateOrganizationUnderRoot(t *testing.T) {
	orgs := &stubOrgStore{
		findFn: func(_ context.Context, id string) (*Organization, error) {
			return &Organization{ID: id, Name: "Root"}, nil
		},
		createFn: func(_ context.Context, org *Organization) error {
			org.ID = "new-org"
			return nil
		},
	}
	a := newTestAdmin(t, orgs, &stubRoleStore{}, &stubAssignmentStore{}, &stubPermissionStore{})

	org, err := a.CreateOrganization(context.Background(), "  Engineering  ", "root")
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	if org.Name != "Engineering" {
		t.Fatalf("expected trimmed name, got %q", org.Name)
	}
	if org.ParentID != "root" {
		t.Fatalf("expected parent root, got %q", org.ParentID)
	}
}

func TestCreateOrganizationMissingParent(t *testing.T) {
	a := newTestAdmin(t, &stubOrgStore{}, &stubRoleStore{}, &stubAssignmentStore{}, &stubPermissionStore{})
	_, err := a.CreateOrganization(context.Background(), "Orphan", "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetRolePermissionsRejectsUnknownKey(t *testing.T) {
	perms := &stubPermissionStore{
		findFn: func(_ context.Context, key string) (*Permission, error) {
			if key == PermTaskRead {
				return &Permission{ID: "p1", Key: key}, nil
			}
			return nil, ErrNotFound
		},
	}
	a := newTestAdmin(t, &stubOrgStore{}, &stubRoleStore{}, &stubAssignmentStore{}, perms)

	err := a.SetRolePermissions(context.Background(), "role-1", []string{PermTaskRead, "task:fly"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSetRolePermissionsDeduplicates(t *testing.T) {
	var got []string
	roles := &stubRoleStore{
		setFn: func(_ context.Context, _ string, keys []string) error {
			got = keys
			return nil
		},
	}
	perms := &stubPermissionStore{
		findFn: func(_ context.Context, key string) (*Permission, error) {
			return &Permission{ID: "p", Key: key}, nil
		},
	}
	a := newTestAdmin(t, &stubOrgStore{}, roles, &stubAssignmentStore{}, perms)

	err := a.SetRolePermissions(context.Background(), "role-1",
		[]string{PermTaskRead, " task:read ", PermTaskCreate, ""})
	if err != nil {
		t.Fatalf("SetRolePermissions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected deduplicated keys, got %v", got)
	}
}

func TestAssignRejectsRoleFromAnotherOrg(t *testing.T) {
	roles := &stubRoleStore{
		findFn: func(_ context.Context, id string) (*Role, error) {
			return &Role{ID: id, OrgID: "org-b", Name: "Viewer"}, nil
		},
	}
	a := newTestAdmin(t, &stubOrgStore{}, roles, &stubAssignmentStore{}, &stubPermissionStore{})

	_, err := a.Assign(context.Background(), "u1", "org-a", "role-1")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAssignMatchingOrg(t *testing.T) {
	roles := &stubRoleStore{
		findFn: func(_ context.Context, id string) (*Role, error) {
			return &Role{ID: id, OrgID: "org-a", Name: "Viewer"}, nil
		},
	}
	assignments := &stubAssignmentStore{
		assignFn: func(_ context.Context, asg Assignment) (Assignment, error) {
			asg.ID = "a1"
			return asg, nil
		},
	}
	a := newTestAdmin(t, &stubOrgStore{}, roles, assignments, &stubPermissionStore{})

	asg, err := a.Assign(context.Background(), "u1", "org-a", "role-1")
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if asg.ID != "a1" || asg.OrgID != "org-a" {
		t.Fatalf("unexpected assignment: %+v", asg)
	}
}
