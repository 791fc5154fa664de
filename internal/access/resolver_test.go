package access

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stubOrgStore struct {
	createFn   func(context.Context, *Organization) error
	findFn     func(context.Context, string) (*Organization, error)
	listFn     func(context.Context) ([]*Organization, error)
	childrenFn func(context.Context, []string) (map[string][]string, error)
}

func (s *stubOrgStore) Create(ctx context.Context, org *Organization) error {
	if s.createFn != nil {
		return s.createFn(ctx, org)
	}
	return nil
}

func (s *stubOrgStore) Find(ctx context.Context, id string) (*Organization, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (s *stubOrgStore) List(ctx context.Context) ([]*Organization, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubOrgStore) Children(ctx context.Context, parentIDs []string) (map[string][]string, error) {
	if s.childrenFn != nil {
		return s.childrenFn(ctx, parentIDs)
	}
	return map[string][]string{}, nil
}

type stubRoleStore struct {
	createFn   func(context.Context, *Role) error
	findFn     func(context.Context, string) (*Role, error)
	listFn     func(context.Context, string) ([]*Role, error)
	setFn      func(context.Context, string, []string) error
	permsForFn func(context.Context, []string) (map[string][]string, error)
}

func (s *stubRoleStore) Create(ctx context.Context, role *Role) error {
	if s.createFn != nil {
		return s.createFn(ctx, role)
	}
	return nil
}

func (s *stubRoleStore) Find(ctx context.Context, id string) (*Role, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (s *stubRoleStore) ListByOrg(ctx context.Context, orgID string) ([]*Role, error) {
	if s.listFn != nil {
		return s.listFn(ctx, orgID)
	}
	return nil, nil
}

func (s *stubRoleStore) SetPermissions(ctx context.Context, roleID string, keys []string) error {
	if s.setFn != nil {
		return s.setFn(ctx, roleID, keys)
	}
	return nil
}

func (s *stubRoleStore) PermissionsForRoles(ctx context.Context, roleIDs []string) (map[string][]string, error) {
	if s.permsForFn != nil {
		return s.permsForFn(ctx, roleIDs)
	}
	return map[string][]string{}, nil
}

type stubAssignmentStore struct {
	assignFn func(context.Context, Assignment) (Assignment, error)
	listFn   func(context.Context, string, []string) ([]Assignment, error)
}

func (s *stubAssignmentStore) Assign(ctx context.Context, a Assignment) (Assignment, error) {
	if s.assignFn != nil {
		return s.assignFn(ctx, a)
	}
	return a, nil
}

func (s *stubAssignmentStore) ListByUser(ctx context.Context, userID string, orgIDs []string) ([]Assignment, error) {
	if s.listFn != nil {
		return s.listFn(ctx, userID, orgIDs)
	}
	return nil, nil
}

func newTestResolver(t *testing.T, orgs *stubOrgStore, roles *stubRoleStore, assignments *stubAssignmentStore) *Resolver {
	t.Helper()
	r, err := NewResolver(orgs, roles, assignments)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func TestResolveNoAssignmentsYieldsEmptySets(t *testing.T) {
	r := newTestResolver(t, &stubOrgStore{}, &stubRoleStore{}, &stubAssignmentStore{
		listFn: func(_ context.Context, _ string, _ []string) ([]Assignment, error) {
			return nil, nil
		},
	})

	res, err := r.Resolve(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.OrgIDs) != 0 || len(res.Permissions) != 0 {
		t.Fatalf("expected empty resolution, got %v / %v", res.OrgIDs, res.Permissions)
	}
	if res.HasPermission(PermTaskRead) {
		t.Fatalf("unexpected permission")
	}
}

func TestResolveUnionsPermissionsAcrossAssignments(t *testing.T) {
	assignments := &stubAssignmentStore{
		listFn: func(_ context.Context, userID string, _ []string) ([]Assignment, error) {
			if userID != "u1" {
				t.Fatalf("unexpected user id %s", userID)
			}
			return []Assignment{
				{UserID: "u1", OrgID: "org-a", RoleID: "viewer"},
				{UserID: "u1", OrgID: "org-b", RoleID: "admin"},
			}, nil
		},
	}
	roles := &stubRoleStore{
		permsForFn: func(_ context.Context, roleIDs []string) (map[string][]string, error) {
			want := []string{"viewer", "admin"}
			if diff := cmp.Diff(want, roleIDs); diff != "" {
				t.Fatalf("role ids mismatch (-want +got):\n%s", diff)
			}
			return map[string][]string{
				"viewer": {PermTaskRead},
				"admin":  {PermTaskRead, PermTaskCreate, PermTaskDelete},
			}, nil
		},
	}
	r := newTestResolver(t, &stubOrgStore{}, roles, assignments)

	res, err := r.Resolve(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, key := range []string{PermTaskRead, PermTaskCreate, PermTaskDelete} {
		if !res.HasPermission(key) {
			t.Fatalf("missing permission %s", key)
		}
	}
	if res.HasPermission(PermOrgManage) {
		t.Fatalf("unexpected org:manage")
	}
	if !res.HasOrg("org-a") || !res.HasOrg("org-b") {
		t.Fatalf("missing orgs: %v", res.OrgIDList())
	}
}

func TestResolveCascadesToDirectChildren(t *testing.T) {
	orgs := &stubOrgStore{
		childrenFn: func(_ context.Context, parentIDs []string) (map[string][]string, error) {
			if diff := cmp.Diff([]string{"root"}, parentIDs); diff != "" {
				t.Fatalf("parent ids mismatch (-want +got):\n%s", diff)
			}
			return map[string][]string{"root": {"child-1", "child-2"}}, nil
		},
	}
	assignments := &stubAssignmentStore{
		listFn: func(_ context.Context, _ string, _ []string) ([]Assignment, error) {
			return []Assignment{{UserID: "u1", OrgID: "root", RoleID: "admin"}}, nil
		},
	}
	roles := &stubRoleStore{
		permsForFn: func(_ context.Context, _ []string) (map[string][]string, error) {
			return map[string][]string{"admin": {PermTaskRead}}, nil
		},
	}
	r := newTestResolver(t, orgs, roles, assignments)

	res, err := r.Resolve(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{"child-1", "child-2", "root"}
	if diff := cmp.Diff(want, res.OrgIDList()); diff != "" {
		t.Fatalf("org set mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveChildAssignmentDoesNotReachSiblingOrParent(t *testing.T) {
	orgs := &stubOrgStore{
		childrenFn: func(_ context.Context, parentIDs []string) (map[string][]string, error) {
			// child-1 has no children of its own.
			return map[string][]string{}, nil
		},
	}
	assignments := &stubAssignmentStore{
		listFn: func(_ context.Context, _ string, _ []string) ([]Assignment, error) {
			return []Assignment{{UserID: "u1", OrgID: "child-1", RoleID: "viewer"}}, nil
		},
	}
	roles := &stubRoleStore{
		permsForFn: func(_ context.Context, _ []string) (map[string][]string, error) {
			return map[string][]string{"viewer": {PermTaskRead}}, nil
		},
	}
	r := newTestResolver(t, orgs, roles, assignments)

	res, err := r.Resolve(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if diff := cmp.Diff([]string{"child-1"}, res.OrgIDList()); diff != "" {
		t.Fatalf("org set mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveFocusRestrictsCandidates(t *testing.T) {
	var captured []string
	orgs := &stubOrgStore{
		findFn: func(_ context.Context, id string) (*Organization, error) {
			if id == "root" {
				return &Organization{ID: "root", Name: "Root"}, nil
			}
			return nil, ErrNotFound
		},
		childrenFn: func(_ context.Context, parentIDs []string) (map[string][]string, error) {
			return map[string][]string{"root": {"child-1", "child-2"}}, nil
		},
	}
	assignments := &stubAssignmentStore{
		listFn: func(_ context.Context, _ string, orgIDs []string) ([]Assignment, error) {
			captured = orgIDs
			return nil, nil
		},
	}
	r := newTestResolver(t, orgs, &stubRoleStore{}, assignments)

	if _, err := r.Resolve(context.Background(), "u1", "root"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{"root", "child-1", "child-2"}
	if diff := cmp.Diff(want, captured); diff != "" {
		t.Fatalf("candidate set mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveMissingFocusOrgDegradesToSelf(t *testing.T) {
	var captured []string
	orgs := &stubOrgStore{
		findFn: func(_ context.Context, _ string) (*Organization, error) {
			return nil, ErrNotFound
		},
	}
	assignments := &stubAssignmentStore{
		listFn: func(_ context.Context, _ string, orgIDs []string) ([]Assignment, error) {
			captured = orgIDs
			return nil, nil
		},
	}
	r := newTestResolver(t, orgs, &stubRoleStore{}, assignments)

	if _, err := r.Resolve(context.Background(), "u1", "ghost"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if diff := cmp.Diff([]string{"ghost"}, captured); diff != "" {
		t.Fatalf("candidate set mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveRequiresUserID(t *testing.T) {
	r := newTestResolver(t, &stubOrgStore{}, &stubRoleStore{}, &stubAssignmentStore{})
	_, err := r.Resolve(context.Background(), "  ", "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestResolveWrapsStoreFailures(t *testing.T) {
	boom := errors.New("boom")
	assignments := &stubAssignmentStore{
		listFn: func(_ context.Context, _ string, _ []string) ([]Assignment, error) {
			return nil, boom
		},
	}
	r := newTestResolver(t, &stubOrgStore{}, &stubRoleStore{}, assignments)
	_, err := r.Resolve(context.Background(), "u1", "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
