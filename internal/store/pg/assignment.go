package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskhive.org/internal/access"
	"taskhive.org/internal/ids"
)

// Assignments implements access.AssignmentStore.
type Assignments struct {
	db *sql.DB
}

var _ access.AssignmentStore = (*Assignments)(nil)

// Assign inserts the grant. A duplicate (user, org, role) triple is absorbed
// by the unique constraint and the existing row is returned instead.
func (s *Assignments) Assign(ctx context.Context, a access.Assignment) (access.Assignment, error) {
	if a.ID == "" {
		a.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into user_org_roles (id, user_id, org_id, role_id)
		values ($1, $2, $3, $4)
		on conflict (user_id, org_id, role_id) do nothing
		returning id, created_at
	`, a.ID, a.UserID, a.OrgID, a.RoleID)
	err := row.Scan(&a.ID, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s.find(ctx, a.UserID, a.OrgID, a.RoleID)
	}
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return access.Assignment{}, fmt.Errorf("%w: user, org or role", access.ErrNotFound)
		}
		return access.Assignment{}, err
	}
	return a, nil
}

func (s *Assignments) find(ctx context.Context, userID, orgID, roleID string) (access.Assignment, error) {
	var a access.Assignment
	err := s.db.QueryRowContext(ctx, `
		select id, user_id, org_id, role_id, created_at
		from user_org_roles
		where user_id = $1 and org_id = $2 and role_id = $3
	`, userID, orgID, roleID).Scan(&a.ID, &a.UserID, &a.OrgID, &a.RoleID, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return access.Assignment{}, access.ErrNotFound
	}
	if err != nil {
		return access.Assignment{}, err
	}
	return a, nil
}

func (s *Assignments) ListByUser(ctx context.Context, userID string, orgIDs []string) ([]access.Assignment, error) {
	query := `
		select id, user_id, org_id, role_id, created_at
		from user_org_roles
		where user_id = $1
	`
	args := []any{userID}
	if len(orgIDs) > 0 {
		query += fmt.Sprintf(` and org_id in (%s)`, inPlaceholders(2, len(orgIDs)))
		args = append(args, stringArgs(orgIDs)...)
	}
	query += ` order by created_at desc`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []access.Assignment
	for rows.Next() {
		var a access.Assignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.OrgID, &a.RoleID, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
