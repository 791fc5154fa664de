package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskhive.org/internal/access"
	"taskhive.org/internal/ids"
)

// Roles implements access.RoleStore.
type Roles struct {
	db *sql.DB
}

var _ access.RoleStore = (*Roles)(nil)

func (s *Roles) Create(ctx context.Context, role *access.Role) error {
	if role.ID == "" {
		role.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into roles (id, org_id, name, description)
		values ($1, $2, $3, $4)
		returning created_at, updated_at
	`, role.ID, role.OrgID, role.Name, role.Description)
	if err := row.Scan(&role.CreatedAt, &role.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return fmt.Errorf("%w: role name in org", access.ErrConflict)
			case pgErrForeignKeyViolation:
				return fmt.Errorf("%w: organization", access.ErrNotFound)
			}
		}
		return err
	}
	return nil
}

func (s *Roles) Find(ctx context.Context, id string) (*access.Role, error) {
	var role access.Role
	err := s.db.QueryRowContext(ctx, `
		select id, org_id, name, coalesce(description, ''), created_at, updated_at
		from roles
		where id = $1
	`, id).Scan(&role.ID, &role.OrgID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, access.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *Roles) ListByOrg(ctx context.Context, orgID string) ([]*access.Role, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, org_id, name, coalesce(description, ''), created_at, updated_at
		from roles
		where org_id = $1
		order by name
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*access.Role
	for rows.Next() {
		var role access.Role
		if err := rows.Scan(&role.ID, &role.OrgID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &role)
	}
	return result, rows.Err()
}

// SetPermissions replaces the role's permission rows in one transaction so a
// concurrent resolution never observes a partial set.
func (s *Roles) SetPermissions(ctx context.Context, roleID string, keys []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx, `select 1 from roles where id = $1 for update`, roleID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return access.ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `delete from role_permissions where role_id = $1`, roleID); err != nil {
		return err
	}
	if len(keys) > 0 {
		query := fmt.Sprintf(`
			insert into role_permissions (role_id, permission_id)
			select $1, id from permissions where key in (%s)
		`, inPlaceholders(2, len(keys)))
		args := append([]any{roleID}, stringArgs(keys)...)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Roles) PermissionsForRoles(ctx context.Context, roleIDs []string) (map[string][]string, error) {
	result := make(map[string][]string)
	if len(roleIDs) == 0 {
		return result, nil
	}
	query := fmt.Sprintf(`
		select rp.role_id, p.key
		from role_permissions rp
		join permissions p on p.id = rp.permission_id
		where rp.role_id in (%s)
		order by p.key
	`, inPlaceholders(1, len(roleIDs)))
	rows, err := s.db.QueryContext(ctx, query, stringArgs(roleIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var roleID, key string
		if err := rows.Scan(&roleID, &key); err != nil {
			return nil, err
		}
		result[roleID] = append(result[roleID], key)
	}
	return result, rows.Err()
}
