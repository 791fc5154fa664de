package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskhive.org/internal/access"
	"taskhive.org/internal/ids"
)

// Organizations implements access.OrganizationStore.
type Organizations struct {
	db *sql.DB
}

var _ access.OrganizationStore = (*Organizations)(nil)

func (s *Organizations) Create(ctx context.Context, org *access.Organization) error {
	if org.ID == "" {
		org.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into organizations (id, name, parent_id)
		values ($1, $2, nullif($3, ''))
		returning created_at, updated_at
	`, org.ID, org.Name, org.ParentID)
	if err := row.Scan(&org.CreatedAt, &org.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return access.ErrConflict
			case pgErrForeignKeyViolation:
				return fmt.Errorf("%w: parent organization", access.ErrNotFound)
			}
		}
		return err
	}
	return nil
}

func (s *Organizations) Find(ctx context.Context, id string) (*access.Organization, error) {
	var org access.Organization
	err := s.db.QueryRowContext(ctx, `
		select id, name, coalesce(parent_id, ''), created_at, updated_at
		from organizations
		where id = $1
	`, id).Scan(&org.ID, &org.Name, &org.ParentID, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, access.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// List returns all organizations oldest-first, so the first root org is the
// registration default.
func (s *Organizations) List(ctx context.Context) ([]*access.Organization, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, coalesce(parent_id, ''), created_at, updated_at
		from organizations
		order by created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*access.Organization
	for rows.Next() {
		var org access.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.ParentID, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &org)
	}
	return result, rows.Err()
}

func (s *Organizations) Children(ctx context.Context, parentIDs []string) (map[string][]string, error) {
	result := make(map[string][]string)
	if len(parentIDs) == 0 {
		return result, nil
	}
	query := fmt.Sprintf(`
		select parent_id, id
		from organizations
		where parent_id in (%s)
		order by created_at
	`, inPlaceholders(1, len(parentIDs)))
	rows, err := s.db.QueryContext(ctx, query, stringArgs(parentIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var parentID, childID string
		if err := rows.Scan(&parentID, &childID); err != nil {
			return nil, err
		}
		result[parentID] = append(result[parentID], childID)
	}
	return result, rows.Err()
}
