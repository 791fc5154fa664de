package pg

import (
	"context"
	"database/sql"
	"errors"

	"taskhive.org/internal/access"
	"taskhive.org/internal/ids"
)

// Permissions implements access.PermissionStore.
type Permissions struct {
	db *sql.DB
}

var _ access.PermissionStore = (*Permissions)(nil)

// Ensure inserts any catalog entries that do not exist yet. Existing keys are
// left untouched; the catalog is immutable once created.
func (s *Permissions) Ensure(ctx context.Context, perms []access.Permission) error {
	for _, p := range perms {
		id := p.ID
		if id == "" {
			id = ids.New()
		}
		if _, err := s.db.ExecContext(ctx, `
			insert into permissions (id, key, description)
			values ($1, $2, $3)
			on conflict (key) do nothing
		`, id, p.Key, p.Description); err != nil {
			return err
		}
	}
	return nil
}

func (s *Permissions) Find(ctx context.Context, key string) (*access.Permission, error) {
	var p access.Permission
	err := s.db.QueryRowContext(ctx, `
		select id, key, coalesce(description, ''), created_at
		from permissions
		where key = $1
	`, key).Scan(&p.ID, &p.Key, &p.Description, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, access.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Permissions) List(ctx context.Context) ([]access.Permission, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, key, coalesce(description, ''), created_at
		from permissions
		order by key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []access.Permission
	for rows.Next() {
		var p access.Permission
		if err := rows.Scan(&p.ID, &p.Key, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
