package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskhive.org/internal/access"
	"taskhive.org/internal/ids"
	"taskhive.org/internal/task"
)

// Tasks implements task.Store.
type Tasks struct {
	db *sql.DB
}

var _ task.Store = (*Tasks)(nil)

func (s *Tasks) Create(ctx context.Context, t *task.Task) error {
	if t.ID == "" {
		t.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into tasks (id, title, description, status, category, org_id, created_by_id)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning created_at, updated_at
	`, t.ID, t.Title, t.Description, t.Status, t.Category, t.OrgID, t.CreatedByID)
	if err := row.Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return fmt.Errorf("%w: organization or user", access.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *Tasks) Find(ctx context.Context, id string) (*task.Task, error) {
	var t task.Task
	err := s.db.QueryRowContext(ctx, `
		select id, title, coalesce(description, ''), status, category, org_id, created_by_id, created_at, updated_at
		from tasks
		where id = $1
	`, id).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Category, &t.OrgID, &t.CreatedByID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Tasks) ListByOrgs(ctx context.Context, orgIDs []string) ([]*task.Task, error) {
	if len(orgIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		select id, title, coalesce(description, ''), status, category, org_id, created_by_id, created_at, updated_at
		from tasks
		where org_id in (%s)
		order by created_at desc
	`, inPlaceholders(1, len(orgIDs)))
	rows, err := s.db.QueryContext(ctx, query, stringArgs(orgIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*task.Task
	for rows.Next() {
		var t task.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Category, &t.OrgID, &t.CreatedByID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}

func (s *Tasks) Update(ctx context.Context, t *task.Task) error {
	row := s.db.QueryRowContext(ctx, `
		update tasks
		set title = $2, description = $3, status = $4, category = $5, updated_at = now()
		where id = $1
		returning updated_at
	`, t.ID, t.Title, t.Description, t.Status, t.Category)
	if err := row.Scan(&t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Tasks) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from tasks where id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return task.ErrNotFound
	}
	return nil
}
