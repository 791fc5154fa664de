package pg

import (
	"context"
	"database/sql"
	"errors"

	"taskhive.org/internal/auth"
	"taskhive.org/internal/ids"
)

// Users implements auth.UserStore.
type Users struct {
	db *sql.DB
}

var _ auth.UserStore = (*Users)(nil)

func (s *Users) Create(ctx context.Context, u *auth.User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into users (id, email, password_hash, is_active)
		values ($1, $2, $3, $4)
		returning created_at, updated_at
	`, u.ID, u.Email, u.PasswordHash, u.IsActive)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return auth.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *Users) Find(ctx context.Context, id string) (*auth.User, error) {
	return s.findBy(ctx, `id = $1`, id)
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findBy(ctx, `email = $1`, email)
}

func (s *Users) findBy(ctx context.Context, where, arg string) (*auth.User, error) {
	var u auth.User
	err := s.db.QueryRowContext(ctx, `
		select id, email, password_hash, is_active, created_at, updated_at
		from users
		where `+where+`
	`, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
