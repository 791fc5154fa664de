package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

// Store owns the database handle and hands out the typed repositories.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres via the pgx stdlib driver.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing handle (tests pass sqlmock here).
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Organizations() *Organizations { return &Organizations{db: s.db} }
func (s *Store) Roles() *Roles                 { return &Roles{db: s.db} }
func (s *Store) Assignments() *Assignments     { return &Assignments{db: s.db} }
func (s *Store) Permissions() *Permissions     { return &Permissions{db: s.db} }
func (s *Store) Users() *Users                 { return &Users{db: s.db} }
func (s *Store) Tasks() *Tasks                 { return &Tasks{db: s.db} }
func (s *Store) Audit() *AuditLog              { return &AuditLog{db: s.db} }

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// inPlaceholders renders "$start, $start+1, ..." for n values of an IN list.
func inPlaceholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
