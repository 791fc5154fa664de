package pg

import (
	"context"
	"database/sql"
	"fmt"

	"taskhive.org/internal/audit"
	"taskhive.org/internal/ids"
)

// AuditLog implements audit.Store. Rows are append-only; nothing here
// updates or deletes.
type AuditLog struct {
	db *sql.DB
}

var _ audit.Store = (*AuditLog)(nil)

func (s *AuditLog) Append(ctx context.Context, rec *audit.Record) error {
	if rec.ID == "" {
		rec.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into audit_logs (id, action, resource, resource_id, user_id, user_email, org_id, details, ts)
		values ($1, $2, $3, nullif($4, ''), $5, nullif($6, ''), nullif($7, ''), nullif($8, ''), $9)
	`, rec.ID, rec.Action, rec.Resource, rec.ResourceID, rec.UserID, rec.UserEmail, rec.OrgID, rec.Details, rec.Timestamp)
	return err
}

func (s *AuditLog) List(ctx context.Context, orgIDs []string, limit int) ([]audit.Record, error) {
	if limit <= 0 || limit > audit.ListLimit {
		limit = audit.ListLimit
	}
	query := `
		select id, action, resource, coalesce(resource_id, ''), user_id, coalesce(user_email, ''), coalesce(org_id, ''), coalesce(details, ''), ts
		from audit_logs
	`
	var args []any
	if len(orgIDs) > 0 {
		query += fmt.Sprintf(` where org_id in (%s)`, inPlaceholders(1, len(orgIDs)))
		args = stringArgs(orgIDs)
	}
	query += fmt.Sprintf(` order by ts desc limit %d`, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []audit.Record
	for rows.Next() {
		var rec audit.Record
		if err := rows.Scan(&rec.ID, &rec.Action, &rec.Resource, &rec.ResourceID, &rec.UserID, &rec.UserEmail, &rec.OrgID, &rec.Details, &rec.Timestamp); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
