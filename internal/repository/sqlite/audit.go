package sqlite

import (
	"context"
	"database/sql"

	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/internal/repository"
)

const auditColumns = `id, entity_name, entity_id, action, actor_username, field, old_value, new_value, recorded_at`

type auditRepository struct {
	db dbtx
}

var _ repository.AuditRepository = (*auditRepository)(nil)

func (r *auditRepository) Append(ctx context.Context, record *domain.AuditRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (`+auditColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.EntityName,
		record.EntityID,
		string(record.Action),
		record.ActorUsername,
		nullString(record.Field),
		nullString(record.OldValue),
		nullString(record.NewValue),
		toMillis(record.RecordedAt),
	)
	return err
}

func (r *auditRepository) ListRecent(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	return r.list(ctx, `SELECT `+auditColumns+` FROM audit_log ORDER BY recorded_at DESC, rowid DESC`+pageClause(limit, 0))
}

func (r *auditRepository) ListByEntity(ctx context.Context, entityName, entityID string) ([]domain.AuditRecord, error) {
	return r.list(ctx, `SELECT `+auditColumns+` FROM audit_log
        WHERE entity_name = ? AND entity_id = ? ORDER BY recorded_at DESC, rowid DESC`, entityName, entityID)
}

func (r *auditRepository) list(ctx context.Context, query string, args ...any) ([]domain.AuditRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditRecord
	for rows.Next() {
		var (
			record                    domain.AuditRecord
			action                    string
			field, oldValue, newValue sql.NullString
			recordedAt                int64
		)
		if err := rows.Scan(
			&record.ID,
			&record.EntityName,
			&record.EntityID,
			&action,
			&record.ActorUsername,
			&field,
			&oldValue,
			&newValue,
			&recordedAt,
		); err != nil {
			return nil, err
		}
		record.Action = domain.AuditAction(action)
		record.Field = stringPtr(field)
		record.OldValue = stringPtr(oldValue)
		record.NewValue = stringPtr(newValue)
		record.RecordedAt = fromMillis(recordedAt)
		result = append(result, record)
	}
	return result, rows.Err()
}
