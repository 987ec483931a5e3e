package repository

import (
	"context"

	"github.com/sojus/helpdesk/internal/domain"
)

const auditColumns = `id, entity_name, entity_id, action, actor_username, field, old_value, new_value, recorded_at`

type auditRepository struct {
	db querier
}

// NewAuditRepository builds the Postgres audit sink. The table rejects UPDATE and DELETE.
func NewAuditRepository(db querier) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, record *domain.AuditRecord) error {
	const query = `
        INSERT INTO audit_log (id, entity_name, entity_id, action, actor_username, field, old_value, new_value, recorded_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.EntityName,
		record.EntityID,
		record.Action,
		record.ActorUsername,
		record.Field,
		record.OldValue,
		record.NewValue,
		record.RecordedAt,
	)
	return err
}

func (r *auditRepository) ListRecent(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_log ORDER BY recorded_at DESC, id` + pageClause(limit, 0)
	return r.list(ctx, query)
}

func (r *auditRepository) ListByEntity(ctx context.Context, entityName, entityID string) ([]domain.AuditRecord, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_log WHERE entity_name=$1 AND entity_id=$2 ORDER BY recorded_at DESC, id`
	return r.list(ctx, query, entityName, entityID)
}

func (r *auditRepository) list(ctx context.Context, query string, args ...any) ([]domain.AuditRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditRecord
	for rows.Next() {
		var record domain.AuditRecord
		if err := rows.Scan(
			&record.ID,
			&record.EntityName,
			&record.EntityID,
			&record.Action,
			&record.ActorUsername,
			&record.Field,
			&record.OldValue,
			&record.NewValue,
			&record.RecordedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
