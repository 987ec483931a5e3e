package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/internal/repository"
)

const ticketColumns = `id, subject, description, status, priority, court_id, requester_id, technician_id,
    asset_id, log_entries, channel, created_at, updated_at, closed_at, deleted`

type ticketRepository struct {
	db dbtx
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	logJSON, err := repository.EncodeLog(ticket.Log)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO tickets (`+ticketColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ticket.ID,
		ticket.Subject,
		ticket.Description,
		string(ticket.Status),
		string(ticket.Priority),
		nullString(ticket.CourtID),
		ticket.RequesterID,
		nullString(ticket.TechnicianID),
		nullString(ticket.AssetID),
		logJSON,
		ticket.Channel,
		toMillis(ticket.CreatedAt),
		toMillis(ticket.UpdatedAt),
		nullMillis(ticket.ClosedAt),
		ticket.Deleted,
	)
	return mapWriteError(err)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	logJSON, err := repository.EncodeLog(ticket.Log)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
        UPDATE tickets SET status = ?, priority = ?, technician_id = ?, log_entries = ?,
            updated_at = ?, closed_at = ?, deleted = ?
        WHERE id = ? AND deleted = 0`,
		string(ticket.Status),
		string(ticket.Priority),
		nullString(ticket.TechnicianID),
		logJSON,
		toMillis(ticket.UpdatedAt),
		nullMillis(ticket.ClosedAt),
		ticket.Deleted,
		ticket.ID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ? AND deleted = 0`, id)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, notFound(err)
	}
	return ticket, nil
}

// GetForUpdate needs no row lock: the surrounding immediate transaction already holds the write lock.
func (r *ticketRepository) GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *ticketRepository) ExistsActiveForAsset(ctx context.Context, assetID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE asset_id = ? AND status <> ? AND deleted = 0)`,
		assetID, string(domain.TicketStatusClosed),
	).Scan(&exists)
	return exists, err
}

// LockAsset is a no-op; the database-wide write lock serializes claims.
func (r *ticketRepository) LockAsset(context.Context, string) error {
	return nil
}

func (r *ticketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"deleted = 0"}
	var args []any

	if filter.RequesterID != nil {
		clauses = append(clauses, "requester_id = ?")
		args = append(args, *filter.RequesterID)
	}
	if filter.TechnicianID != nil {
		clauses = append(clauses, "technician_id = ?")
		args = append(args, *filter.TechnicianID)
	}
	if filter.CourtID != nil {
		clauses = append(clauses, "court_id = ?")
		args = append(args, *filter.CourtID)
	}
	if len(filter.Statuses) > 0 {
		clauses = append(clauses, "status IN ("+placeholders(len(filter.Statuses))+")")
		for _, status := range filter.Statuses {
			args = append(args, string(status))
		}
	}
	if len(filter.Priorities) > 0 {
		clauses = append(clauses, "priority IN ("+placeholders(len(filter.Priorities))+")")
		for _, priority := range filter.Priorities {
			args = append(args, string(priority))
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC, id%s`,
		ticketColumns, strings.Join(clauses, " AND "), pageClause(filter.Limit, filter.Offset))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket                         domain.Ticket
		status, priority, logJSON      string
		courtID, technicianID, assetID sql.NullString
		createdAt, updatedAt           int64
		closedAt                       sql.NullInt64
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&status,
		&priority,
		&courtID,
		&ticket.RequesterID,
		&technicianID,
		&assetID,
		&logJSON,
		&ticket.Channel,
		&createdAt,
		&updatedAt,
		&closedAt,
		&ticket.Deleted,
	); err != nil {
		return nil, err
	}
	entries, err := repository.DecodeLog([]byte(logJSON))
	if err != nil {
		return nil, err
	}
	ticket.Status = domain.TicketStatus(status)
	ticket.Priority = domain.TicketPriority(priority)
	ticket.CourtID = stringPtr(courtID)
	ticket.TechnicianID = stringPtr(technicianID)
	ticket.AssetID = stringPtr(assetID)
	ticket.Log = entries
	ticket.CreatedAt = fromMillis(createdAt)
	ticket.UpdatedAt = fromMillis(updatedAt)
	ticket.ClosedAt = timePtr(closedAt)
	return &ticket, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
