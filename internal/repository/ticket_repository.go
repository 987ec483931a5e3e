package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sojus/helpdesk/internal/domain"
)

const activeAssetIndex = "tickets_active_asset_idx"

const ticketColumns = `id, subject, description, status, priority, court_id, requester_id, technician_id,
               asset_id, log_entries, channel, created_at, updated_at, closed_at, deleted`

type ticketRepository struct {
	db querier
}

// NewTicketRepository instantiates a Postgres ticket repository on a pool or transaction.
func NewTicketRepository(db querier) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	logJSON, err := EncodeLog(ticket.Log)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO tickets (id, subject, description, status, priority, court_id, requester_id, technician_id,
            asset_id, log_entries, channel, created_at, updated_at, closed_at, deleted)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	_, err = r.db.Exec(ctx, query,
		ticket.ID,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.CourtID,
		ticket.RequesterID,
		ticket.TechnicianID,
		ticket.AssetID,
		logJSON,
		ticket.Channel,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.ClosedAt,
		ticket.Deleted,
	)
	return mapWriteError(err)
}

// Update writes the mutable columns. Identity, requester, asset and created_at are never rewritten.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	logJSON, err := EncodeLog(ticket.Log)
	if err != nil {
		return err
	}
	const query = `
        UPDATE tickets SET status=$1, priority=$2, technician_id=$3, log_entries=$4,
            updated_at=$5, closed_at=$6, deleted=$7
        WHERE id=$8 AND deleted=FALSE`
	cmd, err := r.db.Exec(ctx, query,
		ticket.Status,
		ticket.Priority,
		ticket.TechnicianID,
		logJSON,
		ticket.UpdatedAt,
		ticket.ClosedAt,
		ticket.Deleted,
		ticket.ID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 AND deleted=FALSE`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 AND deleted=FALSE FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) ExistsActiveForAsset(ctx context.Context, assetID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM tickets WHERE asset_id=$1 AND status<>$2 AND deleted=FALSE
        )`
	var exists bool
	if err := r.db.QueryRow(ctx, query, assetID, domain.TicketStatusClosed).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// LockAsset takes a transaction-scoped advisory lock; outside a transaction it is released at once.
func (r *ticketRepository) LockAsset(ctx context.Context, assetID string) error {
	_, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended('asset:' || $1::text, 0))`, assetID)
	return err
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"deleted=FALSE"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}
	if filter.CourtID != nil {
		args = append(args, *filter.CourtID)
		clauses = append(clauses, fmt.Sprintf("court_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC, id%s`,
		ticketColumns, strings.Join(clauses, " AND "), pageClause(filter.Limit, filter.Offset))

	rows, err := r.db.Query(ctx, query, args...)
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

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket  domain.Ticket
		logJSON []byte
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CourtID,
		&ticket.RequesterID,
		&ticket.TechnicianID,
		&ticket.AssetID,
		&logJSON,
		&ticket.Channel,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
		&ticket.Deleted,
	); err != nil {
		return nil, err
	}
	entries, err := DecodeLog(logJSON)
	if err != nil {
		return nil, err
	}
	ticket.Log = entries
	return &ticket, nil
}

func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == activeAssetIndex {
		return ErrActiveAssetConflict
	}
	return err
}

func pageClause(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}

// EncodeLog serializes the work log for storage.
func EncodeLog(entries []domain.LogEntry) (string, error) {
	if entries == nil {
		entries = []domain.LogEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode ticket log: %w", err)
	}
	return string(raw), nil
}

// DecodeLog parses the stored JSON work log.
func DecodeLog(raw []byte) ([]domain.LogEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var entries []domain.LogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode ticket log: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries, nil
}
