package sqlite

import (
	"context"
	"database/sql"

	"github.com/sojus/helpdesk/internal/domain"
)

const userColumns = `id, username, password_hash, full_name, email, role, court_id, active, deleted, created_at`

type directoryRepository struct {
	db dbtx
}

func (r *directoryRepository) CourtByID(ctx context.Context, id string) (*domain.Court, error) {
	var (
		court     domain.Court
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, jurisdiction, active, created_at FROM courts WHERE id = ?`, id,
	).Scan(&court.ID, &court.Name, &court.Jurisdiction, &court.Active, &createdAt)
	if err != nil {
		return nil, notFound(err)
	}
	court.CreatedAt = fromMillis(createdAt)
	return &court, nil
}

func (r *directoryRepository) HardwareByID(ctx context.Context, id string) (*domain.Hardware, error) {
	var (
		hw        domain.Hardware
		courtID   sql.NullString
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
        SELECT id, inventory_tag, serial_number, class, court_id, deleted, created_at
        FROM hardware WHERE id = ?`, id,
	).Scan(&hw.ID, &hw.InventoryTag, &hw.SerialNumber, &hw.Class, &courtID, &hw.Deleted, &createdAt)
	if err != nil {
		return nil, notFound(err)
	}
	hw.CourtID = stringPtr(courtID)
	hw.CreatedAt = fromMillis(createdAt)
	return &hw, nil
}

func (r *directoryRepository) UserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *directoryRepository) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.fetchUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *directoryRepository) fetchUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		user      domain.User
		role      string
		courtID   sql.NullString
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.FullName,
		&user.Email,
		&role,
		&courtID,
		&user.Active,
		&user.Deleted,
		&createdAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	user.Role = domain.Role(role)
	user.CourtID = stringPtr(courtID)
	user.CreatedAt = fromMillis(createdAt)
	return &user, nil
}

func (r *directoryRepository) UpsertCourt(ctx context.Context, court *domain.Court) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO courts (id, name, jurisdiction, active, created_at) VALUES (?, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET name = excluded.name, jurisdiction = excluded.jurisdiction,
            active = excluded.active`,
		court.ID, court.Name, court.Jurisdiction, court.Active, toMillis(court.CreatedAt))
	return err
}

func (r *directoryRepository) UpsertHardware(ctx context.Context, hw *domain.Hardware) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO hardware (id, inventory_tag, serial_number, class, court_id, deleted, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET inventory_tag = excluded.inventory_tag,
            serial_number = excluded.serial_number, class = excluded.class,
            court_id = excluded.court_id, deleted = excluded.deleted`,
		hw.ID, hw.InventoryTag, hw.SerialNumber, hw.Class, nullString(hw.CourtID), hw.Deleted, toMillis(hw.CreatedAt))
	return err
}

func (r *directoryRepository) UpsertUser(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET username = excluded.username, password_hash = excluded.password_hash,
            full_name = excluded.full_name, email = excluded.email, role = excluded.role,
            court_id = excluded.court_id, active = excluded.active, deleted = excluded.deleted`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.FullName,
		user.Email,
		string(user.Role),
		nullString(user.CourtID),
		user.Active,
		user.Deleted,
		toMillis(user.CreatedAt),
	)
	return err
}
