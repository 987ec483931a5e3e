package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sojus/helpdesk/internal/domain"
)

const userColumns = `id, username, password_hash, full_name, email, role, court_id, active, deleted, created_at`

type directoryRepository struct {
	db querier
}

// NewDirectoryRepository returns the Postgres reader for courts, hardware and users.
func NewDirectoryRepository(db querier) DirectoryRepository {
	return &directoryRepository{db: db}
}

func (r *directoryRepository) CourtByID(ctx context.Context, id string) (*domain.Court, error) {
	const query = `SELECT id, name, jurisdiction, active, created_at FROM courts WHERE id=$1`
	var court domain.Court
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&court.ID,
		&court.Name,
		&court.Jurisdiction,
		&court.Active,
		&court.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &court, nil
}

func (r *directoryRepository) HardwareByID(ctx context.Context, id string) (*domain.Hardware, error) {
	const query = `
        SELECT id, inventory_tag, serial_number, class, court_id, deleted, created_at
        FROM hardware WHERE id=$1`
	var hw domain.Hardware
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&hw.ID,
		&hw.InventoryTag,
		&hw.SerialNumber,
		&hw.Class,
		&hw.CourtID,
		&hw.Deleted,
		&hw.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &hw, nil
}

func (r *directoryRepository) UserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchUser(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *directoryRepository) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.fetchUser(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
}

func (r *directoryRepository) fetchUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.FullName,
		&user.Email,
		&user.Role,
		&user.CourtID,
		&user.Active,
		&user.Deleted,
		&user.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *directoryRepository) UpsertCourt(ctx context.Context, court *domain.Court) error {
	const query = `
        INSERT INTO courts (id, name, jurisdiction, active, created_at)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, jurisdiction=EXCLUDED.jurisdiction,
            active=EXCLUDED.active`
	_, err := r.db.Exec(ctx, query, court.ID, court.Name, court.Jurisdiction, court.Active, court.CreatedAt)
	return err
}

func (r *directoryRepository) UpsertHardware(ctx context.Context, hw *domain.Hardware) error {
	const query = `
        INSERT INTO hardware (id, inventory_tag, serial_number, class, court_id, deleted, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (id) DO UPDATE SET inventory_tag=EXCLUDED.inventory_tag,
            serial_number=EXCLUDED.serial_number, class=EXCLUDED.class,
            court_id=EXCLUDED.court_id, deleted=EXCLUDED.deleted`
	_, err := r.db.Exec(ctx, query,
		hw.ID, hw.InventoryTag, hw.SerialNumber, hw.Class, hw.CourtID, hw.Deleted, hw.CreatedAt)
	return err
}

func (r *directoryRepository) UpsertUser(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, username, password_hash, full_name, email, role, court_id, active, deleted, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (id) DO UPDATE SET username=EXCLUDED.username, password_hash=EXCLUDED.password_hash,
            full_name=EXCLUDED.full_name, email=EXCLUDED.email, role=EXCLUDED.role,
            court_id=EXCLUDED.court_id, active=EXCLUDED.active, deleted=EXCLUDED.deleted`
	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.FullName,
		user.Email,
		user.Role,
		user.CourtID,
		user.Active,
		user.Deleted,
		user.CreatedAt,
	)
	return err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
