package repository

import (
	"context"
	"errors"

	"github.com/sojus/helpdesk/internal/domain"
)

var (
	// ErrNotFound is returned when a record is absent or soft-deleted.
	ErrNotFound = errors.New("repository: record not found")
	// ErrActiveAssetConflict is returned when a write would leave two active tickets on one asset.
	ErrActiveAssetConflict = errors.New("repository: asset already has an active ticket")
)

// TicketFilter narrows ticket listings. Nil fields do not filter.
type TicketFilter struct {
	RequesterID  *string
	TechnicianID *string
	CourtID      *string
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence. Soft-deleted tickets are never returned.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// GetForUpdate loads the ticket and holds a row lock until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	ExistsActiveForAsset(ctx context.Context, assetID string) (bool, error)
	// LockAsset serializes transactions that check or claim the given asset.
	LockAsset(ctx context.Context, assetID string) error
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

// AuditRepository is the append-only audit sink.
type AuditRepository interface {
	Append(ctx context.Context, record *domain.AuditRecord) error
	ListRecent(ctx context.Context, limit int) ([]domain.AuditRecord, error)
	ListByEntity(ctx context.Context, entityName, entityID string) ([]domain.AuditRecord, error)
}

// DirectoryRepository reads the externally owned court, hardware and user records.
// Records are returned regardless of their active/deleted flags.
type DirectoryRepository interface {
	CourtByID(ctx context.Context, id string) (*domain.Court, error)
	HardwareByID(ctx context.Context, id string) (*domain.Hardware, error)
	UserByID(ctx context.Context, id string) (*domain.User, error)
	UserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// DirectoryWriter loads directory records, used by seeding and fixtures.
type DirectoryWriter interface {
	UpsertCourt(ctx context.Context, court *domain.Court) error
	UpsertHardware(ctx context.Context, hw *domain.Hardware) error
	UpsertUser(ctx context.Context, user *domain.User) error
}

// Repositories bundles the repositories bound to one connection or transaction.
type Repositories struct {
	Tickets   TicketRepository
	Audit     AuditRepository
	Directory DirectoryRepository
}

// TxFunc runs inside a transaction; returning an error rolls it back.
type TxFunc func(ctx context.Context, repos Repositories) error

// Store is the backing database for the lifecycle engine.
type Store interface {
	// Repositories returns repositories that run outside any transaction.
	Repositories() Repositories
	DirectoryWriter() DirectoryWriter
	// WithinTx runs fn in a single transaction, committing only when fn returns nil.
	WithinTx(ctx context.Context, fn TxFunc) error
	Ping(ctx context.Context) error
	Close()
}
