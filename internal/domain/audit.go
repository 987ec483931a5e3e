package domain

import "time"

// AuditAction tags what kind of mutation an audit record describes.
type AuditAction string

const (
	AuditActionCreate       AuditAction = "CREATE"
	AuditActionStatusChange AuditAction = "STATUS_CHANGE"
	AuditActionDelete       AuditAction = "DELETE"
)

// EntityTicket is the entity name written on ticket audit records.
const EntityTicket = "Ticket"

// AuditRecord is an immutable audit trail entry.
type AuditRecord struct {
	ID            string
	EntityName    string
	EntityID      string
	Action        AuditAction
	ActorUsername string
	Field         *string
	OldValue      *string
	NewValue      *string
	RecordedAt    time.Time
}
