package events

import (
	"time"

	"github.com/sojus/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketRetired       EventType = "ticket_retired"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// Event represents a committed ticket lifecycle change.
type Event struct {
	ID        string              `json:"id"`
	Type      EventType           `json:"type"`
	TicketID  string              `json:"ticket_id"`
	Status    domain.TicketStatus `json:"status"`
	Actor     Actor               `json:"actor"`
	Timestamp time.Time           `json:"timestamp"`
	Payload   interface{}         `json:"payload,omitempty"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Priority  domain.TicketPriority `json:"priority"`
	Escalated bool                  `json:"escalated"`
	CourtID   *string               `json:"court_id,omitempty"`
	AssetID   *string               `json:"asset_id,omitempty"`
	Channel   string                `json:"channel"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus    domain.TicketStatus `json:"old_status"`
	NewStatus    domain.TicketStatus `json:"new_status"`
	TechnicianID *string             `json:"technician_id,omitempty"`
	Commented    bool                `json:"commented"`
}

// ActorFrom converts a domain actor into event metadata.
func ActorFrom(actor domain.Actor) Actor {
	return Actor{UserID: actor.UserID, Username: actor.Username, Role: actor.Role}
}
