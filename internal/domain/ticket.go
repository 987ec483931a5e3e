package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusRequested  TicketStatus = "REQUESTED"
	TicketStatusAssigned   TicketStatus = "ASSIGNED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority enumerates ticket urgency.
type TicketPriority string

const (
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityLow    TicketPriority = "LOW"
)

// DefaultChannel is the origin tag used when a ticket is created without one.
const DefaultChannel = "WEB"

var statusAliases = map[string]TicketStatus{
	"REQUESTED":   TicketStatusRequested,
	"SOLICITADO":  TicketStatusRequested,
	"ASSIGNED":    TicketStatusAssigned,
	"ASIGNADO":    TicketStatusAssigned,
	"IN_PROGRESS": TicketStatusInProgress,
	"EN_CURSO":    TicketStatusInProgress,
	"CLOSED":      TicketStatusClosed,
	"CERRADO":     TicketStatusClosed,
}

var priorityAliases = map[string]TicketPriority{
	"HIGH":   TicketPriorityHigh,
	"ALTA":   TicketPriorityHigh,
	"MEDIUM": TicketPriorityMedium,
	"MEDIA":  TicketPriorityMedium,
	"LOW":    TicketPriorityLow,
	"BAJA":   TicketPriorityLow,
}

// ParseTicketStatus accepts canonical names and the legacy Spanish labels.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	status, ok := statusAliases[strings.ToUpper(strings.TrimSpace(raw))]
	return status, ok
}

// ParseTicketPriority accepts canonical names and the legacy Spanish labels.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	priority, ok := priorityAliases[strings.ToUpper(strings.TrimSpace(raw))]
	return priority, ok
}

// Ticket is the aggregate for support requests filed against courts and assets.
type Ticket struct {
	ID           string
	Subject      string
	Description  string
	Status       TicketStatus
	Priority     TicketPriority
	CourtID      *string
	RequesterID  string
	TechnicianID *string
	AssetID      *string
	Log          []LogEntry
	Channel      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ClosedAt     *time.Time
	Deleted      bool
}
