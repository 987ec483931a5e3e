package service

import (
	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/pkg/util/errorutil"
)

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusRequested:  {domain.TicketStatusAssigned},
	domain.TicketStatusAssigned:   {domain.TicketStatusInProgress, domain.TicketStatusRequested},
	domain.TicketStatusInProgress: {domain.TicketStatusClosed, domain.TicketStatusAssigned},
	domain.TicketStatusClosed:     {},
}

// IsValidTransition reports whether a ticket may move from current to next.
func IsValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the statuses reachable from current in one step.
func AllowedTransitions(current domain.TicketStatus) []domain.TicketStatus {
	return append([]domain.TicketStatus(nil), allowedTransitions[current]...)
}

func checkTransition(current, next domain.TicketStatus) error {
	if IsValidTransition(current, next) {
		return nil
	}
	allowed := AllowedTransitions(current)
	names := make([]string, len(allowed))
	for i, status := range allowed {
		names[i] = string(status)
	}
	return errorutil.NewInvalidTransition(string(current), string(next), names)
}
