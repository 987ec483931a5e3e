package service

import (
	"strings"
	"time"

	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/pkg/util/errorutil"
)

// Subjects mentioning a judge, a hearing or a courtroom are always urgent.
var escalationKeywords = []string{"juez", "audiencia", "sala"}

// EscalatePriority returns HIGH when the subject contains an escalation keyword, otherwise
// requested unchanged. escalated is true only when the priority was actually raised.
func EscalatePriority(subject string, requested domain.TicketPriority) (priority domain.TicketPriority, escalated bool) {
	lower := strings.ToLower(subject)
	for _, keyword := range escalationKeywords {
		if strings.Contains(lower, keyword) {
			return domain.TicketPriorityHigh, requested != domain.TicketPriorityHigh
		}
	}
	return requested, false
}

func requireTechnician(user *domain.User) error {
	if user.Role != domain.RoleTechnician {
		return errorutil.NewInvalidAssignment(user.ID, user.FullName, string(user.Role))
	}
	return nil
}

// markClosed stamps ClosedAt the first time a ticket reaches CLOSED.
func markClosed(ticket *domain.Ticket, now time.Time) {
	if ticket.Status == domain.TicketStatusClosed && ticket.ClosedAt == nil {
		closedAt := now
		ticket.ClosedAt = &closedAt
	}
}
