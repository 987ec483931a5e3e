package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/pkg/util/errorutil"
)

func TestIsValidTransition(t *testing.T) {
	valid := map[[2]domain.TicketStatus]bool{
		{domain.TicketStatusRequested, domain.TicketStatusAssigned}:  true,
		{domain.TicketStatusAssigned, domain.TicketStatusInProgress}: true,
		{domain.TicketStatusAssigned, domain.TicketStatusRequested}:  true,
		{domain.TicketStatusInProgress, domain.TicketStatusClosed}:   true,
		{domain.TicketStatusInProgress, domain.TicketStatusAssigned}: true,
	}
	all := []domain.TicketStatus{
		domain.TicketStatusRequested, domain.TicketStatusAssigned, domain.TicketStatusInProgress, domain.TicketStatusClosed,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, valid[[2]domain.TicketStatus{from, to}], IsValidTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.False(t, IsValidTransition("", domain.TicketStatusAssigned))
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	allowed := AllowedTransitions(domain.TicketStatusAssigned)
	assert.Equal(t, []domain.TicketStatus{domain.TicketStatusInProgress, domain.TicketStatusRequested}, allowed)

	allowed[0] = domain.TicketStatusClosed
	assert.True(t, IsValidTransition(domain.TicketStatusAssigned, domain.TicketStatusInProgress))
	assert.Empty(t, AllowedTransitions(domain.TicketStatusClosed))
}

func TestCheckTransitionDescribesAllowedMoves(t *testing.T) {
	err := checkTransition(domain.TicketStatusRequested, domain.TicketStatusClosed)
	domainErr := errorutil.ToDomainError(err)
	assert.Equal(t, errorutil.CodeInvalidTransition, domainErr.Code)
	assert.Contains(t, domainErr.Message, "REQUESTED -> CLOSED")
	assert.Contains(t, domainErr.Message, "ASSIGNED")

	err = checkTransition(domain.TicketStatusClosed, domain.TicketStatusRequested)
	assert.Contains(t, errorutil.ToDomainError(err).Message, "none")

	assert.NoError(t, checkTransition(domain.TicketStatusInProgress, domain.TicketStatusAssigned))
}
