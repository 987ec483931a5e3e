package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCarryCodesAndStatuses(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad", nil), CodeValidation, http.StatusBadRequest},
		{NewNotFound("Ticket", "t-1"), CodeNotFound, http.StatusNotFound},
		{NewInvalidTransition("CLOSED", "ASSIGNED", nil), CodeInvalidTransition, http.StatusConflict},
		{NewInvalidAssignment("u-1", "Carlos López", "OPERATOR"), CodeInvalidAssignment, http.StatusUnprocessableEntity},
		{NewAssetBusy("hw-1", "INV-001-0001"), CodeAssetBusy, http.StatusConflict},
		{NewUnauthorized("no"), CodeUnauthorized, http.StatusUnauthorized},
		{NewForbidden("no"), CodeForbidden, http.StatusForbidden},
		{NewInternalError(errors.New("db down")), CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		domainErr := ToDomainError(tc.err)
		assert.Equal(t, tc.code, domainErr.Code)
		assert.Equal(t, tc.status, domainErr.HTTPStatus)
		assert.True(t, HasCode(tc.err, tc.code))
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Ticket t-1 not found", NewNotFound("Ticket", "t-1").Error())
	assert.Contains(t, NewInvalidTransition("CLOSED", "ASSIGNED", nil).Error(), "allowed from CLOSED: none")
	assert.Contains(t, NewInvalidTransition("REQUESTED", "CLOSED", []string{"ASSIGNED"}).Error(), "ASSIGNED")
	assert.Contains(t, NewAssetBusy("hw-1", "INV-001-0001").Error(), "INV-001-0001")
	assert.Contains(t, NewInvalidAssignment("u-1", "Carlos López", "OPERATOR").Error(), "'Carlos López'")
}

func TestToDomainErrorWrapsUnknownErrors(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	cause := errors.New("boom")
	domainErr := ToDomainError(cause)
	assert.Equal(t, CodeInternal, domainErr.Code)
	assert.ErrorIs(t, domainErr, cause)

	wrapped := fmt.Errorf("create: %w", NewNotFound("Court", "9"))
	assert.Equal(t, CodeNotFound, ToDomainError(wrapped).Code)
	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(cause, CodeNotFound))
}

func TestCodeForStatus(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeForStatus(http.StatusBadRequest))
	assert.Equal(t, CodeUnauthorized, CodeForStatus(http.StatusUnauthorized))
	assert.Equal(t, CodeForbidden, CodeForStatus(http.StatusForbidden))
	assert.Equal(t, CodeNotFound, CodeForStatus(http.StatusNotFound))
	assert.Equal(t, CodeInternal, CodeForStatus(http.StatusBadGateway))
	assert.Equal(t, "METHOD_NOT_ALLOWED", CodeForStatus(http.StatusMethodNotAllowed))
}
