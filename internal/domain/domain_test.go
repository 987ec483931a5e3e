package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAcceptsLegacyLabels(t *testing.T) {
	status, ok := ParseTicketStatus(" en_curso ")
	assert.True(t, ok)
	assert.Equal(t, TicketStatusInProgress, status)

	_, ok = ParseTicketStatus("ARCHIVED")
	assert.False(t, ok)

	priority, ok := ParseTicketPriority("baja")
	assert.True(t, ok)
	assert.Equal(t, TicketPriorityLow, priority)

	role, ok := ParseRole("Tecnico")
	assert.True(t, ok)
	assert.Equal(t, RoleTechnician, role)
	assert.True(t, role.Valid())
	assert.False(t, Role("JUEZ").Valid())
}

func TestAppendLogLeavesOriginalUntouched(t *testing.T) {
	at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	original := []LogEntry{{At: at, Author: "tecnico", Comment: "Tomado"}}

	extended := AppendLog(original, LogEntry{At: at.Add(time.Minute), Author: "admin", Comment: "Cerrar"})
	assert.Len(t, original, 1)
	assert.Len(t, extended, 2)
	assert.Equal(t, original[0], extended[0])

	assert.Equal(t, "[2024-05-10 09:00] tecnico: Tomado\n[2024-05-10 09:01] admin: Cerrar\n", RenderLog(extended, nil))
	assert.Equal(t, "", RenderLog(nil, time.UTC))
}

func TestUserLive(t *testing.T) {
	user := &User{Active: true}
	assert.True(t, user.Live())
	user.Deleted = true
	assert.False(t, user.Live())
}
