package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/internal/lookup"
)

type staticNames map[string]string

func (s staticNames) Name(_ context.Context, kind, id string) (string, bool, error) {
	name, ok := s[kind+":"+id]
	return name, ok, nil
}

func TestProjectOmitsAbsentFields(t *testing.T) {
	created := time.Date(2024, 5, 10, 14, 30, 59, 0, time.UTC)
	ticket := &domain.Ticket{
		ID:          "t-1",
		Subject:     "Monitor",
		Description: "Sin imagen",
		Status:      domain.TicketStatusRequested,
		Priority:    domain.TicketPriorityMedium,
		RequesterID: "u-oper",
		Channel:     domain.DefaultChannel,
		CreatedAt:   created,
	}

	view := NewProjector(nil).Project(ticket, References{})
	assert.Equal(t, "2024-05-10 14:30", view.CreatedAt)
	assert.Nil(t, view.UpdatedAt)
	assert.Nil(t, view.ClosedAt)
	assert.Nil(t, view.Log)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, absent := range []string{"court_id", "court_name", "requester_name", "technician_id", "technician_name",
		"asset_id", "asset_inventory_tag", "log", "updated_at", "closed_at"} {
		assert.NotContains(t, fields, absent)
	}
	assert.Equal(t, "REQUESTED", fields["status"])
}

func TestProjectRendersInLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	require.NoError(t, err)
	at := time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{
		ID:        "t-1",
		Status:    domain.TicketStatusClosed,
		CreatedAt: at,
		UpdatedAt: at,
		ClosedAt:  &at,
		Log:       []domain.LogEntry{{At: at, Author: "tecnico", Comment: "Resolved"}},
	}

	view := NewProjector(loc).Project(ticket, References{})
	assert.Equal(t, "2024-05-10 15:00", view.CreatedAt)
	require.NotNil(t, view.ClosedAt)
	assert.Equal(t, "2024-05-10 15:00", *view.ClosedAt)
	require.NotNil(t, view.Log)
	assert.Equal(t, "[2024-05-10 15:00] tecnico: Resolved\n", *view.Log)
}

func TestResolveReferences(t *testing.T) {
	courtID, techID, assetID := "1", "u-tech", "hw-1"
	ticket := &domain.Ticket{CourtID: &courtID, RequesterID: "u-gone", TechnicianID: &techID, AssetID: &assetID}
	names := staticNames{
		lookup.KindCourt + ":1":       "Juzgado Nro 1",
		lookup.KindUser + ":u-tech":   "Ana Martínez",
		lookup.KindHardware + ":hw-1": "INV-001-0001",
	}

	refs, err := resolveReferences(context.Background(), names, ticket)
	require.NoError(t, err)
	require.NotNil(t, refs.CourtName)
	assert.Equal(t, "Juzgado Nro 1", *refs.CourtName)
	assert.Nil(t, refs.RequesterName)
	require.NotNil(t, refs.TechnicianName)
	assert.Equal(t, "Ana Martínez", *refs.TechnicianName)
	require.NotNil(t, refs.AssetInventoryTag)
	assert.Equal(t, "INV-001-0001", *refs.AssetInventoryTag)
}

type brokenCourtNames struct{ staticNames }

func (b brokenCourtNames) Name(ctx context.Context, kind, id string) (string, bool, error) {
	if kind == lookup.KindCourt {
		return "", false, errors.New("court directory unavailable")
	}
	return b.staticNames.Name(ctx, kind, id)
}

func TestResolveReferencesKeepsNamesPastFailures(t *testing.T) {
	courtID := "1"
	ticket := &domain.Ticket{CourtID: &courtID, RequesterID: "u-oper"}
	names := brokenCourtNames{staticNames{lookup.KindUser + ":u-oper": "Carlos López"}}

	refs, err := resolveReferences(context.Background(), names, ticket)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "court directory unavailable")
	assert.Nil(t, refs.CourtName)
	require.NotNil(t, refs.RequesterName)
	assert.Equal(t, "Carlos López", *refs.RequesterName)
}

func TestProjectAudit(t *testing.T) {
	field, oldValue, newValue := "status", "REQUESTED", "ASSIGNED"
	record := &domain.AuditRecord{
		ID:            "a-1",
		EntityName:    domain.EntityTicket,
		EntityID:      "t-1",
		Action:        domain.AuditActionStatusChange,
		ActorUsername: "tecnico",
		Field:         &field,
		OldValue:      &oldValue,
		NewValue:      &newValue,
		RecordedAt:    time.Date(2024, 5, 10, 9, 5, 0, 0, time.UTC),
	}

	view := NewProjector(time.UTC).ProjectAudit(record)
	assert.Equal(t, "STATUS_CHANGE", view.Action)
	assert.Equal(t, "2024-05-10 09:05", view.Timestamp)
	assert.Equal(t, &field, view.Field)
}
