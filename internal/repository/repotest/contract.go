// Package repotest holds behavior checks every repository.Store implementation must pass.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/internal/repository"
	"github.com/sojus/helpdesk/internal/testkit"
)

// RunStoreContract exercises store against the shared persistence contract. newStore must
// return an empty, migrated store for every call.
func RunStoreContract(t *testing.T, newStore func(t *testing.T) repository.Store) {
	t.Run("ticket round trip", func(t *testing.T) { testTicketRoundTrip(t, newStore(t)) })
	t.Run("update keeps identity", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("soft delete hides ticket", func(t *testing.T) { testSoftDelete(t, newStore(t)) })
	t.Run("one active ticket per asset", func(t *testing.T) { testActiveAsset(t, newStore(t)) })
	t.Run("list filters", func(t *testing.T) { testList(t, newStore(t)) })
	t.Run("transaction rollback", func(t *testing.T) { testRollback(t, newStore(t)) })
	t.Run("audit trail", func(t *testing.T) { testAudit(t, newStore(t)) })
	t.Run("directory", func(t *testing.T) { testDirectory(t, newStore(t)) })
}

var base = time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

func newTicket(dir testkit.Directory, subject string, at time.Time) *domain.Ticket {
	return &domain.Ticket{
		ID:          uuid.NewString(),
		Subject:     subject,
		Description: "detalle",
		Status:      domain.TicketStatusRequested,
		Priority:    domain.TicketPriorityMedium,
		RequesterID: dir.Operator.ID,
		Channel:     domain.DefaultChannel,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func testTicketRoundTrip(t *testing.T, store repository.Store) {
	ctx := context.Background()
	dir := testkit.SeedDirectory(t, store.DirectoryWriter())
	tickets := store.Repositories().Tickets

	ticket := newTicket(dir, "Monitor sin imagen", base)
	ticket.CourtID = &dir.Court.ID
	ticket.AssetID = &dir.Asset.ID
	require.NoError(t, tickets.Create(ctx, ticket))

	got, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.Subject, got.Subject)
	assert.Equal(t, ticket.Status, got.Status)
	assert.Equal(t, ticket.Priority, got.Priority)
	require.NotNil(t, got.CourtID)
	assert.Equal(t, dir.Court.ID, *got.CourtID)
	require.NotNil(t, got.AssetID)
	assert.Equal(t, dir.Asset.ID, *got.AssetID)
	assert.Nil(t, got.TechnicianID)
	assert.Nil(t, got.ClosedAt)
	assert.Empty(t, got.Log)
	assert.True(t, got.CreatedAt.Equal(base))
	assert.False(t, got.Deleted)

	_, err = tickets.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testUpdate(t *testing.T, store repository.Store) {
	ctx := context.Background()
	dir := testkit.SeedDirectory(t, store.DirectoryWriter())
	tickets := store.Repositories().Tickets

	ticket := newTicket(dir, "Red caída", base)
	ticket.AssetID = &dir.Asset.ID
	require.NoError(t, tickets.Create(ctx, ticket))

	closedAt := base.Add(time.Hour)
	ticket.Status = domain.TicketStatusClosed
	ticket.TechnicianID = &dir.Technician.ID
	ticket.ClosedAt = &closedAt
	ticket.UpdatedAt = closedAt
	ticket.Log = []domain.LogEntry{
		{At: base.Add(time.Minute), Author: "tecnico", Comment: "Tomado"},
		{At: closedAt, Author: "tecnico", Comment: "Resolved"},
	}
	// asset and requester are not rewritten
	ticket.AssetID = &dir.SpareAsset.ID
	ticket.RequesterID = dir.Admin.ID
	require.NoError(t, tickets.Update(ctx, ticket))

	got, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, got.Status)
	require.NotNil(t, got.TechnicianID)
	assert.Equal(t, dir.Technician.ID, *got.TechnicianID)
	require.NotNil(t, got.ClosedAt)
	assert.True(t, got.ClosedAt.Equal(closedAt))
	require.Len(t, got.Log, 2)
	assert.Equal(t, "Resolved", got.Log[1].Comment)
	assert.True(t, got.Log[0].At.Equal(base.Add(time.Minute)))
	require.NotNil(t, got.AssetID)
	assert.Equal(t, dir.Asset.ID, *got.AssetID)
	assert.Equal(t, dir.Operator.ID, got.RequesterID)

	missing := newTicket(dir, "fantasma", base)
	assert.ErrorIs(t, tickets.Update(ctx, missing), repository.ErrNotFound)
}

func testSoftDelete(t *testing.T, store repository.Store) {
	ctx := context.Background()
	dir := testkit.SeedDirectory(t, store.DirectoryWriter())
	tickets := store.Repositories().Tickets

	ticket := newTicket(dir, "Teclado", base)
	require.NoError(t, tickets.Create(ctx, ticket))

	ticket.Deleted = true
	require.NoError(t, tickets.Update(ctx, ticket))

	_, err := tickets.GetByID(ctx, ticket.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = tickets.GetForUpdate(ctx, ticket.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, tickets.Update(ctx, ticket), repository.ErrNotFound)

	all, err := tickets.List(ctx, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testActiveAsset(t *testing.T, store repository.Store) {
	ctx := context.Background()
	dir := testkit.SeedDirectory(t, store.DirectoryWriter())
	tickets := store.Repositories().Tickets

	busy, err := tickets.ExistsActiveForAsset(ctx, dir.Asset.ID)
	require.NoError(t, err)
	assert.False(t, busy)

	first := newTicket(dir, "No enciende", base)
	first.AssetID = &dir.Asset.ID
	require.NoError(t, tickets.Create(ctx, first))

	busy, err = tickets.ExistsActiveForAsset(ctx, dir.Asset.ID)
	require.NoError(t, err)
	assert.True(t, busy)

	second := newTicket(dir, "Sigue sin encender", base)
	second.AssetID = &dir.Asset.ID
	err = tickets.Create(ctx, second)
	assert.True(t, errors.Is(err, repository.ErrActiveAssetConflict), "got %v", err)

	first.Status = domain.TicketStatusClosed
	closedAt := base.Add(time.Hour)
	first.ClosedAt = &closedAt
	require.NoError(t, tickets.Update(ctx, first))

	busy, err = tickets.ExistsActiveForAsset(ctx, dir.Asset.ID)
	require.NoError(t, err)
	assert.False(t, busy)
	require.NoError(t, tickets.Create(ctx, second))
}

func testList(t *testing.T, store repository.Store) {
	ctx := context.Background()
	dir := testkit.SeedDirectory(t, store.DirectoryWriter())
	tickets := store.Repositories().Tickets

	older := newTicket(dir, "Antiguo", base)
	older.CourtID = &dir.Court.ID
	older.Priority = domain.TicketPriorityHigh
	newer := newTicket(dir, "Reciente", base.Add(time.Hour))
	newer.Status = domain.TicketStatusAssigned
	newer.TechnicianID = &dir.Technician.ID
	fromAdmin := newTicket(dir, "Del admin", base.Add(2*time.Hour))
	fromAdmin.RequesterID = dir.Admin.ID
	for _, ticket := range []*domain.Ticket{older, newer, fromAdmin} {
		require.NoError(t, tickets.Create(ctx, ticket))
	}

	ids := func(filter repository.TicketFilter) []string {
		list, err := tickets.List(ctx, filter)
		require.NoError(t, err)
		out := make([]string, 0, len(list))
		for _, ticket := range list {
			out = append(out, ticket.ID)
		}
		return out
	}

	assert.Equal(t, []string{fromAdmin.ID, newer.ID, older.ID}, ids(repository.TicketFilter{}))
	assert.Equal(t, []string{newer.ID, older.ID}, ids(repository.TicketFilter{RequesterID: &dir.Operator.ID}))
	assert.Equal(t, []string{newer.ID}, ids(repository.TicketFilter{TechnicianID: &dir.Technician.ID}))
	assert.Equal(t, []string{older.ID}, ids(repository.TicketFilter{CourtID: &dir.Court.ID}))
	assert.Equal(t, []string{fromAdmin.ID, older.ID},
		ids(repository.TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusRequested}}))
	assert.Equal(t, []string{older.ID},
		ids(repository.TicketFilter{Priorities: []domain.TicketPriority{domain.TicketPriorityHigh}}))
	assert.Equal(t, []string{newer.ID}, ids(repository.TicketFilter{Limit: 1, Offset: 1}))
}

func testRollback(t *testing.T, store repository.Store) {
	ctx := context.Background()
	dir := testkit.SeedDirectory(t, store.DirectoryWriter())
	boom := errors.New("boom")

	ticket := newTicket(dir, "No persiste", base)
	err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Tickets.Create(ctx, ticket); err != nil {
			return err
		}
		if err := repos.Audit.Append(ctx, auditRecord(ticket.ID, domain.AuditActionCreate, base)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Repositories().Tickets.GetByID(ctx, ticket.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	records, err := store.Repositories().Audit.ListByEntity(ctx, domain.EntityTicket, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	err = store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Tickets.Create(ctx, ticket)
	})
	require.NoError(t, err)
	_, err = store.Repositories().Tickets.GetByID(ctx, ticket.ID)
	assert.NoError(t, err)
}

func auditRecord(entityID string, action domain.AuditAction, at time.Time) *domain.AuditRecord {
	return &domain.AuditRecord{
		ID:            uuid.NewString(),
		EntityName:    domain.EntityTicket,
		EntityID:      entityID,
		Action:        action,
		ActorUsername: "admin",
		RecordedAt:    at,
	}
}

func testAudit(t *testing.T, store repository.Store) {
	ctx := context.Background()
	audit := store.Repositories().Audit

	field, oldValue, newValue := "status", "REQUESTED", "ASSIGNED"
	created := auditRecord("t-1", domain.AuditActionCreate, base)
	changed := auditRecord("t-1", domain.AuditActionStatusChange, base.Add(time.Minute))
	changed.Field, changed.OldValue, changed.NewValue = &field, &oldValue, &newValue
	other := auditRecord("t-2", domain.AuditActionCreate, base.Add(2*time.Minute))
	for _, record := range []*domain.AuditRecord{created, changed, other} {
		require.NoError(t, audit.Append(ctx, record))
	}

	trail, err := audit.ListByEntity(ctx, domain.EntityTicket, "t-1")
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, changed.ID, trail[0].ID)
	assert.Equal(t, created.ID, trail[1].ID)
	require.NotNil(t, trail[0].Field)
	assert.Equal(t, "status", *trail[0].Field)
	assert.Equal(t, "ASSIGNED", *trail[0].NewValue)
	assert.Nil(t, trail[1].Field)
	assert.True(t, trail[0].RecordedAt.Equal(base.Add(time.Minute)))

	recent, err := audit.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, other.ID, recent[0].ID)
	assert.Equal(t, changed.ID, recent[1].ID)

	none, err := audit.ListByEntity(ctx, "Hardware", "t-1")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testDirectory(t *testing.T, store repository.Store) {
	ctx := context.Background()
	dir := testkit.SeedDirectory(t, store.DirectoryWriter())
	reader := store.Repositories().Directory

	user, err := reader.UserByUsername(ctx, dir.Technician.Username)
	require.NoError(t, err)
	assert.Equal(t, dir.Technician.ID, user.ID)
	assert.Equal(t, domain.RoleTechnician, user.Role)
	assert.True(t, user.Live())

	disabled, err := reader.UserByID(ctx, dir.DisabledTech.ID)
	require.NoError(t, err)
	assert.False(t, disabled.Live())

	hw, err := reader.HardwareByID(ctx, dir.RetiredAsset.ID)
	require.NoError(t, err)
	assert.True(t, hw.Deleted)
	assert.Nil(t, hw.CourtID)

	court, err := reader.CourtByID(ctx, dir.InactiveCourt.ID)
	require.NoError(t, err)
	assert.False(t, court.Active)

	renamed := dir.Court
	renamed.Name = "Juzgado Civil Nro 1"
	require.NoError(t, store.DirectoryWriter().UpsertCourt(ctx, &renamed))
	court, err = reader.CourtByID(ctx, dir.Court.ID)
	require.NoError(t, err)
	assert.Equal(t, "Juzgado Civil Nro 1", court.Name)

	_, err = reader.UserByUsername(ctx, "nadie")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = reader.CourtByID(ctx, "404")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
