package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sojus/helpdesk/internal/api/dto"
	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/internal/lookup"
)

// References holds the display names resolved for a ticket's foreign keys.
type References struct {
	CourtName         *string
	RequesterName     *string
	TechnicianName    *string
	AssetInventoryTag *string
}

// Projector renders tickets and audit records for callers.
type Projector struct {
	loc *time.Location
}

// NewProjector renders timestamps in loc, or UTC when loc is nil.
func NewProjector(loc *time.Location) *Projector {
	if loc == nil {
		loc = time.UTC
	}
	return &Projector{loc: loc}
}

func (p *Projector) formatTime(t time.Time) string {
	return t.In(p.loc).Format(domain.DisplayTimeLayout)
}

func (p *Projector) formatOptionalTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := p.formatTime(*t)
	return &s
}

// Project maps a ticket and its resolved references to a TicketView.
func (p *Projector) Project(ticket *domain.Ticket, refs References) dto.TicketView {
	view := dto.TicketView{
		ID:                ticket.ID,
		Subject:           ticket.Subject,
		Description:       ticket.Description,
		Status:            string(ticket.Status),
		Priority:          string(ticket.Priority),
		CourtID:           ticket.CourtID,
		CourtName:         refs.CourtName,
		RequesterID:       ticket.RequesterID,
		RequesterName:     refs.RequesterName,
		TechnicianID:      ticket.TechnicianID,
		TechnicianName:    refs.TechnicianName,
		AssetID:           ticket.AssetID,
		AssetInventoryTag: refs.AssetInventoryTag,
		Channel:           ticket.Channel,
		CreatedAt:         p.formatTime(ticket.CreatedAt),
		UpdatedAt:         p.formatOptionalTime(&ticket.UpdatedAt),
		ClosedAt:          p.formatOptionalTime(ticket.ClosedAt),
	}
	if rendered := domain.RenderLog(ticket.Log, p.loc); rendered != "" {
		view.Log = &rendered
	}
	return view
}

// ProjectAudit maps an audit record to its view.
func (p *Projector) ProjectAudit(record *domain.AuditRecord) dto.AuditRecordView {
	return dto.AuditRecordView{
		ID:            record.ID,
		EntityName:    record.EntityName,
		EntityID:      record.EntityID,
		Action:        string(record.Action),
		ActorUsername: record.ActorUsername,
		Field:         record.Field,
		OldValue:      record.OldValue,
		NewValue:      record.NewValue,
		Timestamp:     p.formatTime(record.RecordedAt),
	}
}

// resolveReferences looks up display names; absent records leave the field nil. A failed
// lookup leaves its field nil too and is reported in the joined error along with the rest.
func resolveReferences(ctx context.Context, names lookup.NameResolver, ticket *domain.Ticket) (References, error) {
	var (
		refs References
		errs []error
	)
	targets := []struct {
		kind string
		id   *string
		dst  **string
	}{
		{lookup.KindCourt, ticket.CourtID, &refs.CourtName},
		{lookup.KindUser, &ticket.RequesterID, &refs.RequesterName},
		{lookup.KindUser, ticket.TechnicianID, &refs.TechnicianName},
		{lookup.KindHardware, ticket.AssetID, &refs.AssetInventoryTag},
	}
	for _, target := range targets {
		if target.id == nil || *target.id == "" {
			continue
		}
		name, ok, err := names.Name(ctx, target.kind, *target.id)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", target.kind, *target.id, err))
			continue
		}
		if ok {
			resolved := name
			*target.dst = &resolved
		}
	}
	return refs, errors.Join(errs...)
}
