package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sojus/helpdesk/internal/api/dto"
	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/internal/events"
	"github.com/sojus/helpdesk/internal/lookup"
	"github.com/sojus/helpdesk/internal/repository"
	"github.com/sojus/helpdesk/pkg/util/errorutil"
)

// Operation names used in logs and rejection metrics.
const (
	OpCreate       = "create"
	OpChangeStatus = "change_status"
	OpRetire       = "retire"
)

// RejectionRecorder counts rule rejections by operation and error code.
type RejectionRecorder interface {
	RecordRejection(operation, code string)
}

// TicketService runs the ticket lifecycle: creation, status changes, retirement and listings.
type TicketService struct {
	store      repository.Store
	names      lookup.NameResolver
	projector  *Projector
	dispatcher events.Dispatcher
	rejections RejectionRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service. Only Store is required.
type TicketDependencies struct {
	Store      repository.Store
	Names      lookup.NameResolver
	Projector  *Projector
	Dispatcher events.Dispatcher
	Rejections RejectionRecorder
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		store:      deps.Store,
		names:      deps.Names,
		projector:  deps.Projector,
		dispatcher: deps.Dispatcher,
		rejections: deps.Rejections,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if s.names == nil {
		s.names = lookup.NewDirectoryNames(deps.Store.Repositories().Directory)
	}
	if s.projector == nil {
		s.projector = NewProjector(time.UTC)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// Create files a new ticket in REQUESTED status on behalf of requester.
func (s *TicketService) Create(ctx context.Context, requester domain.Actor, cmd CreateTicketCommand) (*dto.TicketView, error) {
	cmd.normalize()
	if err := validateCommand(&cmd); err != nil {
		return nil, s.reject(OpCreate, "", err)
	}

	requested := domain.TicketPriorityMedium
	if cmd.Priority != "" {
		parsed, ok := domain.ParseTicketPriority(cmd.Priority)
		if !ok {
			return nil, s.reject(OpCreate, "", errorutil.NewValidationError("unknown priority "+cmd.Priority,
				map[string]any{"priority": cmd.Priority}))
		}
		requested = parsed
	}
	channel := cmd.Channel
	if channel == "" {
		channel = domain.DefaultChannel
	}

	now := s.now()
	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		Subject:     cmd.Subject,
		Description: cmd.Description,
		Status:      domain.TicketStatusRequested,
		RequesterID: requester.UserID,
		Channel:     channel,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var escalated bool
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		gateway := lookup.NewGateway(repos.Directory)
		if cmd.CourtID != nil {
			court, err := gateway.ResolveCourt(ctx, *cmd.CourtID)
			if err != nil {
				return err
			}
			ticket.CourtID = &court.ID
		}

		var asset *domain.Hardware
		if cmd.AssetID != nil {
			hw, err := gateway.ResolveAsset(ctx, *cmd.AssetID)
			if err != nil {
				return err
			}
			if err := repos.Tickets.LockAsset(ctx, hw.ID); err != nil {
				return err
			}
			busy, err := repos.Tickets.ExistsActiveForAsset(ctx, hw.ID)
			if err != nil {
				return err
			}
			if busy {
				return errorutil.NewAssetBusy(hw.ID, hw.InventoryTag)
			}
			asset = hw
			ticket.AssetID = &hw.ID
		}

		ticket.Priority, escalated = EscalatePriority(ticket.Subject, requested)

		if err := repos.Tickets.Create(ctx, ticket); err != nil {
			if errors.Is(err, repository.ErrActiveAssetConflict) && asset != nil {
				return errorutil.NewAssetBusy(asset.ID, asset.InventoryTag)
			}
			return err
		}
		return repos.Audit.Append(ctx, newAuditRecord(ticket.ID, domain.AuditActionCreate, requester, now,
			nil, nil, stringPtr("Ticket created: "+ticket.Subject)))
	})
	if err != nil {
		return nil, s.reject(OpCreate, ticket.ID, err)
	}

	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("priority", string(ticket.Priority)),
		zap.Bool("escalated", escalated),
		zap.String("actor", requester.Username),
	)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Status:   ticket.Status,
		Actor:    events.ActorFrom(requester),
		Payload: events.TicketCreatedPayload{
			Priority:  ticket.Priority,
			Escalated: escalated,
			CourtID:   ticket.CourtID,
			AssetID:   ticket.AssetID,
			Channel:   ticket.Channel,
		},
	})
	return s.project(ctx, ticket), nil
}

// ChangeStatus moves a ticket along the transition graph, applying the assignment, closing
// and work-log rules.
func (s *TicketService) ChangeStatus(ctx context.Context, actor domain.Actor, cmd ChangeStatusCommand) (*dto.TicketView, error) {
	if actor.Role != domain.RoleTechnician && actor.Role != domain.RoleAdministrator {
		return nil, s.reject(OpChangeStatus, cmd.TicketID,
			errorutil.NewForbidden("only technicians and administrators can change ticket status"))
	}
	cmd.normalize()
	if err := validateCommand(&cmd); err != nil {
		return nil, s.reject(OpChangeStatus, cmd.TicketID, err)
	}

	now := s.now()
	var (
		ticket    *domain.Ticket
		oldStatus domain.TicketStatus
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := repos.Tickets.GetForUpdate(ctx, cmd.TicketID)
		if err != nil {
			return ticketNotFound(err, cmd.TicketID)
		}

		newStatus, ok := domain.ParseTicketStatus(cmd.NewStatus)
		if !ok {
			return errorutil.NewValidationError("unknown status "+cmd.NewStatus,
				map[string]any{"status": cmd.NewStatus})
		}
		if err := checkTransition(current.Status, newStatus); err != nil {
			return err
		}

		if cmd.TechnicianID != nil {
			technician, err := lookup.NewGateway(repos.Directory).ResolveUser(ctx, *cmd.TechnicianID)
			if err != nil {
				return err
			}
			if err := requireTechnician(technician); err != nil {
				return err
			}
			current.TechnicianID = &technician.ID
		}

		oldStatus = current.Status
		current.Status = newStatus
		markClosed(current, now)
		if cmd.Comment != nil {
			current.Log = domain.AppendLog(current.Log, domain.LogEntry{
				At:      now,
				Author:  actor.Username,
				Comment: *cmd.Comment,
			})
		}
		current.UpdatedAt = now

		if err := repos.Tickets.Update(ctx, current); err != nil {
			return ticketNotFound(err, cmd.TicketID)
		}
		ticket = current
		return repos.Audit.Append(ctx, newAuditRecord(current.ID, domain.AuditActionStatusChange, actor, now,
			stringPtr("status"), stringPtr(string(oldStatus)), stringPtr(string(newStatus))))
	})
	if err != nil {
		return nil, s.reject(OpChangeStatus, cmd.TicketID, err)
	}

	s.logger.Info("ticket status changed",
		zap.String("ticket_id", ticket.ID),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(ticket.Status)),
		zap.String("actor", actor.Username),
	)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Status:   ticket.Status,
		Actor:    events.ActorFrom(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus:    oldStatus,
			NewStatus:    ticket.Status,
			TechnicianID: ticket.TechnicianID,
			Commented:    cmd.Comment != nil,
		},
	})
	return s.project(ctx, ticket), nil
}

// Retire soft-deletes a ticket. Retiring a missing or already retired ticket is NotFound.
func (s *TicketService) Retire(ctx context.Context, actor domain.Actor, cmd RetireCommand) error {
	if actor.Role != domain.RoleAdministrator {
		return s.reject(OpRetire, cmd.TicketID, errorutil.NewForbidden("only administrators can delete tickets"))
	}
	if err := validateCommand(&cmd); err != nil {
		return s.reject(OpRetire, cmd.TicketID, err)
	}

	now := s.now()
	var status domain.TicketStatus
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ticket, err := repos.Tickets.GetForUpdate(ctx, cmd.TicketID)
		if err != nil {
			return ticketNotFound(err, cmd.TicketID)
		}
		ticket.Deleted = true
		ticket.UpdatedAt = now
		if err := repos.Tickets.Update(ctx, ticket); err != nil {
			return ticketNotFound(err, cmd.TicketID)
		}
		status = ticket.Status
		return repos.Audit.Append(ctx, newAuditRecord(ticket.ID, domain.AuditActionDelete, actor, now,
			nil, stringPtr("active"), stringPtr("deleted")))
	})
	if err != nil {
		return s.reject(OpRetire, cmd.TicketID, err)
	}

	s.logger.Info("ticket retired", zap.String("ticket_id", cmd.TicketID), zap.String("actor", actor.Username))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketRetired,
		TicketID: cmd.TicketID,
		Status:   status,
		Actor:    events.ActorFrom(actor),
	})
	return nil
}

// Get returns the projection of a live ticket.
func (s *TicketService) Get(ctx context.Context, id string) (*dto.TicketView, error) {
	ticket, err := s.store.Repositories().Tickets.GetByID(ctx, id)
	if err != nil {
		return nil, ticketNotFound(err, id)
	}
	return s.project(ctx, ticket), nil
}

// ListForActor returns the tickets visible to actor, narrowed by filter.
func (s *TicketService) ListForActor(ctx context.Context, actor domain.Actor, filter TicketListFilter) ([]dto.TicketView, error) {
	repoFilter := repository.TicketFilter{
		CourtID:    filter.CourtID,
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if err := applyActorScope(&repoFilter, actor); err != nil {
		return nil, err
	}
	return s.list(ctx, repoFilter)
}

// ListOwnedByActor returns every ticket tied to actor: assigned ones for technicians,
// requested ones for operators, all of them for administrators.
func (s *TicketService) ListOwnedByActor(ctx context.Context, actor domain.Actor) ([]dto.TicketView, error) {
	var repoFilter repository.TicketFilter
	if err := applyActorScope(&repoFilter, actor); err != nil {
		return nil, err
	}
	return s.list(ctx, repoFilter)
}

func (s *TicketService) list(ctx context.Context, filter repository.TicketFilter) ([]dto.TicketView, error) {
	tickets, err := s.store.Repositories().Tickets.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]dto.TicketView, 0, len(tickets))
	for i := range tickets {
		views = append(views, *s.project(ctx, &tickets[i]))
	}
	return views, nil
}

// applyActorScope restricts a listing to what the actor's role may see.
func applyActorScope(filter *repository.TicketFilter, actor domain.Actor) error {
	switch actor.Role {
	case domain.RoleAdministrator:
	case domain.RoleTechnician:
		id := actor.UserID
		filter.TechnicianID = &id
	case domain.RoleOperator:
		id := actor.UserID
		filter.RequesterID = &id
	default:
		return errorutil.NewForbidden("unknown role " + string(actor.Role))
	}
	return nil
}

// project renders a stored ticket. Name lookup failures leave the affected names nil since
// the ticket itself is already committed.
func (s *TicketService) project(ctx context.Context, ticket *domain.Ticket) *dto.TicketView {
	refs, err := resolveReferences(ctx, s.names, ticket)
	if err != nil {
		s.logger.Warn("ticket references unresolved",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err),
		)
	}
	view := s.projector.Project(ticket, refs)
	return &view
}

// reject logs and counts a failed operation, wrapping unexpected failures as internal errors.
func (s *TicketService) reject(operation, ticketID string, err error) error {
	domainErr := errorutil.ToDomainError(err)
	if domainErr.Code == errorutil.CodeInternal {
		s.logger.Error("ticket operation failed",
			zap.String("operation", operation),
			zap.String("ticket_id", ticketID),
			zap.Error(err),
		)
	} else {
		s.logger.Info("ticket operation rejected",
			zap.String("operation", operation),
			zap.String("ticket_id", ticketID),
			zap.String("code", domainErr.Code),
			zap.String("reason", domainErr.Message),
		)
	}
	if s.rejections != nil {
		s.rejections.RecordRejection(operation, domainErr.Code)
	}
	return domainErr
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

func ticketNotFound(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errorutil.NewNotFound(lookup.EntityTicket, id)
	}
	return err
}

func newAuditRecord(ticketID string, action domain.AuditAction, actor domain.Actor, at time.Time, field, oldValue, newValue *string) *domain.AuditRecord {
	return &domain.AuditRecord{
		ID:            uuid.NewString(),
		EntityName:    domain.EntityTicket,
		EntityID:      ticketID,
		Action:        action,
		ActorUsername: actor.Username,
		Field:         field,
		OldValue:      oldValue,
		NewValue:      newValue,
		RecordedAt:    at,
	}
}

func stringPtr(value string) *string {
	return &value
}
