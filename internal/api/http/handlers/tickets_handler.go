package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sojus/helpdesk/internal/api/dto"
	"github.com/sojus/helpdesk/internal/auth"
	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/internal/service"
	apperrors "github.com/sojus/helpdesk/pkg/util/errorutil"
)

// maxPageSize bounds page_size on ticket listings.
const maxPageSize = 1000

// TicketsHandler exposes the ticket lifecycle over HTTP.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	view, err := h.service.Create(c.UserContext(), actor, service.CreateTicketCommand{
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
		CourtID:     req.CourtID,
		AssetID:     req.AssetID,
		Channel:     req.Channel,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": view})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	views, err := h.service.ListForActor(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{Items: views, Count: len(views)}})
}

// ListMyTickets GET /api/tickets/my.
func (h *TicketsHandler) ListMyTickets(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	views, err := h.service.ListOwnedByActor(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{Items: views, Count: len(views)}})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	view, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

// ChangeStatus PATCH /api/tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	view, err := h.service.ChangeStatus(c.UserContext(), actor, service.ChangeStatusCommand{
		TicketID:     c.Params("id"),
		NewStatus:    req.Status,
		TechnicianID: req.TechnicianID,
		Comment:      req.Comment,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Retire(c.UserContext(), actor, service.RetireCommand{TicketID: c.Params("id")}); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketListFilter, error) {
	filter := service.TicketListFilter{}
	for _, part := range splitList(c.Query("status")) {
		status, ok := domain.ParseTicketStatus(part)
		if !ok {
			return filter, apperrors.NewValidationError("unknown status "+part, map[string]any{"status": part})
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, part := range splitList(c.Query("priority")) {
		priority, ok := domain.ParseTicketPriority(part)
		if !ok {
			return filter, apperrors.NewValidationError("unknown priority "+part, map[string]any{"priority": part})
		}
		filter.Priorities = append(filter.Priorities, priority)
	}
	if court := strings.TrimSpace(c.Query("court_id")); court != "" {
		filter.CourtID = &court
	}
	pageSize := parseInt(c.Query("page_size"), 0)
	if pageSize > 0 {
		page := parseInt(c.Query("page"), 1)
		if page < 1 {
			page = 1
		}
		pageSize = min(pageSize, maxPageSize)
		if page-1 > math.MaxInt32/pageSize {
			return filter, apperrors.NewValidationError("page out of range", map[string]any{"page": c.Query("page")})
		}
		filter.Limit = pageSize
		filter.Offset = (page - 1) * pageSize
	}
	return filter, nil
}

func splitList(val string) []string {
	var parts []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}
