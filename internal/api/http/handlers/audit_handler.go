package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sojus/helpdesk/internal/api/dto"
	"github.com/sojus/helpdesk/internal/service"
)

// AuditHandler serves the audit trail to administrators.
type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{service: auditService}
}

// Recent GET /api/audit?limit=N.
func (h *AuditHandler) Recent(c *fiber.Ctx) error {
	views, err := h.service.Recent(c.UserContext(), parseInt(c.Query("limit"), service.DefaultAuditLimit))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuditListResponse{Items: views, Count: len(views)}})
}

// ForEntity GET /api/audit/:entity/:id.
func (h *AuditHandler) ForEntity(c *fiber.Ctx) error {
	views, err := h.service.ForEntity(c.UserContext(), c.Params("entity"), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuditListResponse{Items: views, Count: len(views)}})
}
