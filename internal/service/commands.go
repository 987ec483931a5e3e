package service

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/pkg/util/errorutil"
)

// CreateTicketCommand carries the caller's input for a new ticket.
type CreateTicketCommand struct {
	Subject     string  `json:"subject" validate:"required,max=200"`
	Description string  `json:"description" validate:"required"`
	Priority    string  `json:"priority"`
	CourtID     *string `json:"court_id"`
	AssetID     *string `json:"asset_id"`
	Channel     string  `json:"channel" validate:"max=50"`
}

// ChangeStatusCommand moves a ticket along the lifecycle, optionally assigning a technician
// and appending a work-log comment.
type ChangeStatusCommand struct {
	TicketID     string  `json:"ticket_id" validate:"required"`
	NewStatus    string  `json:"status" validate:"required"`
	TechnicianID *string `json:"technician_id"`
	Comment      *string `json:"comment" validate:"omitempty,singleline"`
}

type RetireCommand struct {
	TicketID string `json:"ticket_id" validate:"required"`
}

// TicketListFilter narrows ListForActor results on top of role scoping.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	CourtID    *string
	Limit      int
	Offset     int
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	// Work-log comments render one per line, so a comment must not start a line of its own.
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	return v
}

func validateCommand(cmd any) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errorutil.NewValidationError(err.Error(), nil)
	}
	details := make(map[string]any, len(verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = validationMessage(fe)
		fields = append(fields, fe.Field())
	}
	return errorutil.NewValidationError("invalid input: "+strings.Join(fields, ", "), details)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "singleline":
		return "must not contain line breaks"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func (c *CreateTicketCommand) normalize() {
	c.Subject = strings.TrimSpace(c.Subject)
	c.Description = strings.TrimSpace(c.Description)
	c.Channel = strings.TrimSpace(c.Channel)
	c.CourtID = trimOptional(c.CourtID)
	c.AssetID = trimOptional(c.AssetID)
}

func (c *ChangeStatusCommand) normalize() {
	c.TicketID = strings.TrimSpace(c.TicketID)
	c.NewStatus = strings.TrimSpace(c.NewStatus)
	c.TechnicianID = trimOptional(c.TechnicianID)
	c.Comment = trimOptional(c.Comment)
}

// trimOptional treats blank optional strings as absent.
func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
