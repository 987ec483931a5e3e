package service

import (
	"context"
	"strings"

	"github.com/sojus/helpdesk/internal/api/dto"
	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/internal/repository"
	"github.com/sojus/helpdesk/pkg/util/errorutil"
)

// DefaultAuditLimit caps Recent when the caller passes no limit.
const DefaultAuditLimit = 100

const maxAuditLimit = 1000

// AuditService exposes the read side of the audit trail.
type AuditService struct {
	audit     repository.AuditRepository
	projector *Projector
}

func NewAuditService(audit repository.AuditRepository, projector *Projector) *AuditService {
	if projector == nil {
		projector = NewProjector(nil)
	}
	return &AuditService{audit: audit, projector: projector}
}

// Recent returns the newest audit records first.
func (s *AuditService) Recent(ctx context.Context, limit int) ([]dto.AuditRecordView, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	records, err := s.audit.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.project(records), nil
}

// ForEntity returns the trail of one entity, newest first.
func (s *AuditService) ForEntity(ctx context.Context, entityName, entityID string) ([]dto.AuditRecordView, error) {
	entityName = strings.TrimSpace(entityName)
	entityID = strings.TrimSpace(entityID)
	if entityName == "" || entityID == "" {
		return nil, errorutil.NewValidationError("entity name and id are required", nil)
	}
	records, err := s.audit.ListByEntity(ctx, entityName, entityID)
	if err != nil {
		return nil, err
	}
	return s.project(records), nil
}

func (s *AuditService) project(records []domain.AuditRecord) []dto.AuditRecordView {
	views := make([]dto.AuditRecordView, 0, len(records))
	for i := range records {
		views = append(views, s.projector.ProjectAudit(&records[i]))
	}
	return views
}
