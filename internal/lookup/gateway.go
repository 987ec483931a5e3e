// Package lookup resolves the externally owned court, hardware and user records tickets refer to.
package lookup

import (
	"context"
	"errors"

	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/internal/repository"
	"github.com/sojus/helpdesk/pkg/util/errorutil"
)

// Entity names used in NotFound errors.
const (
	EntityCourt    = "Court"
	EntityHardware = "Hardware"
	EntityUser     = "User"
	EntityTicket   = "Ticket"
)

// Gateway returns live directory records and fails with NotFound for missing or retired ones.
type Gateway struct {
	dir repository.DirectoryRepository
}

// NewGateway builds a gateway over dir, which may be bound to a transaction.
func NewGateway(dir repository.DirectoryRepository) *Gateway {
	return &Gateway{dir: dir}
}

// ResolveCourt treats inactive courts as deleted.
func (g *Gateway) ResolveCourt(ctx context.Context, id string) (*domain.Court, error) {
	court, err := g.dir.CourtByID(ctx, id)
	if err != nil {
		return nil, missing(err, EntityCourt, id)
	}
	if !court.Active {
		return nil, errorutil.NewNotFound(EntityCourt, id)
	}
	return court, nil
}

func (g *Gateway) ResolveAsset(ctx context.Context, id string) (*domain.Hardware, error) {
	hw, err := g.dir.HardwareByID(ctx, id)
	if err != nil {
		return nil, missing(err, EntityHardware, id)
	}
	if hw.Deleted {
		return nil, errorutil.NewNotFound(EntityHardware, id)
	}
	return hw, nil
}

func (g *Gateway) ResolveUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := g.dir.UserByID(ctx, id)
	if err != nil {
		return nil, missing(err, EntityUser, id)
	}
	if !user.Live() {
		return nil, errorutil.NewNotFound(EntityUser, id)
	}
	return user, nil
}

func missing(err error, entity, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errorutil.NewNotFound(entity, id)
	}
	return err
}
