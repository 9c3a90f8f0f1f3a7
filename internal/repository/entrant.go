package repository

import (
	"context"
	"fmt"

	"github.com/slices-events/slices-api/internal/domain"
	"github.com/slices-events/slices-api/internal/repository/dao"
)

var (
	ErrEntrantEmailExists = dao.ErrEntrantEmailExists
	ErrEntrantNotFound    = dao.ErrEntrantNotFound
)

type EntrantDAO interface {
	Insert(ctx context.Context, entrant dao.Entrant) (dao.Entrant, error)
	FindByID(ctx context.Context, id uint) (dao.Entrant, error)
	FindByIDs(ctx context.Context, ids []uint) ([]dao.Entrant, error)
	Update(ctx context.Context, entrant dao.Entrant) (dao.Entrant, error)
	Delete(ctx context.Context, id uint) error
}

type EntrantRepository struct {
	dao EntrantDAO
}

func NewEntrantRepository(dao EntrantDAO) *EntrantRepository {
	return &EntrantRepository{
		dao: dao,
	}
}

func (r *EntrantRepository) Create(ctx context.Context, entrant domain.Entrant) (domain.Entrant, error) {
	created, err := r.dao.Insert(ctx, domainToDaoEntrant(entrant))
	if err != nil {
		return domain.Entrant{}, err
	}

	return daoToDomainEntrant(created), nil
}

func (r *EntrantRepository) FindByID(ctx context.Context, id uint) (domain.Entrant, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Entrant{}, err
	}

	return daoToDomainEntrant(found), nil
}

func (r *EntrantRepository) Update(ctx context.Context, entrant domain.Entrant) (domain.Entrant, error) {
	updated, err := r.dao.Update(ctx, domainToDaoEntrant(entrant))
	if err != nil {
		return domain.Entrant{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return daoToDomainEntrant(updated), nil
}

// Delete removes the entrant and cascades removal from every event
// membership set it belongs to.
func (r *EntrantRepository) Delete(ctx context.Context, id uint) error {
	return r.dao.Delete(ctx, id)
}

func domainToDaoEntrant(e domain.Entrant) dao.Entrant {
	return dao.Entrant{
		ID:                e.ID,
		Name:              e.Name,
		Email:             e.Email,
		Phone:             e.Phone,
		NotificationOptIn: e.NotificationOptIn,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func daoToDomainEntrant(e dao.Entrant) domain.Entrant {
	return domain.Entrant{
		ID:                e.ID,
		Name:              e.Name,
		Email:             e.Email,
		Phone:             e.Phone,
		NotificationOptIn: e.NotificationOptIn,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func daosToDomainEntrants(entrants []dao.Entrant) []domain.Entrant {
	out := make([]domain.Entrant, len(entrants))
	for i, e := range entrants {
		out[i] = daoToDomainEntrant(e)
	}

	return out
}
