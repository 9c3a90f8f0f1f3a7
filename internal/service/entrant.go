package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/slices-events/slices-api/internal/domain"
	"github.com/slices-events/slices-api/internal/repository"
)

var (
	ErrEntrantNotFound    = repository.ErrEntrantNotFound
	ErrEntrantEmailExists = repository.ErrEntrantEmailExists
)

type EntrantRepository interface {
	Create(ctx context.Context, entrant domain.Entrant) (domain.Entrant, error)
	FindByID(ctx context.Context, id uint) (domain.Entrant, error)
	Update(ctx context.Context, entrant domain.Entrant) (domain.Entrant, error)
	Delete(ctx context.Context, id uint) error
}

type EntrantService struct {
	repo EntrantRepository
}

func NewEntrantService(repo EntrantRepository) *EntrantService {
	return &EntrantService{repo: repo}
}

func (s *EntrantService) CreateEntrant(ctx context.Context, entrant domain.Entrant) (domain.Entrant, error) {
	created, err := s.repo.Create(ctx, entrant)
	if err != nil {
		if errors.Is(err, repository.ErrEntrantEmailExists) {
			return domain.Entrant{}, ErrEntrantEmailExists
		}

		return domain.Entrant{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	zap.L().Info("entrant created", zap.Uint("entrant_id", created.ID))

	return created, nil
}

func (s *EntrantService) GetEntrant(ctx context.Context, id uint) (domain.Entrant, error) {
	entrant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEntrantNotFound) {
			return domain.Entrant{}, ErrEntrantNotFound
		}

		return domain.Entrant{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return entrant, nil
}

// UpdateProfile replaces the entrant's mutable profile fields. A cleared
// phone stays cleared.
func (s *EntrantService) UpdateProfile(ctx context.Context, entrant domain.Entrant) (domain.Entrant, error) {
	updated, err := s.repo.Update(ctx, entrant)
	if err != nil {
		if errors.Is(err, repository.ErrEntrantNotFound) {
			return domain.Entrant{}, ErrEntrantNotFound
		}
		if errors.Is(err, repository.ErrEntrantEmailExists) {
			return domain.Entrant{}, ErrEntrantEmailExists
		}

		return domain.Entrant{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// DeleteEntrant removes the entrant and every membership row referencing
// them, so no event is left holding a dangling id.
func (s *EntrantService) DeleteEntrant(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEntrantNotFound) {
			return ErrEntrantNotFound
		}

		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	zap.L().Info("entrant deleted", zap.Uint("entrant_id", id))

	return nil
}
