package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/slices-events/slices-api/internal/domain"
	"github.com/slices-events/slices-api/internal/repository/dao"
)

var (
	ErrEventNotFound       = dao.ErrEventNotFound
	ErrEventFull           = dao.ErrEventFull
	ErrWaitlistFull        = dao.ErrWaitlistFull
	ErrDuplicateMembership = dao.ErrDuplicateMembership
	ErrNotInWaitlist       = dao.ErrNotInWaitlist
	ErrMembershipNotFound  = dao.ErrMembershipNotFound
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindAllFuture(ctx context.Context, now time.Time) ([]dao.Event, error)
	FindByOrganizer(ctx context.Context, organizerID uint) ([]dao.Event, error)
	FindForEntrant(ctx context.Context, entrantID uint) ([]dao.Event, error)
	Delete(ctx context.Context, id uint) error
	RosterEntrants(ctx context.Context, eventID uint) ([]dao.Entrant, error)
	WaitlistEntrants(ctx context.Context, eventID uint) ([]dao.Entrant, error)
	InvitedIDs(ctx context.Context, eventID uint) ([]uint, error)
	CancelledIDs(ctx context.Context, eventID uint) ([]uint, error)
	AddToRoster(ctx context.Context, eventID, entrantID uint) error
	RemoveFromRoster(ctx context.Context, eventID, entrantID uint) error
	AddToWaitlist(ctx context.Context, eventID, entrantID uint) error
	RemoveFromWaitlist(ctx context.Context, eventID, entrantID uint) error
	MarkInvited(ctx context.Context, eventID, entrantID uint) error
	ClearInvited(ctx context.Context, eventID, entrantID uint) error
	AddCancelled(ctx context.Context, eventID, entrantID uint) error
	RemoveCancelled(ctx context.Context, eventID, entrantID uint) error
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	created, err := r.dao.Insert(ctx, domainToDaoEvent(event))
	if err != nil {
		return nil, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return domain.RestoreEvent(created.ID, daoToDomainEventInfo(created), domain.Memberships{}), nil
}

// FindByID returns the event hydrated with its roster, waitlist and
// invited/cancelled sets.
func (r *EventRepository) FindByID(ctx context.Context, id uint) (*domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	roster, err := r.dao.RosterEntrants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("r.dao.RosterEntrants -> %w", err)
	}
	waitlist, err := r.dao.WaitlistEntrants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("r.dao.WaitlistEntrants -> %w", err)
	}
	invited, err := r.dao.InvitedIDs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("r.dao.InvitedIDs -> %w", err)
	}
	cancelled, err := r.dao.CancelledIDs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CancelledIDs -> %w", err)
	}

	return domain.RestoreEvent(found.ID, daoToDomainEventInfo(found), domain.Memberships{
		Roster:       daosToDomainEntrants(roster),
		Waitlist:     daosToDomainEntrants(waitlist),
		InvitedIDs:   invited,
		CancelledIDs: cancelled,
	}), nil
}

func (r *EventRepository) FindAllFuture(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	events, err := r.dao.FindAllFuture(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAllFuture -> %w", err)
	}

	return daosToDomainEvents(events), nil
}

func (r *EventRepository) FindByOrganizer(ctx context.Context, organizerID uint) ([]*domain.Event, error) {
	events, err := r.dao.FindByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByOrganizer -> %w", err)
	}

	return daosToDomainEvents(events), nil
}

func (r *EventRepository) FindForEntrant(ctx context.Context, entrantID uint) ([]*domain.Event, error) {
	events, err := r.dao.FindForEntrant(ctx, entrantID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindForEntrant -> %w", err)
	}

	return daosToDomainEvents(events), nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	return r.dao.Delete(ctx, id)
}

func (r *EventRepository) RosterEntrants(ctx context.Context, eventID uint) ([]domain.Entrant, error) {
	entrants, err := r.dao.RosterEntrants(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.RosterEntrants -> %w", err)
	}

	return daosToDomainEntrants(entrants), nil
}

func (r *EventRepository) WaitlistEntrants(ctx context.Context, eventID uint) ([]domain.Entrant, error) {
	entrants, err := r.dao.WaitlistEntrants(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.WaitlistEntrants -> %w", err)
	}

	return daosToDomainEntrants(entrants), nil
}

func (r *EventRepository) AddToRoster(ctx context.Context, eventID, entrantID uint) error {
	return r.dao.AddToRoster(ctx, eventID, entrantID)
}

func (r *EventRepository) RemoveFromRoster(ctx context.Context, eventID, entrantID uint) error {
	return r.dao.RemoveFromRoster(ctx, eventID, entrantID)
}

func (r *EventRepository) AddToWaitlist(ctx context.Context, eventID, entrantID uint) error {
	return r.dao.AddToWaitlist(ctx, eventID, entrantID)
}

func (r *EventRepository) RemoveFromWaitlist(ctx context.Context, eventID, entrantID uint) error {
	return r.dao.RemoveFromWaitlist(ctx, eventID, entrantID)
}

func (r *EventRepository) MarkInvited(ctx context.Context, eventID, entrantID uint) error {
	return r.dao.MarkInvited(ctx, eventID, entrantID)
}

func (r *EventRepository) ClearInvited(ctx context.Context, eventID, entrantID uint) error {
	return r.dao.ClearInvited(ctx, eventID, entrantID)
}

func (r *EventRepository) AddCancelled(ctx context.Context, eventID, entrantID uint) error {
	return r.dao.AddCancelled(ctx, eventID, entrantID)
}

func (r *EventRepository) RemoveCancelled(ctx context.Context, eventID, entrantID uint) error {
	return r.dao.RemoveCancelled(ctx, eventID, entrantID)
}

func domainToDaoEvent(e *domain.Event) dao.Event {
	return dao.Event{
		ID:                   e.ID,
		Name:                 e.Info.Name,
		Description:          e.Info.Description,
		Location:             e.Info.Location,
		EventDate:            e.Info.EventDate,
		RegistrationDeadline: e.Info.RegistrationDeadline,
		Capacity:             e.Info.Capacity,
		WaitlistCapacity:     e.Info.WaitlistCapacity,
		OrganizerID:          e.Info.OrganizerID,
	}
}

func daoToDomainEventInfo(e dao.Event) domain.EventInfo {
	return domain.EventInfo{
		Name:                 e.Name,
		Description:          e.Description,
		Location:             e.Location,
		EventDate:            e.EventDate,
		RegistrationDeadline: e.RegistrationDeadline,
		Capacity:             e.Capacity,
		WaitlistCapacity:     e.WaitlistCapacity,
		OrganizerID:          e.OrganizerID,
	}
}

func daosToDomainEvents(events []dao.Event) []*domain.Event {
	out := make([]*domain.Event, len(events))
	for i, e := range events {
		out[i] = domain.RestoreEvent(e.ID, daoToDomainEventInfo(e), domain.Memberships{})
	}

	return out
}
