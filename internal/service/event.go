package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/slices-events/slices-api/internal/domain"
	"github.com/slices-events/slices-api/internal/repository"
)

var (
	ErrEventNotFound      = repository.ErrEventNotFound
	ErrEventFull          = domain.ErrEventFull
	ErrWaitlistFull       = domain.ErrWaitlistFull
	ErrDuplicateEntry     = domain.ErrDuplicateEntry
	ErrNotInWaitlist      = domain.ErrNotInWaitlist
	ErrInvalidDates       = domain.ErrInvalidDates
	ErrNotInvited         = domain.ErrNotInvited
	ErrNotCancelled       = domain.ErrNotCancelled
	ErrEmptyWaitlist      = errors.New("no entrants in waitlist")
	ErrNoEligibleEntrants = errors.New("no eligible entrants in waitlist")
)

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) (*domain.Event, error)
	FindByID(ctx context.Context, id uint) (*domain.Event, error)
	FindAllFuture(ctx context.Context, now time.Time) ([]*domain.Event, error)
	FindByOrganizer(ctx context.Context, organizerID uint) ([]*domain.Event, error)
	FindForEntrant(ctx context.Context, entrantID uint) ([]*domain.Event, error)
	Delete(ctx context.Context, id uint) error
	RosterEntrants(ctx context.Context, eventID uint) ([]domain.Entrant, error)
	WaitlistEntrants(ctx context.Context, eventID uint) ([]domain.Entrant, error)
	AddToWaitlist(ctx context.Context, eventID, entrantID uint) error
	RemoveFromWaitlist(ctx context.Context, eventID, entrantID uint) error
	MarkInvited(ctx context.Context, eventID, entrantID uint) error
	ClearInvited(ctx context.Context, eventID, entrantID uint) error
	AddCancelled(ctx context.Context, eventID, entrantID uint) error
	RemoveCancelled(ctx context.Context, eventID, entrantID uint) error
}

type NotificationWriter interface {
	Create(ctx context.Context, notification domain.Notification) (domain.Notification, error)
	CreateBatch(ctx context.Context, notifications []domain.Notification) error
	DeleteByEvent(ctx context.Context, eventID uint) error
}

type EntrantReader interface {
	FindByID(ctx context.Context, id uint) (domain.Entrant, error)
}

// EventService owns the entrant/waitlist/lottery state machine for events:
// waitlist membership, lottery draws, invitation backfills, organizer
// cancellations and re-admissions.
type EventService struct {
	repo          EventRepository
	entrants      EntrantReader
	notifications NotificationWriter
	lottery       *domain.Lottery
}

func NewEventService(repo EventRepository, entrants EntrantReader, notifications NotificationWriter, lottery *domain.Lottery) *EventService {
	if lottery == nil {
		lottery = domain.NewLottery(nil)
	}

	return &EventService{
		repo:          repo,
		entrants:      entrants,
		notifications: notifications,
		lottery:       lottery,
	}
}

// CreateEvent validates the schedule once, at creation, and persists the
// event. The id comes from the store's sequence.
func (s *EventService) CreateEvent(ctx context.Context, info domain.EventInfo) (*domain.Event, error) {
	event, err := domain.NewEvent(info, time.Now())
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Create -> %w", err)
	}

	zap.L().Info("event created",
		zap.Uint("event_id", created.ID),
		zap.Int("capacity", created.Info.Capacity))

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (*domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}

		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

// FutureEvents lists events whose date lies after now.
func (s *EventService) FutureEvents(ctx context.Context) ([]*domain.Event, error) {
	events, err := s.repo.FindAllFuture(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAllFuture -> %w", err)
	}

	return events, nil
}

func (s *EventService) EventsForOrganizer(ctx context.Context, organizerID uint) ([]*domain.Event, error) {
	events, err := s.repo.FindByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByOrganizer -> %w", err)
	}

	return events, nil
}

// EventsForEntrant lists the events the entrant is enrolled in or
// waitlisted for.
func (s *EventService) EventsForEntrant(ctx context.Context, entrantID uint) ([]*domain.Event, error) {
	events, err := s.repo.FindForEntrant(ctx, entrantID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindForEntrant -> %w", err)
	}

	return events, nil
}

// DeleteEvent removes the event, its membership rows and its notifications.
func (s *EventService) DeleteEvent(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return ErrEventNotFound
		}

		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	if err := s.notifications.DeleteByEvent(ctx, id); err != nil {
		return fmt.Errorf("s.notifications.DeleteByEvent -> %w", err)
	}

	return nil
}

func (s *EventService) RosterEntrants(ctx context.Context, eventID uint) ([]domain.Entrant, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	return s.repo.RosterEntrants(ctx, eventID)
}

func (s *EventService) WaitlistEntrants(ctx context.Context, eventID uint) ([]domain.Entrant, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	return s.repo.WaitlistEntrants(ctx, eventID)
}

// EntrantStatus reports where the entrant currently sits in the event's
// state machine. Entrants with no history against the event report as
// not involved.
func (s *EventService) EntrantStatus(ctx context.Context, eventID, entrantID uint) (domain.EntrantStatus, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return "", err
	}
	if _, err := s.entrants.FindByID(ctx, entrantID); err != nil {
		return "", err
	}

	return event.Status(entrantID), nil
}

// JoinWaitlist puts an entrant on the event's waitlist. Joining again
// after a cancellation resets the entrant to Waitlisted.
func (s *EventService) JoinWaitlist(ctx context.Context, eventID, entrantID uint) error {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	entrant, err := s.entrants.FindByID(ctx, entrantID)
	if err != nil {
		return err
	}

	wasCancelled := event.Status(entrantID) == domain.StatusCancelled
	if err := event.JoinWaitlist(entrant); err != nil {
		return err
	}

	if err := s.repo.AddToWaitlist(ctx, eventID, entrantID); err != nil {
		return err
	}
	if wasCancelled {
		if err := s.repo.RemoveCancelled(ctx, eventID, entrantID); err != nil &&
			!errors.Is(err, repository.ErrMembershipNotFound) {
			return fmt.Errorf("s.repo.RemoveCancelled -> %w", err)
		}
	}

	return nil
}

// LeaveWaitlist removes the entrant from the waitlist, dropping any
// pending invited mark with it.
func (s *EventService) LeaveWaitlist(ctx context.Context, eventID, entrantID uint) error {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return err
	}

	if err := s.repo.RemoveFromWaitlist(ctx, eventID, entrantID); err != nil {
		return err
	}
	if err := s.repo.ClearInvited(ctx, eventID, entrantID); err != nil &&
		!errors.Is(err, repository.ErrMembershipNotFound) {
		return fmt.Errorf("s.repo.ClearInvited -> %w", err)
	}

	return nil
}

// DoLottery runs the initial draw over the waitlist for the event's
// remaining seats. Winners are marked invited and stay in the waitlist
// until they respond; every eligible non-winner receives a not-selected
// record.
func (s *EventService) DoLottery(ctx context.Context, eventID uint) error {
	return s.runLottery(ctx, eventID, false)
}

// DoReplacementLottery backfills seats vacated by declines and
// cancellations after registration closes. Same procedure as the initial
// draw; only the failure classification differs.
func (s *EventService) DoReplacementLottery(ctx context.Context, eventID uint) error {
	return s.runLottery(ctx, eventID, true)
}

func (s *EventService) runLottery(ctx context.Context, eventID uint, replacement bool) error {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}

	seats := event.RemainingSeats()
	if seats == 0 {
		zap.L().Warn("lottery skipped: no seats available", zap.Uint("event_id", eventID))
		return ErrEventFull
	}

	if !replacement && event.WaitlistLen() == 0 {
		zap.L().Warn("lottery skipped: empty waitlist", zap.Uint("event_id", eventID))
		return ErrEmptyWaitlist
	}

	eligible := event.EligibleForDraw()
	if len(eligible) == 0 {
		zap.L().Warn("lottery skipped: no eligible entrants", zap.Uint("event_id", eventID))
		return ErrNoEligibleEntrants
	}

	k := seats
	if len(eligible) < k {
		k = len(eligible)
	}

	winners, losers, err := s.lottery.Draw(eligible, k)
	if err != nil {
		return err
	}

	outcomes := s.inviteWinners(ctx, event, winners)
	var failed int
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		zap.L().Error("lottery partially failed",
			zap.Uint("event_id", eventID),
			zap.Int("winners", len(winners)),
			zap.Int("failed", failed))

		return &domain.PartialBatchError{Outcomes: outcomes}
	}

	if err := s.notifyLosers(ctx, event, losers); err != nil {
		return fmt.Errorf("s.notifyLosers -> %w", err)
	}

	zap.L().Info("lottery drawn",
		zap.Uint("event_id", eventID),
		zap.Bool("replacement", replacement),
		zap.Int("winners", len(winners)),
		zap.Int("remaining", len(losers)))

	return nil
}

// inviteWinners promotes each winner independently: one invited-row write
// plus one invitation record per winner, issued concurrently and joined
// before the aggregate outcome is decided. Failed winners are reported in
// the outcome slice; completed ones are not rolled back.
func (s *EventService) inviteWinners(ctx context.Context, event *domain.Event, winners []domain.Entrant) []domain.BatchOutcome {
	outcomes := make([]domain.BatchOutcome, len(winners))

	var wg sync.WaitGroup
	for i, winner := range winners {
		wg.Add(1)
		go func(i int, winner domain.Entrant) {
			defer wg.Done()

			outcomes[i] = domain.BatchOutcome{
				EntrantID: winner.ID,
				Err:       s.inviteWinner(ctx, event, winner),
			}
		}(i, winner)
	}
	wg.Wait()

	return outcomes
}

func (s *EventService) inviteWinner(ctx context.Context, event *domain.Event, winner domain.Entrant) error {
	if err := s.repo.MarkInvited(ctx, event.ID, winner.ID); err != nil {
		return fmt.Errorf("s.repo.MarkInvited -> %w", err)
	}

	_, err := s.notifications.Create(ctx, domain.Notification{
		Type:        domain.NotificationInvitation,
		RecipientID: winner.ID,
		SenderID:    event.Info.OrganizerID,
		EventID:     event.ID,
		Title:       "Congratulations!",
		Body:        fmt.Sprintf("You have won the lottery for %v!", event.Info.Name),
		Timestamp:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("s.notifications.Create -> %w", err)
	}

	return nil
}

func (s *EventService) notifyLosers(ctx context.Context, event *domain.Event, losers []domain.Entrant) error {
	if len(losers) == 0 {
		return nil
	}

	notifications := make([]domain.Notification, len(losers))
	for i, loser := range losers {
		notifications[i] = domain.Notification{
			Type:        domain.NotificationNotSelected,
			RecipientID: loser.ID,
			SenderID:    event.Info.OrganizerID,
			EventID:     event.ID,
			Title:       "Sorry!",
			Body:        fmt.Sprintf("You have lost the lottery for %v!", event.Info.Name),
			Timestamp:   time.Now(),
		}
	}

	return s.notifications.CreateBatch(ctx, notifications)
}

// CancelEntrant moves an invited-but-unresponsive entrant into the
// cancelled set. Ids that already accepted, or were never invited, fail
// with ErrNotInvited.
func (s *EventService) CancelEntrant(ctx context.Context, eventID, entrantID uint) error {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}

	return s.cancelInvited(ctx, event, entrantID)
}

// CancelEntrants cancels a batch of invited ids with one independent
// write sequence per id, joined before the aggregate outcome is decided.
func (s *EventService) CancelEntrants(ctx context.Context, eventID uint, entrantIDs []uint) error {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}

	outcomes := make([]domain.BatchOutcome, len(entrantIDs))

	var wg sync.WaitGroup
	for i, id := range entrantIDs {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()

			outcomes[i] = domain.BatchOutcome{
				EntrantID: id,
				Err:       s.cancelInvited(ctx, event, id),
			}
		}(i, id)
	}
	wg.Wait()

	for _, o := range outcomes {
		if o.Err != nil {
			return &domain.PartialBatchError{Outcomes: outcomes}
		}
	}

	return nil
}

func (s *EventService) cancelInvited(ctx context.Context, event *domain.Event, entrantID uint) error {
	if event.Status(entrantID) != domain.StatusInvited {
		return ErrNotInvited
	}

	if err := s.repo.ClearInvited(ctx, event.ID, entrantID); err != nil &&
		!errors.Is(err, repository.ErrMembershipNotFound) {
		return fmt.Errorf("s.repo.ClearInvited -> %w", err)
	}
	if err := s.repo.RemoveFromWaitlist(ctx, event.ID, entrantID); err != nil &&
		!errors.Is(err, domain.ErrNotInWaitlist) {
		return fmt.Errorf("s.repo.RemoveFromWaitlist -> %w", err)
	}
	if err := s.repo.AddCancelled(ctx, event.ID, entrantID); err != nil &&
		!errors.Is(err, domain.ErrDuplicateEntry) {
		return fmt.Errorf("s.repo.AddCancelled -> %w", err)
	}

	_, err := s.notifications.Create(ctx, domain.Notification{
		Type:        domain.NotificationGeneral,
		RecipientID: entrantID,
		SenderID:    event.Info.OrganizerID,
		EventID:     event.ID,
		Title:       "Invitation expired",
		Body:        fmt.Sprintf("Your invitation for %v has expired.", event.Info.Name),
		Timestamp:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("s.notifications.Create -> %w", err)
	}

	return nil
}

// ReAdmitEntrant puts a cancelled entrant back on the waitlist.
func (s *EventService) ReAdmitEntrant(ctx context.Context, eventID, entrantID uint) error {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	entrant, err := s.entrants.FindByID(ctx, entrantID)
	if err != nil {
		return err
	}

	if err := event.ReAdmit(entrant); err != nil {
		return err
	}

	if err := s.repo.RemoveCancelled(ctx, eventID, entrantID); err != nil &&
		!errors.Is(err, repository.ErrMembershipNotFound) {
		return fmt.Errorf("s.repo.RemoveCancelled -> %w", err)
	}
	if err := s.repo.AddToWaitlist(ctx, eventID, entrantID); err != nil {
		return err
	}

	return nil
}
