package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/slices-events/slices-api/internal/domain"
	"github.com/slices-events/slices-api/internal/repository"
)

var (
	ErrNotificationNotFound  = repository.ErrNotificationNotFound
	ErrInvitationResolved    = domain.ErrInvitationResolved
	ErrWrongNotificationType = errors.New("notification type does not support this action")
)

type NotificationRepository interface {
	Create(ctx context.Context, notification domain.Notification) (domain.Notification, error)
	CreateBatch(ctx context.Context, notifications []domain.Notification) error
	FindByID(ctx context.Context, id string) (domain.Notification, error)
	FindByRecipient(ctx context.Context, recipientID uint) ([]domain.Notification, error)
	FindByEvent(ctx context.Context, eventID uint, typ domain.NotificationType) ([]domain.Notification, error)
	Update(ctx context.Context, notification domain.Notification) (domain.Notification, error)
}

// InvitationEventRepository is the slice of event persistence the
// notification flows need to settle an invitation.
type InvitationEventRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Event, error)
	AddToRoster(ctx context.Context, eventID, entrantID uint) error
	RemoveFromWaitlist(ctx context.Context, eventID, entrantID uint) error
	ClearInvited(ctx context.Context, eventID, entrantID uint) error
	AddCancelled(ctx context.Context, eventID, entrantID uint) error
}

// NotificationService resolves invitation and not-selected records. An
// invitation settles exactly once: the first accept or decline wins and
// every later attempt fails with ErrInvitationResolved.
type NotificationService struct {
	repo   NotificationRepository
	events InvitationEventRepository
}

func NewNotificationService(repo NotificationRepository, events InvitationEventRepository) *NotificationService {
	return &NotificationService{repo: repo, events: events}
}

func (s *NotificationService) GetNotification(ctx context.Context, id string) (domain.Notification, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return domain.Notification{}, ErrNotificationNotFound
		}

		return domain.Notification{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return notification, nil
}

func (s *NotificationService) NotificationsForRecipient(ctx context.Context, recipientID uint) ([]domain.Notification, error) {
	notifications, err := s.repo.FindByRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByRecipient -> %w", err)
	}

	return notifications, nil
}

func (s *NotificationService) NotificationsForEvent(ctx context.Context, eventID uint, typ domain.NotificationType) ([]domain.Notification, error) {
	notifications, err := s.repo.FindByEvent(ctx, eventID, typ)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByEvent -> %w", err)
	}

	return notifications, nil
}

// AcceptInvitation promotes the recipient from the waitlist onto the
// roster. The roster write goes first so a full event rejects the accept
// before anything else changes.
func (s *NotificationService) AcceptInvitation(ctx context.Context, id string) error {
	notification, err := s.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	if notification.Type != domain.NotificationInvitation {
		return ErrWrongNotificationType
	}
	if err := notification.MarkAccepted(); err != nil {
		return err
	}

	event, err := s.events.FindByID(ctx, notification.EventID)
	if err != nil {
		return err
	}
	if err := event.Accept(notification.RecipientID); err != nil {
		return err
	}

	if err := s.events.AddToRoster(ctx, notification.EventID, notification.RecipientID); err != nil {
		return err
	}
	if err := s.events.RemoveFromWaitlist(ctx, notification.EventID, notification.RecipientID); err != nil &&
		!errors.Is(err, domain.ErrNotInWaitlist) {
		return fmt.Errorf("s.events.RemoveFromWaitlist -> %w", err)
	}
	if err := s.events.ClearInvited(ctx, notification.EventID, notification.RecipientID); err != nil &&
		!errors.Is(err, repository.ErrMembershipNotFound) {
		return fmt.Errorf("s.events.ClearInvited -> %w", err)
	}

	if _, err := s.repo.Update(ctx, notification); err != nil {
		return fmt.Errorf("s.repo.Update -> %w", err)
	}

	zap.L().Info("invitation accepted",
		zap.String("notification_id", notification.ID),
		zap.Uint("event_id", notification.EventID),
		zap.Uint("entrant_id", notification.RecipientID))

	return nil
}

// DeclineInvitation drops the recipient from the waitlist and records the
// cancellation, freeing the seat for a replacement draw.
func (s *NotificationService) DeclineInvitation(ctx context.Context, id string) error {
	notification, err := s.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	if notification.Type != domain.NotificationInvitation {
		return ErrWrongNotificationType
	}
	if err := notification.MarkDeclined(); err != nil {
		return err
	}

	event, err := s.events.FindByID(ctx, notification.EventID)
	if err != nil {
		return err
	}
	if err := event.Decline(notification.RecipientID); err != nil {
		return err
	}

	if err := s.events.RemoveFromWaitlist(ctx, notification.EventID, notification.RecipientID); err != nil &&
		!errors.Is(err, domain.ErrNotInWaitlist) {
		return fmt.Errorf("s.events.RemoveFromWaitlist -> %w", err)
	}
	if err := s.events.ClearInvited(ctx, notification.EventID, notification.RecipientID); err != nil &&
		!errors.Is(err, repository.ErrMembershipNotFound) {
		return fmt.Errorf("s.events.ClearInvited -> %w", err)
	}
	if err := s.events.AddCancelled(ctx, notification.EventID, notification.RecipientID); err != nil &&
		!errors.Is(err, domain.ErrDuplicateEntry) {
		return fmt.Errorf("s.events.AddCancelled -> %w", err)
	}

	if _, err := s.repo.Update(ctx, notification); err != nil {
		return fmt.Errorf("s.repo.Update -> %w", err)
	}

	zap.L().Info("invitation declined",
		zap.String("notification_id", notification.ID),
		zap.Uint("event_id", notification.EventID),
		zap.Uint("entrant_id", notification.RecipientID))

	return nil
}

// StayNotSelected records that a losing entrant wants to stay on the
// waitlist for replacement draws. Membership is untouched.
func (s *NotificationService) StayNotSelected(ctx context.Context, id string) error {
	notification, err := s.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	if notification.Type != domain.NotificationNotSelected {
		return ErrWrongNotificationType
	}
	if err := notification.MarkStayed(); err != nil {
		return err
	}

	if _, err := s.repo.Update(ctx, notification); err != nil {
		return fmt.Errorf("s.repo.Update -> %w", err)
	}

	return nil
}

// LeaveNotSelected takes a losing entrant off the waitlist at their own
// request.
func (s *NotificationService) LeaveNotSelected(ctx context.Context, id string) error {
	notification, err := s.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	if notification.Type != domain.NotificationNotSelected {
		return ErrWrongNotificationType
	}
	if err := notification.MarkDeclined(); err != nil {
		return err
	}

	if err := s.events.RemoveFromWaitlist(ctx, notification.EventID, notification.RecipientID); err != nil &&
		!errors.Is(err, domain.ErrNotInWaitlist) {
		return fmt.Errorf("s.events.RemoveFromWaitlist -> %w", err)
	}

	if _, err := s.repo.Update(ctx, notification); err != nil {
		return fmt.Errorf("s.repo.Update -> %w", err)
	}

	return nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	notification, err := s.GetNotification(ctx, id)
	if err != nil {
		return err
	}

	notification.Read = true
	if _, err := s.repo.Update(ctx, notification); err != nil {
		return fmt.Errorf("s.repo.Update -> %w", err)
	}

	return nil
}

// SendBulk fans one general announcement out to a list of recipients.
func (s *NotificationService) SendBulk(ctx context.Context, eventID, senderID uint, recipientIDs []uint, title, body string) error {
	if len(recipientIDs) == 0 {
		zap.L().Info("bulk notification skipped: no recipients", zap.Uint("event_id", eventID))
		return nil
	}

	notifications := make([]domain.Notification, len(recipientIDs))
	now := time.Now()
	for i, recipientID := range recipientIDs {
		notifications[i] = domain.Notification{
			Type:        domain.NotificationGeneral,
			RecipientID: recipientID,
			SenderID:    senderID,
			EventID:     eventID,
			Title:       title,
			Body:        body,
			Timestamp:   now,
		}
	}

	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		return fmt.Errorf("s.repo.CreateBatch -> %w", err)
	}

	zap.L().Info("bulk notification sent",
		zap.Uint("event_id", eventID),
		zap.Int("recipients", len(recipientIDs)))

	return nil
}
