package repository

import (
	"context"
	"fmt"

	"github.com/slices-events/slices-api/internal/domain"
	"github.com/slices-events/slices-api/internal/repository/dao"
)

var ErrNotificationNotFound = dao.ErrNotificationNotFound

type NotificationDAO interface {
	Insert(ctx context.Context, notification dao.Notification) (dao.Notification, error)
	InsertBatch(ctx context.Context, notifications []dao.Notification) error
	FindByID(ctx context.Context, id string) (dao.Notification, error)
	FindByRecipient(ctx context.Context, recipientID uint) ([]dao.Notification, error)
	FindByEvent(ctx context.Context, eventID uint, notificationType string) ([]dao.Notification, error)
	Update(ctx context.Context, notification dao.Notification) (dao.Notification, error)
	Delete(ctx context.Context, id string) error
	DeleteByEvent(ctx context.Context, eventID uint) error
}

type NotificationRepository struct {
	dao NotificationDAO
}

func NewNotificationRepository(dao NotificationDAO) *NotificationRepository {
	return &NotificationRepository{
		dao: dao,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, notification domain.Notification) (domain.Notification, error) {
	created, err := r.dao.Insert(ctx, domainToDaoNotification(notification))
	if err != nil {
		return domain.Notification{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return daoToDomainNotification(created), nil
}

func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []domain.Notification) error {
	batch := make([]dao.Notification, len(notifications))
	for i, n := range notifications {
		batch[i] = domainToDaoNotification(n)
	}

	if err := r.dao.InsertBatch(ctx, batch); err != nil {
		return fmt.Errorf("r.dao.InsertBatch -> %w", err)
	}

	return nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (domain.Notification, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Notification{}, err
	}

	return daoToDomainNotification(found), nil
}

func (r *NotificationRepository) FindByRecipient(ctx context.Context, recipientID uint) ([]domain.Notification, error) {
	found, err := r.dao.FindByRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByRecipient -> %w", err)
	}

	return daosToDomainNotifications(found), nil
}

func (r *NotificationRepository) FindByEvent(ctx context.Context, eventID uint, notificationType domain.NotificationType) ([]domain.Notification, error) {
	found, err := r.dao.FindByEvent(ctx, eventID, string(notificationType))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEvent -> %w", err)
	}

	return daosToDomainNotifications(found), nil
}

func (r *NotificationRepository) Update(ctx context.Context, notification domain.Notification) (domain.Notification, error) {
	updated, err := r.dao.Update(ctx, domainToDaoNotification(notification))
	if err != nil {
		return domain.Notification{}, err
	}

	return daoToDomainNotification(updated), nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	return r.dao.Delete(ctx, id)
}

func (r *NotificationRepository) DeleteByEvent(ctx context.Context, eventID uint) error {
	return r.dao.DeleteByEvent(ctx, eventID)
}

func domainToDaoNotification(n domain.Notification) dao.Notification {
	return dao.Notification{
		ID:          n.ID,
		Type:        string(n.Type),
		RecipientID: n.RecipientID,
		SenderID:    n.SenderID,
		EventID:     n.EventID,
		Title:       n.Title,
		Body:        n.Body,
		Read:        n.Read,
		Accepted:    n.Accepted,
		Declined:    n.Declined,
		Stayed:      n.Stayed,
		Timestamp:   n.Timestamp,
	}
}

func daoToDomainNotification(n dao.Notification) domain.Notification {
	return domain.Notification{
		ID:          n.ID,
		Type:        domain.NotificationType(n.Type),
		RecipientID: n.RecipientID,
		SenderID:    n.SenderID,
		EventID:     n.EventID,
		Title:       n.Title,
		Body:        n.Body,
		Read:        n.Read,
		Accepted:    n.Accepted,
		Declined:    n.Declined,
		Stayed:      n.Stayed,
		Timestamp:   n.Timestamp,
	}
}

func daosToDomainNotifications(notifications []dao.Notification) []domain.Notification {
	out := make([]domain.Notification, len(notifications))
	for i, n := range notifications {
		out[i] = daoToDomainNotification(n)
	}

	return out
}
