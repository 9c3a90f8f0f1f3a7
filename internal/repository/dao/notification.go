package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Notification struct {
	ID string `gorm:"primaryKey"`

	Type        string `gorm:"not null;index"`
	RecipientID uint   `gorm:"not null;index"`
	SenderID    uint   `gorm:"not null"`
	EventID     uint   `gorm:"index"`
	Title       string `gorm:"not null"`
	Body        string

	Read     bool `gorm:"not null"`
	Accepted bool `gorm:"not null"`
	Declined bool `gorm:"not null"`
	Stayed   bool `gorm:"not null"`

	Timestamp time.Time `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type NotificationDAO struct {
	db *gorm.DB
}

func NewNotificationDAO(db *gorm.DB) *NotificationDAO {
	return &NotificationDAO{
		db: db,
	}
}

func (d *NotificationDAO) Insert(ctx context.Context, notification Notification) (Notification, error) {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}

	result := d.db.WithContext(ctx).Create(&notification)
	if result.Error != nil {
		return Notification{}, result.Error
	}

	return notification, nil
}

func (d *NotificationDAO) InsertBatch(ctx context.Context, notifications []Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	for i := range notifications {
		if notifications[i].ID == "" {
			notifications[i].ID = uuid.NewString()
		}
	}

	return d.db.WithContext(ctx).CreateInBatches(notifications, 100).Error
}

func (d *NotificationDAO) FindByID(ctx context.Context, id string) (Notification, error) {
	var notification Notification

	result := d.db.WithContext(ctx).First(&notification, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Notification{}, ErrNotificationNotFound
		}

		return Notification{}, result.Error
	}

	return notification, nil
}

func (d *NotificationDAO) FindByRecipient(ctx context.Context, recipientID uint) ([]Notification, error) {
	var notifications []Notification

	result := d.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("timestamp DESC").
		Find(&notifications)
	if result.Error != nil {
		return nil, result.Error
	}

	return notifications, nil
}

func (d *NotificationDAO) FindByEvent(ctx context.Context, eventID uint, notificationType string) ([]Notification, error) {
	query := d.db.WithContext(ctx).Where("event_id = ?", eventID)
	if notificationType != "" {
		query = query.Where("type = ?", notificationType)
	}

	var notifications []Notification
	result := query.Order("timestamp DESC").Find(&notifications)
	if result.Error != nil {
		return nil, result.Error
	}

	return notifications, nil
}

func (d *NotificationDAO) Update(ctx context.Context, notification Notification) (Notification, error) {
	result := d.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ?", notification.ID).
		Updates(map[string]any{
			"read":     notification.Read,
			"accepted": notification.Accepted,
			"declined": notification.Declined,
			"stayed":   notification.Stayed,
		})
	if result.Error != nil {
		return Notification{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Notification{}, ErrNotificationNotFound
	}

	return d.FindByID(ctx, notification.ID)
}

func (d *NotificationDAO) Delete(ctx context.Context, id string) error {
	result := d.db.WithContext(ctx).Delete(&Notification{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

func (d *NotificationDAO) DeleteByEvent(ctx context.Context, eventID uint) error {
	return d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&Notification{}).Error
}
