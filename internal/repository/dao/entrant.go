package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrEntrantEmailExists = errors.New("entrant already exists")
	ErrEntrantNotFound    = errors.New("entrant not found")
)

type Entrant struct {
	ID uint `gorm:"primaryKey"`

	Name              string `gorm:"not null"`
	Email             string `gorm:"unique;not null"`
	Phone             string
	NotificationOptIn bool `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type EntrantDAO struct {
	db *gorm.DB
}

func NewEntrantDAO(db *gorm.DB) *EntrantDAO {
	return &EntrantDAO{
		db: db,
	}
}

func (d *EntrantDAO) Insert(ctx context.Context, entrant Entrant) (Entrant, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := nextID(tx, "entrants")
		if err != nil {
			return err
		}
		entrant.ID = id

		return tx.Create(&entrant).Error
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return Entrant{}, ErrEntrantEmailExists
		}

		return Entrant{}, err
	}

	return entrant, nil
}

func (d *EntrantDAO) FindByID(ctx context.Context, id uint) (Entrant, error) {
	var entrant Entrant

	result := d.db.WithContext(ctx).First(&entrant, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Entrant{}, ErrEntrantNotFound
		}

		return Entrant{}, result.Error
	}

	return entrant, nil
}

func (d *EntrantDAO) FindByIDs(ctx context.Context, ids []uint) ([]Entrant, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var entrants []Entrant
	result := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&entrants)
	if result.Error != nil {
		return nil, result.Error
	}

	return entrants, nil
}

func (d *EntrantDAO) Update(ctx context.Context, entrant Entrant) (Entrant, error) {
	result := d.db.WithContext(ctx).Model(&Entrant{}).
		Where("id = ?", entrant.ID).
		Updates(map[string]any{
			"name":                entrant.Name,
			"email":               entrant.Email,
			"phone":               entrant.Phone,
			"notification_opt_in": entrant.NotificationOptIn,
		})
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return Entrant{}, ErrEntrantEmailExists
		}

		return Entrant{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Entrant{}, ErrEntrantNotFound
	}

	return d.FindByID(ctx, entrant.ID)
}

// Delete removes the entrant and every membership row that references it,
// so no event roster, waitlist, invited or cancelled set keeps a dangling
// id afterwards.
func (d *EntrantDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&RosterEntry{},
			&WaitlistEntry{},
			&InvitedEntry{},
			&CancelledEntry{},
		} {
			if err := tx.Where("entrant_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&Entrant{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEntrantNotFound
		}

		return nil
	})
}
