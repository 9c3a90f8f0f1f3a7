package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/slices-events/slices-api/internal/domain"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrMembershipNotFound = errors.New("membership not found")

	// Capacity and membership violations share identity with the domain
	// sentinels so errors.Is holds across layers.
	ErrEventFull           = domain.ErrEventFull
	ErrWaitlistFull        = domain.ErrWaitlistFull
	ErrDuplicateMembership = domain.ErrDuplicateEntry
	ErrNotInWaitlist       = domain.ErrNotInWaitlist
)

type Event struct {
	ID uint `gorm:"primaryKey"`

	Name                 string `gorm:"not null"`
	Description          string
	Location             string    `gorm:"not null"`
	EventDate            time.Time `gorm:"not null;index"`
	RegistrationDeadline time.Time `gorm:"not null"`
	Capacity             int       `gorm:"not null"`
	WaitlistCapacity     int       `gorm:"not null"`
	OrganizerID          uint      `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// RosterEntry is one confirmed participant of an event.
type RosterEntry struct {
	ID        uint `gorm:"primaryKey"`
	EventID   uint `gorm:"not null;uniqueIndex:idx_roster_event_entrant"`
	EntrantID uint `gorm:"not null;uniqueIndex:idx_roster_event_entrant;index"`
	CreatedAt time.Time
}

// WaitlistEntry is one waitlisted entrant. The autoincrement id doubles as
// the join order.
type WaitlistEntry struct {
	ID        uint `gorm:"primaryKey"`
	EventID   uint `gorm:"not null;uniqueIndex:idx_waitlist_event_entrant"`
	EntrantID uint `gorm:"not null;uniqueIndex:idx_waitlist_event_entrant;index"`
	CreatedAt time.Time
}

// InvitedEntry marks a waitlisted entrant as holding a pending invitation.
type InvitedEntry struct {
	ID        uint `gorm:"primaryKey"`
	EventID   uint `gorm:"not null;uniqueIndex:idx_invited_event_entrant"`
	EntrantID uint `gorm:"not null;uniqueIndex:idx_invited_event_entrant;index"`
	CreatedAt time.Time
}

// CancelledEntry marks an entrant as declined or organizer-cancelled.
type CancelledEntry struct {
	ID        uint `gorm:"primaryKey"`
	EventID   uint `gorm:"not null;uniqueIndex:idx_cancelled_event_entrant"`
	EntrantID uint `gorm:"not null;uniqueIndex:idx_cancelled_event_entrant;index"`
	CreatedAt time.Time
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

// NextID exposes the sequence used for event ids: max(id)+1, 1 when the
// table is empty.
func (d *EventDAO) NextID(ctx context.Context) (uint, error) {
	return nextID(d.db.WithContext(ctx), "events")
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := nextID(tx, "events")
		if err != nil {
			return err
		}
		event.ID = id

		return tx.Create(&event).Error
	})
	if err != nil {
		return Event{}, err
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindAllFuture(ctx context.Context, now time.Time) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("event_date > ?", now).
		Order("event_date ASC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) FindByOrganizer(ctx context.Context, organizerID uint) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Order("event_date ASC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// FindForEntrant returns the events on whose roster or waitlist the
// entrant currently appears.
func (d *EventDAO) FindForEntrant(ctx context.Context, entrantID uint) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("id IN (?)",
			d.db.Model(&RosterEntry{}).Select("event_id").Where("entrant_id = ?", entrantID)).
		Or("id IN (?)",
			d.db.Model(&WaitlistEntry{}).Select("event_id").Where("entrant_id = ?", entrantID)).
		Order("event_date ASC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// Delete removes the event together with all of its membership rows.
func (d *EventDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&RosterEntry{},
			&WaitlistEntry{},
			&InvitedEntry{},
			&CancelledEntry{},
		} {
			if err := tx.Where("event_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&Event{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEventNotFound
		}

		return nil
	})
}

// RosterEntrants returns the confirmed participants of an event.
func (d *EventDAO) RosterEntrants(ctx context.Context, eventID uint) ([]Entrant, error) {
	var entrants []Entrant

	result := d.db.WithContext(ctx).
		Joins("JOIN roster_entries ON roster_entries.entrant_id = entrants.id").
		Where("roster_entries.event_id = ?", eventID).
		Order("roster_entries.id ASC").
		Find(&entrants)
	if result.Error != nil {
		return nil, result.Error
	}

	return entrants, nil
}

// WaitlistEntrants returns the waitlisted entrants in join order.
func (d *EventDAO) WaitlistEntrants(ctx context.Context, eventID uint) ([]Entrant, error) {
	var entrants []Entrant

	result := d.db.WithContext(ctx).
		Joins("JOIN waitlist_entries ON waitlist_entries.entrant_id = entrants.id").
		Where("waitlist_entries.event_id = ?", eventID).
		Order("waitlist_entries.id ASC").
		Find(&entrants)
	if result.Error != nil {
		return nil, result.Error
	}

	return entrants, nil
}

func (d *EventDAO) InvitedIDs(ctx context.Context, eventID uint) ([]uint, error) {
	return d.memberIDs(ctx, &InvitedEntry{}, eventID)
}

func (d *EventDAO) CancelledIDs(ctx context.Context, eventID uint) ([]uint, error) {
	return d.memberIDs(ctx, &CancelledEntry{}, eventID)
}

func (d *EventDAO) memberIDs(ctx context.Context, model any, eventID uint) ([]uint, error) {
	var ids []uint

	result := d.db.WithContext(ctx).Model(model).
		Where("event_id = ?", eventID).
		Order("id ASC").
		Pluck("entrant_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}

	return ids, nil
}

// AddToRoster inserts one roster row. The event row is locked and the
// roster recounted inside the transaction, so concurrent promotions never
// push the roster past capacity; each promotion is a single-row write,
// not an event overwrite.
func (d *EventDAO) AddToRoster(ctx context.Context, eventID, entrantID uint) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}

			return err
		}

		var count int64
		if err := tx.Model(&RosterEntry{}).
			Where("event_id = ?", eventID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(event.Capacity) {
			return ErrEventFull
		}

		return tx.Create(&RosterEntry{EventID: eventID, EntrantID: entrantID}).Error
	})

	return classifyDuplicate(err)
}

func (d *EventDAO) RemoveFromRoster(ctx context.Context, eventID, entrantID uint) error {
	return d.removeMembership(ctx, &RosterEntry{}, eventID, entrantID, ErrMembershipNotFound)
}

// AddToWaitlist inserts one waitlist row, enforcing the waitlist bound
// under the event row lock. A full waitlist rejects the add and leaves
// the list unchanged.
func (d *EventDAO) AddToWaitlist(ctx context.Context, eventID, entrantID uint) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}

			return err
		}

		var count int64
		if err := tx.Model(&WaitlistEntry{}).
			Where("event_id = ?", eventID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(event.WaitlistCapacity) {
			return ErrWaitlistFull
		}

		return tx.Create(&WaitlistEntry{EventID: eventID, EntrantID: entrantID}).Error
	})

	return classifyDuplicate(err)
}

func (d *EventDAO) RemoveFromWaitlist(ctx context.Context, eventID, entrantID uint) error {
	return d.removeMembership(ctx, &WaitlistEntry{}, eventID, entrantID, ErrNotInWaitlist)
}

// MarkInvited records a pending invitation as a single-row insert.
func (d *EventDAO) MarkInvited(ctx context.Context, eventID, entrantID uint) error {
	err := d.db.WithContext(ctx).
		Create(&InvitedEntry{EventID: eventID, EntrantID: entrantID}).Error

	return classifyDuplicate(err)
}

func (d *EventDAO) ClearInvited(ctx context.Context, eventID, entrantID uint) error {
	return d.removeMembership(ctx, &InvitedEntry{}, eventID, entrantID, ErrMembershipNotFound)
}

func (d *EventDAO) AddCancelled(ctx context.Context, eventID, entrantID uint) error {
	err := d.db.WithContext(ctx).
		Create(&CancelledEntry{EventID: eventID, EntrantID: entrantID}).Error

	return classifyDuplicate(err)
}

func (d *EventDAO) RemoveCancelled(ctx context.Context, eventID, entrantID uint) error {
	return d.removeMembership(ctx, &CancelledEntry{}, eventID, entrantID, ErrMembershipNotFound)
}

func (d *EventDAO) removeMembership(ctx context.Context, model any, eventID, entrantID uint, missing error) error {
	result := d.db.WithContext(ctx).
		Where("event_id = ? AND entrant_id = ?", eventID, entrantID).
		Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return missing
	}

	return nil
}

func classifyDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrDuplicateMembership
	}

	return err
}
