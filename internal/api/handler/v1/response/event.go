package response

import (
	"time"

	"github.com/slices-events/slices-api/internal/domain"
)

// Event is the wire shape of an event, with its membership sets flattened
// out of the aggregate.
type Event struct {
	ID                   uint             `json:"id"`
	Name                 string           `json:"name"`
	Description          string           `json:"description"`
	Location             string           `json:"location"`
	EventDate            time.Time        `json:"event_date"`
	RegistrationDeadline time.Time        `json:"registration_deadline"`
	Capacity             int              `json:"capacity"`
	WaitlistCapacity     int              `json:"waitlist_capacity"`
	OrganizerID          uint             `json:"organizer_id"`
	RemainingSeats       int              `json:"remaining_seats"`
	Roster               []domain.Entrant `json:"roster"`
	Waitlist             []domain.Entrant `json:"waitlist"`
	InvitedIDs           []uint           `json:"invited_ids"`
	CancelledIDs         []uint           `json:"cancelled_ids"`
}

func NewEvent(event *domain.Event) Event {
	return Event{
		ID:                   event.ID,
		Name:                 event.Info.Name,
		Description:          event.Info.Description,
		Location:             event.Info.Location,
		EventDate:            event.Info.EventDate,
		RegistrationDeadline: event.Info.RegistrationDeadline,
		Capacity:             event.Info.Capacity,
		WaitlistCapacity:     event.Info.WaitlistCapacity,
		OrganizerID:          event.Info.OrganizerID,
		RemainingSeats:       event.RemainingSeats(),
		Roster:               event.Roster(),
		Waitlist:             event.WaitlistEntrants(),
		InvitedIDs:           event.InvitedIDs(),
		CancelledIDs:         event.CancelledIDs(),
	}
}

func NewEvents(events []*domain.Event) []Event {
	result := make([]Event, len(events))
	for i, event := range events {
		result[i] = NewEvent(event)
	}

	return result
}

// EntrantStatus reports an entrant's standing within one event.
type EntrantStatus struct {
	EventID   uint   `json:"event_id"`
	EntrantID uint   `json:"entrant_id"`
	Status    string `json:"status"`
}

func NewEntrantStatus(eventID, entrantID uint, status domain.EntrantStatus) EntrantStatus {
	return EntrantStatus{
		EventID:   eventID,
		EntrantID: entrantID,
		Status:    string(status),
	}
}
