package domain

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrEventFull    = errors.New("event is full")
	ErrInvalidDates = errors.New("event dates are invalid")
	ErrNotInvited   = errors.New("entrant is not awaiting an invitation response")
	ErrNotCancelled = errors.New("entrant has not been cancelled")
)

// EntrantStatus is the state of one entrant relative to one event.
type EntrantStatus string

const (
	StatusNotInvolved EntrantStatus = "not_involved"
	StatusWaitlisted  EntrantStatus = "waitlisted"
	StatusInvited     EntrantStatus = "invited"
	StatusParticipant EntrantStatus = "participant"
	StatusCancelled   EntrantStatus = "cancelled"
)

// EventInfo carries the organizer-supplied description of an event.
type EventInfo struct {
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Location             string    `json:"location"`
	EventDate            time.Time `json:"event_date"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	Capacity             int       `json:"capacity"`
	WaitlistCapacity     int       `json:"waitlist_capacity"`
	OrganizerID          uint      `json:"organizer_id"`
}

// Event owns the membership state for a single event: the confirmed roster
// (bounded by capacity), the waitlist, and the invited/cancelled id sets.
// An invited id stays physically in the waitlist until it accepts or is
// cancelled; "invited" is a derived status layered over waitlist membership.
type Event struct {
	ID   uint      `json:"id"`
	Info EventInfo `json:"info"`

	waitlist  *Waitlist
	roster    []Entrant
	invited   map[uint]struct{}
	cancelled map[uint]struct{}
}

// NewEvent validates the schedule against now and builds an event with
// empty membership. Both dates must lie in the future and the registration
// deadline must not fall after the event itself.
func NewEvent(info EventInfo, now time.Time) (*Event, error) {
	if info.EventDate.Before(now) || info.RegistrationDeadline.Before(now) {
		return nil, ErrInvalidDates
	}
	if info.RegistrationDeadline.After(info.EventDate) {
		return nil, ErrInvalidDates
	}
	if info.WaitlistCapacity <= 0 {
		info.WaitlistCapacity = DefaultWaitlistCapacity
	}

	return &Event{
		Info:      info,
		waitlist:  NewWaitlist(info.WaitlistCapacity),
		invited:   map[uint]struct{}{},
		cancelled: map[uint]struct{}{},
	}, nil
}

// Memberships is the persisted membership state used to rebuild an event.
type Memberships struct {
	Roster       []Entrant
	Waitlist     []Entrant
	InvitedIDs   []uint
	CancelledIDs []uint
}

// RestoreEvent rebuilds an event from storage without re-validating dates;
// schedule validation happens once, at creation.
func RestoreEvent(id uint, info EventInfo, m Memberships) *Event {
	e := &Event{
		ID:        id,
		Info:      info,
		waitlist:  NewWaitlist(info.WaitlistCapacity),
		roster:    append([]Entrant(nil), m.Roster...),
		invited:   map[uint]struct{}{},
		cancelled: map[uint]struct{}{},
	}
	for _, ent := range m.Waitlist {
		e.waitlist.entrants = append(e.waitlist.entrants, ent)
	}
	for _, id := range m.InvitedIDs {
		e.invited[id] = struct{}{}
	}
	for _, id := range m.CancelledIDs {
		e.cancelled[id] = struct{}{}
	}

	return e
}

// Status reports where the entrant id currently sits in the state machine.
func (e *Event) Status(id uint) EntrantStatus {
	for _, ent := range e.roster {
		if ent.ID == id {
			return StatusParticipant
		}
	}
	if _, ok := e.invited[id]; ok {
		return StatusInvited
	}
	if _, ok := e.waitlist.Entrant(id); ok {
		return StatusWaitlisted
	}
	if _, ok := e.cancelled[id]; ok {
		return StatusCancelled
	}

	return StatusNotInvolved
}

// Roster returns a copy of the confirmed participants.
func (e *Event) Roster() []Entrant {
	out := make([]Entrant, len(e.roster))
	copy(out, e.roster)

	return out
}

func (e *Event) RosterSize() int {
	return len(e.roster)
}

// RemainingSeats is the number of roster seats still open.
func (e *Event) RemainingSeats() int {
	remaining := e.Info.Capacity - len(e.roster)
	if remaining < 0 {
		return 0
	}

	return remaining
}

// WaitlistEntrants returns a copy of the waitlist in join order.
func (e *Event) WaitlistEntrants() []Entrant {
	return e.waitlist.Entrants()
}

func (e *Event) WaitlistLen() int {
	return e.waitlist.Len()
}

// InvitedIDs returns the invited id set in ascending order.
func (e *Event) InvitedIDs() []uint {
	return sortedIDs(e.invited)
}

// CancelledIDs returns the cancelled id set in ascending order.
func (e *Event) CancelledIDs() []uint {
	return sortedIDs(e.cancelled)
}

// EligibleForDraw returns the waitlisted entrants that are neither invited
// nor cancelled, in join order. Both the initial and the replacement draw
// sample from exactly this pool.
func (e *Event) EligibleForDraw() []Entrant {
	var eligible []Entrant
	for _, ent := range e.waitlist.entrants {
		if _, ok := e.invited[ent.ID]; ok {
			continue
		}
		if _, ok := e.cancelled[ent.ID]; ok {
			continue
		}
		eligible = append(eligible, ent)
	}

	return eligible
}

// AddToRoster appends a confirmed participant. Only invitation acceptance
// and tests call this directly.
func (e *Event) AddToRoster(ent Entrant) error {
	if len(e.roster) >= e.Info.Capacity {
		return ErrEventFull
	}
	for _, existing := range e.roster {
		if existing.ID == ent.ID {
			return ErrDuplicateEntry
		}
	}

	e.roster = append(e.roster, ent)

	return nil
}

// JoinWaitlist adds the entrant to the waitlist. Re-joining after a
// cancellation clears the cancelled mark, resetting the entrant to
// Waitlisted.
func (e *Event) JoinWaitlist(ent Entrant) error {
	for _, existing := range e.roster {
		if existing.ID == ent.ID {
			return ErrDuplicateEntry
		}
	}
	if err := e.waitlist.AddEntrant(ent); err != nil {
		return err
	}

	delete(e.cancelled, ent.ID)

	return nil
}

// LeaveWaitlist removes the entrant from the waitlist and drops any
// pending invited mark.
func (e *Event) LeaveWaitlist(id uint) error {
	if err := e.waitlist.RemoveEntrant(id); err != nil {
		return err
	}

	delete(e.invited, id)

	return nil
}

// MarkInvited records a lottery win. The entrant stays in the waitlist.
func (e *Event) MarkInvited(id uint) error {
	if _, ok := e.waitlist.Entrant(id); !ok {
		return ErrNotInWaitlist
	}
	if _, ok := e.invited[id]; ok {
		return ErrDuplicateEntry
	}

	e.invited[id] = struct{}{}

	return nil
}

// Accept finalizes a win: the entrant moves from the waitlist to the
// roster. The recipient must still be waitlisted, otherwise the accept
// fails explicitly and membership is unchanged.
func (e *Event) Accept(id uint) error {
	ent, ok := e.waitlist.Entrant(id)
	if !ok {
		return ErrNotInWaitlist
	}
	if err := e.AddToRoster(ent); err != nil {
		return err
	}

	_ = e.waitlist.RemoveEntrant(id)
	delete(e.invited, id)

	return nil
}

// Decline removes the invitee from the waitlist without promoting them and
// records the id as cancelled so later draws skip it.
func (e *Event) Decline(id uint) error {
	if _, ok := e.waitlist.Entrant(id); !ok {
		return ErrNotInWaitlist
	}

	_ = e.waitlist.RemoveEntrant(id)
	delete(e.invited, id)
	e.cancelled[id] = struct{}{}

	return nil
}

// Cancel moves an invited-but-unresponsive entrant to the cancelled set.
// Ids that already accepted, or were never invited, fail.
func (e *Event) Cancel(id uint) error {
	if e.Status(id) != StatusInvited {
		return ErrNotInvited
	}

	delete(e.invited, id)
	_ = e.waitlist.RemoveEntrant(id)
	e.cancelled[id] = struct{}{}

	return nil
}

// ReAdmit puts a cancelled entrant back on the waitlist.
func (e *Event) ReAdmit(ent Entrant) error {
	if _, ok := e.cancelled[ent.ID]; !ok {
		return ErrNotCancelled
	}
	if err := e.waitlist.AddEntrant(ent); err != nil {
		return err
	}

	delete(e.cancelled, ent.ID)

	return nil
}

func sortedIDs(set map[uint]struct{}) []uint {
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}
