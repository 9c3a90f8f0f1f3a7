package domain

import "errors"

// DefaultWaitlistCapacity is used when an event does not limit its waitlist.
const DefaultWaitlistCapacity = 32768

var (
	ErrWaitlistFull   = errors.New("waitlist is full")
	ErrDuplicateEntry = errors.New("entrant is already present")
	ErrNotInWaitlist  = errors.New("entrant is not in the waitlist")
)

// Waitlist holds the entrants awaiting selection for an event, in join order.
// All mutation goes through its methods so the capacity bound cannot be bypassed.
type Waitlist struct {
	entrants    []Entrant
	maxCapacity int
}

// NewWaitlist creates an empty waitlist. A non-positive maxCapacity falls
// back to DefaultWaitlistCapacity.
func NewWaitlist(maxCapacity int) *Waitlist {
	if maxCapacity <= 0 {
		maxCapacity = DefaultWaitlistCapacity
	}

	return &Waitlist{
		maxCapacity: maxCapacity,
	}
}

// AddEntrant appends an entrant. The capacity check happens before the
// append, so a failed add leaves the list unchanged.
func (w *Waitlist) AddEntrant(e Entrant) error {
	if len(w.entrants) >= w.maxCapacity {
		return ErrWaitlistFull
	}
	if _, ok := w.Entrant(e.ID); ok {
		return ErrDuplicateEntry
	}

	w.entrants = append(w.entrants, e)

	return nil
}

// RemoveEntrant removes the entrant with the given id.
func (w *Waitlist) RemoveEntrant(id uint) error {
	for i, e := range w.entrants {
		if e.ID == id {
			w.entrants = append(w.entrants[:i], w.entrants[i+1:]...)
			return nil
		}
	}

	return ErrNotInWaitlist
}

// Entrant probes for an entrant by id. A miss is a legitimate result,
// not an error.
func (w *Waitlist) Entrant(id uint) (Entrant, bool) {
	for _, e := range w.entrants {
		if e.ID == id {
			return e, true
		}
	}

	return Entrant{}, false
}

// Entrants returns a copy of the list in join order.
func (w *Waitlist) Entrants() []Entrant {
	out := make([]Entrant, len(w.entrants))
	copy(out, w.entrants)

	return out
}

func (w *Waitlist) Len() int {
	return len(w.entrants)
}

func (w *Waitlist) IsEmpty() bool {
	return len(w.entrants) == 0
}

func (w *Waitlist) MaxCapacity() int {
	return w.maxCapacity
}
