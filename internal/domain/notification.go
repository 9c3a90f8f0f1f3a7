package domain

import (
	"errors"
	"time"
)

var ErrInvitationResolved = errors.New("invitation has already been resolved")

// NotificationType discriminates the notification union. Persistence
// round-trips on this field instead of a type hierarchy.
type NotificationType string

const (
	NotificationGeneral     NotificationType = "general"
	NotificationInvitation  NotificationType = "invitation"
	NotificationNotSelected NotificationType = "not_selected"
)

// Notification is a per-entrant outcome record. Invitations carry the
// accepted/declined pair, not-selected records the stayed/declined pair;
// at most one flag of a pair ever becomes true, exactly once. Records
// persist after resolution for auditing.
type Notification struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	RecipientID uint             `json:"recipient_id"`
	SenderID    uint             `json:"sender_id"`
	EventID     uint             `json:"event_id"`
	Title       string           `json:"title"`
	Body        string           `json:"body"`
	Read        bool             `json:"read"`
	Accepted    bool             `json:"accepted"`
	Declined    bool             `json:"declined"`
	Stayed      bool             `json:"stayed"`
	Timestamp   time.Time        `json:"timestamp"`
}

// Resolved reports whether an outcome has already been recorded.
func (n *Notification) Resolved() bool {
	return n.Accepted || n.Declined || n.Stayed
}

// MarkAccepted records invitation acceptance.
func (n *Notification) MarkAccepted() error {
	if n.Resolved() {
		return ErrInvitationResolved
	}

	n.Accepted = true

	return nil
}

// MarkDeclined records an invitation or not-selected decline.
func (n *Notification) MarkDeclined() error {
	if n.Resolved() {
		return ErrInvitationResolved
	}

	n.Declined = true

	return nil
}

// MarkStayed records that a not-selected entrant chose to remain on the
// waitlist.
func (n *Notification) MarkStayed() error {
	if n.Resolved() {
		return ErrInvitationResolved
	}

	n.Stayed = true

	return nil
}
