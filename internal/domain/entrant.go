package domain

import "time"

// Entrant is a registered user eligible to join event waitlists.
// Identity is by ID only; the profile fields are mutable.
type Entrant struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	NotificationOptIn bool      `json:"notification_opt_in"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
