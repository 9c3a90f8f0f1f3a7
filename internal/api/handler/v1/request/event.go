package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateEventRequest struct {
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Location             string    `json:"location"`
	EventDate            time.Time `json:"event_date"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	Capacity             int       `json:"capacity"`
	WaitlistCapacity     int       `json:"waitlist_capacity"`
	OrganizerID          uint      `json:"organizer_id"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Description, validation.Length(0, 1000)),
		validation.Field(&req.EventDate, validation.Required),
		validation.Field(&req.RegistrationDeadline, validation.Required),
		validation.Field(&req.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&req.WaitlistCapacity, validation.Min(0)),
		validation.Field(&req.OrganizerID, validation.Required),
	)
}

type JoinWaitlistRequest struct {
	EntrantID uint `json:"entrant_id"`
}

func (req *JoinWaitlistRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EntrantID, validation.Required),
	)
}

type CancelEntrantsRequest struct {
	EntrantIDs []uint `json:"entrant_ids"`
}

func (req *CancelEntrantsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EntrantIDs, validation.Required, validation.Length(1, 0)),
	)
}

type ReAdmitEntrantRequest struct {
	EntrantID uint `json:"entrant_id"`
}

func (req *ReAdmitEntrantRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EntrantID, validation.Required),
	)
}
