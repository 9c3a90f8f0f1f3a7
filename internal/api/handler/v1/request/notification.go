package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type BulkNotificationRequest struct {
	EventID      uint   `json:"event_id"`
	SenderID     uint   `json:"sender_id"`
	RecipientIDs []uint `json:"recipient_ids"`
	Title        string `json:"title"`
	Body         string `json:"body"`
}

func (req *BulkNotificationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required),
		validation.Field(&req.SenderID, validation.Required),
		validation.Field(&req.Title, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Body, validation.Required, validation.Length(1, 1000)),
	)
}
