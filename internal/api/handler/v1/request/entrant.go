package request

import (
	"errors"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// E.164 with an optional leading plus.
const phoneRegexPattern = `^(?=\+?[1-9])\+?\d{2,15}$`

var errInvalidPhone = errors.New("the phone number must be in international format")

type CreateEntrantRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	NotificationOptIn bool   `json:"notification_opt_in"`
}

func (req *CreateEntrantRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
	)
	if err != nil {
		return err
	}

	return validatePhone(req.Phone)
}

type UpdateEntrantRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	NotificationOptIn bool   `json:"notification_opt_in"`
}

func (req *UpdateEntrantRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
	)
	if err != nil {
		return err
	}

	return validatePhone(req.Phone)
}

// validatePhone accepts an empty phone; it is an optional profile field.
func validatePhone(phone string) error {
	if phone == "" {
		return nil
	}

	phoneExp := regexp2.MustCompile(phoneRegexPattern, regexp2.None)
	ok, err := phoneExp.MatchString(phone)
	if err != nil || !ok {
		return errInvalidPhone
	}

	return nil
}
