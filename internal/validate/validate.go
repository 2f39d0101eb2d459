// Package validate holds the request form types and the shared
// validator instance behind them. Every mutating endpoint binds into
// one of these forms and rejects the request before any handler logic
// runs, so downstream code only ever sees well-formed input.
package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CampgroundForm is the payload for creating or updating a campground.
// Price accepts zero (a free campground) but never a negative value.
type CampgroundForm struct {
	Title       string  `form:"title" json:"title" validate:"required"`
	Description string  `form:"description" json:"description" validate:"required"`
	Location    string  `form:"location" json:"location" validate:"required"`
	Price       float64 `form:"price" json:"price" validate:"min=0"`
}

// ReviewForm is the payload for posting a review. Rating is inclusive
// on both ends.
type ReviewForm struct {
	Body   string `form:"body" json:"body" validate:"required"`
	Rating int    `form:"rating" json:"rating" validate:"required,min=1,max=5"`
}

// RegisterForm is the payload for creating an account.
type RegisterForm struct {
	Username string `form:"username" json:"username" validate:"required"`
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

// CredentialsForm is the payload for logging in.
type CredentialsForm struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates any of the form types above. All violations are
// folded into a single error so the caller can flash one message
// covering everything that is wrong with the submission.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// EchoValidator adapts the shared validator to Echo's Validator
// interface so handlers can call c.Validate directly.
type EchoValidator struct{}

// Validate implements echo.Validator.
func (EchoValidator) Validate(i interface{}) error {
	return Struct(i)
}
