package api

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var sessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// session ids come straight from clients and end up in store filters;
	// keep the alphabet tight
	_ = v.RegisterValidation("session_id", func(fl validator.FieldLevel) bool {
		return sessionIDPattern.MatchString(fl.Field().String())
	})
	return v
}

func ValidateStruct(s any) error {
	return validate.Struct(s)
}

// ValidSessionID checks ids arriving outside a validated struct (form
// fields, URL params).
func ValidSessionID(id string) bool {
	return len(id) >= 8 && len(id) <= 100 && sessionIDPattern.MatchString(id)
}
