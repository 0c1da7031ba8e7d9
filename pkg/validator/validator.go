package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Init sets up the shared validator instance and registers custom rules.
func Init() {
	validate = validator.New()

	// "clock" validates a 24-hour "HH:MM" string (quiet-hours boundaries).
	validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
}

// Validate runs struct validation against the registered rules.
func Validate(i interface{}) error {
	if validate == nil {
		Init()
	}
	return validate.Struct(i)
}
