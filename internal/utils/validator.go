package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/get30seconds/auth-api/internal/apperror"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields under their wire names ("password_confirmation",
	// not "PasswordConfirmation")
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateRequest checks a request DTO against its validate tags and
// returns an apperror carrying only the first failing rule's message.
// Returns nil when all rules pass.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return apperror.Validation("The given data was invalid.")
	}

	return apperror.Validation(messageFor(verrs[0]))
}

// messageFor renders a single failed rule as a human-readable message.
func messageFor(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", field)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}
