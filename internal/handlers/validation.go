package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Global validator instance (reused across all handlers)
var validate = validator.New()

// ValidateRequest validates a request struct and returns the first failure as
// a user-facing message.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
		fe := ve[0]
		return fmt.Errorf("%s %s", fieldLabel(fe.Field()), formatValidationError(fe))
	}

	return fmt.Errorf("validation failed: %w", err)
}

func fieldLabel(field string) string {
	switch field {
	case "Email":
		return "Email"
	case "Password":
		return "Password"
	case "Name":
		return "Name"
	case "Code":
		return "Code"
	default:
		return field
	}
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is not valid"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must be numeric"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
