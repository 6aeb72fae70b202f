package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "user-crud-service/pkg/errors"
)

// FailureMessage is the top-level message of every 422 response.
const FailureMessage = "Validasi gagal"

func requiredMessage(field string) string {
	return fmt.Sprintf("The %s field is required.", field)
}

func kindMessage(field string, kind fieldKind) string {
	if kind == kindInteger {
		return fmt.Sprintf("The %s field must be an integer.", field)
	}
	return fmt.Sprintf("The %s field must be a string.", field)
}

func uniqueMessage(field string) string {
	return fmt.Sprintf("The %s has already been taken.", field)
}

// ruleMessage converts a single validator failure into a readable message.
func ruleMessage(field string, kind fieldKind, fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "max":
		if kind == kindString {
			return fmt.Sprintf("The %s field must not be greater than %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s.", field, fe.Param())
	case "min":
		if kind == kindString {
			return fmt.Sprintf("The %s field must be at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s.", field, fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

// EmailTakenError builds the 422 error reported when an email is already in use.
// The store returns it too when the unique index rejects a write.
func EmailTakenError() *apperrors.ValidationError {
	verr := apperrors.NewValidationError(FailureMessage)
	verr.Add("email", uniqueMessage("email"))
	return verr
}
