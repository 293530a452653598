package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"storefront/internal/service"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields under the name clients send
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})
	return v
}

// ValidateRequest validates a struct against its validation tags
func ValidateRequest(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

// DecodeAndValidate decodes JSON request body and validates it. Malformed
// bodies and failed rules are both reported as *service.ValidationError.
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &service.ValidationError{Fields: []service.FieldError{{
			Field:   "body",
			Message: decodeMessage(err),
		}}}
	}
	return ValidateRequest(v)
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s has the wrong type", typeErr.Field)
	}
	return "malformed JSON body: " + err.Error()
}

func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	return &service.ValidationError{Fields: FormatValidationErrors(validationErrors)}
}

// FormatValidationErrors converts validator errors to field errors
func FormatValidationErrors(err error) []service.FieldError {
	var fields []service.FieldError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			fields = append(fields, service.FieldError{
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
	}

	return fields
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "uuid":
		return "Must be a UUID"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	default:
		return "Invalid value"
	}
}
