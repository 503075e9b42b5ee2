package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/deppfellow/menu-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by every request payload.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a rule that struct tags cannot express.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is returned by Validate implementations alongside
// or instead of validator.ValidationErrors.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	if len(c) == 0 {
		return "Validation failed"
	}
	parts := make([]string, len(c))
	for i, e := range c {
		parts[i] = e.Field + ": " + e.Message
	}
	return "Validation failed: " + strings.Join(parts, "; ")
}

// Bind populates payload from path parameters, query string and body.
func Bind(c echo.Context, payload any) error {
	if err := c.Bind(payload); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return errs.NewBadRequestError(fmt.Sprint(he.Message), false, nil, nil, nil)
		}
		return errs.NewBadRequestError("invalid request payload", false, nil, nil, nil)
	}
	return nil
}

// Check runs payload.Validate and converts failures into a 400 *errs.HTTPError.
func Check(payload Validatable) error {
	if err := payload.Validate(); err != nil {
		return ToHTTPError(err)
	}
	return nil
}

// BindAndValidate binds request data into payload and validates it.
// payload must be a pointer.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := Bind(c, payload); err != nil {
		return err
	}
	return Check(payload)
}

// ToHTTPError converts the error returned by a Validate method.
func ToHTTPError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	fieldErrors := FieldErrors(err)
	if len(fieldErrors) == 0 {
		return errs.ValidationError(err)
	}
	return errs.NewValidationError(fieldErrors...)
}

// FieldErrors flattens validator and custom errors into field errors.
// Custom errors come first so hand-written messages win when deduplicated
// by the client.
func FieldErrors(err error) []errs.FieldError {
	var fieldErrors []errs.FieldError

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, ce := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: ce.Field, Error: ce.Message})
		}
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fe := range validationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: fieldPath(fe),
				Error: message(fe),
			})
		}
	}

	return fieldErrors
}

// fieldPath drops the root struct name from the namespace:
// "CreateItemRequest.section.name" becomes "section.name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without", "required_if":
		return "is required"
	case "excluded_with":
		return fmt.Sprintf("cannot be combined with %s", strings.ToLower(fe.Param()))
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "boolean":
		return "must be a valid boolean"
	case "email":
		return "must be a valid email address"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s:%s", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}
