// Package validation binds request data and turns validation failures into
// field-level 400 responses.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/bctw-api/internal/errs"
)

// Validatable is implemented by request types. Validate returns
// validator.ValidationErrors, CustomValidationErrors or nil.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a rule that struct tags cannot express, such as
// one date field having to follow another.
type CustomValidationError struct {
	Field   string
	Message string
}

type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// New returns a validator that names fields by their json, query or param
// tag, so errors use the names the client sent.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "param"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// BindAndValidate binds path, query and body data into payload and validates
// it.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError(bindMessage(err), false, nil, nil, nil)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
	}

	return nil
}

// bindMessage extracts the client-facing part of an echo bind error.
func bindMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok && msg != "" {
			return msg
		}
		return http.StatusText(he.Code)
	}
	return "Invalid request"
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		fieldErrors := make([]errs.FieldError, 0, len(custom))
		for _, ce := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: ce.Field, Error: ce.Message})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error(), []errs.FieldError{}
	}

	fieldErrors := make([]errs.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: fieldPath(fe),
			Error: fieldMessage(fe),
		})
	}

	return "Validation failed", fieldErrors
}

// fieldPath is the namespace without the root struct, e.g. "items[1].device_id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	if ns == "" {
		ns = fe.Field()
	}
	return strings.ToLower(ns)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"

	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())

	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("must not contain more than %s items", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())

	case "email":
		return "must be a valid email address"

	case "uuid":
		return "must be a valid UUID"

	case "latitude":
		return "must be a valid latitude"

	case "longitude":
		return "must be a valid longitude"

	case "dive":
		return "some items are invalid"
	}

	if fe.Param() != "" {
		return fmt.Sprintf("failed %s:%s", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed %s", fe.Tag())
}
