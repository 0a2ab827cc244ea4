// Package validation validates request and fixture structs with validator/v10
// and reports failures as domain validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/connectapp/connect-server/internal/domain"
	domainerrors "github.com/connectapp/connect-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the Connect-specific tags registered:
//
//	role    a known domain.Role
//	tag     a non-blank tag without surrounding whitespace
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON (or YAML) field names instead of Go names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "yaml"} {
			name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("tag", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s != "" && strings.TrimSpace(s) == s
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain validation error
// whose details map field paths to messages.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[fieldPath(e)] = friendlyMessage(e)
	}
	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

// fieldPath drops the top-level struct name: "Request.tags[2]" becomes "tags[2]".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "role":
		return "must be one of: student, alumni, mentor, admin"
	case "tag":
		return "must be non-empty without leading or trailing spaces"
	case "min":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", e.Param())
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s items", e.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "unique":
		return "must not contain duplicates"
	default:
		return "is invalid"
	}
}
