// Package validation checks struct tags and reports failures as model.ValidationError.
package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mcoot/arkham-companion/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Struct validates v, returning a *model.ValidationError keyed by JSON field path
func Struct(ctx context.Context, v any) error {
	err := validate.StructCtx(ctx, v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := model.NewValidationError()
	for _, fe := range fieldErrs {
		out.Add(fieldPath(fe), message(fe))
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_with", "required_without":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "eqfield":
		return "must match " + fe.Param()
	case "uuid4", "uuid":
		return "must be a UUID"
	case "alpha":
		return "must contain only letters"
	default:
		return fmt.Sprintf("failed the %q check", fe.Tag())
	}
}

func isCollection(kind reflect.Kind) bool {
	return kind == reflect.Slice || kind == reflect.Array || kind == reflect.Map
}
