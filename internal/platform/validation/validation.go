// Package validation holds the shared request validator.
//
// Rules live in `validate` struct tags. Field names in reported errors come from the
// `json` tag so they match what clients send. The custom `cpf` tag checks the national
// identifier checksum.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/student-enrollment/enrollment-api/internal/domain/cpf"
)

// TagCPF is the struct tag that runs cpf.IsValid on a string field.
const TagCPF = "cpf"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation(TagCPF, func(fl validator.FieldLevel) bool {
		return cpf.IsValid(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", TagCPF, err))
	}
	return v
}

// FieldErrors maps a field name to a human readable message. Only the first failing rule
// of each field is reported.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for k, v := range fe {
		parts = append(parts, k+": "+v)
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// Struct validates s. It returns nil when s is valid, FieldErrors when one or more rules fail,
// or another error when s cannot be validated at all.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	out := make(FieldErrors, len(ves))
	for _, fe := range ves {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

// Var validates a single value against a tag string, e.g. Var(x, "required,cpf").
func Var(v any, tag string) bool {
	return validate.Var(v, tag) == nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must be non-empty"
	case "min":
		return fmt.Sprintf("must have at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must have exactly %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "numeric":
		return "must contain only digits"
	case TagCPF:
		return "is not a valid CPF"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
