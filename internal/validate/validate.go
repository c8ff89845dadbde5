// Package validate wraps go-playground/validator so handlers receive
// structured field/message pairs instead of panics or opaque errors.
package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// Passwords need a lower, an upper, a digit, and a symbol. The regexp
	// engine has no lookahead, so this is a plain character-class scan.
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		var lower, upper, digit, symbol bool
		for _, r := range fl.Field().String() {
			switch {
			case r >= 'a' && r <= 'z':
				lower = true
			case r >= 'A' && r <= 'Z':
				upper = true
			case r >= '0' && r <= '9':
				digit = true
			case strings.ContainsRune("@$!%*?&", r):
				symbol = true
			}
		}
		return lower && upper && digit && symbol
	})
}

// FieldError names one rejected field and why it was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors aggregates every failed field of one request body.
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("%s: %s", e.Fields[0].Field, e.Fields[0].Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "Validation failed: " + strings.Join(parts, ", ")
}

// Struct validates s against its `validate` tags and returns nil or *Errors.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &Errors{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fieldName(fe), Message: messageFor(fe)})
	}
	return out
}

func fieldName(fe validator.FieldError) string {
	// StructNamespace looks like "registerRequest.Email"; drop the type.
	ns := fe.StructNamespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return ns
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "e164":
		return "must be a valid phone number"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must contain only digits"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "datetime":
		return "must be a valid date in YYYY-MM-DD format"
	case "url":
		return "must be a valid URL"
	case "password":
		return "must contain a lowercase letter, an uppercase letter, a digit, and a special character"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
