// Package validation runs declarative request schemas and produces the
// field-keyed error map returned by the API. Structural rules (type, length,
// format, cross-field equality) are expressed as validator tags; datastore
// refinements such as email uniqueness run afterwards, concurrently, and feed
// the same map.
package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields under their json names so error keys match the payload
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Errors maps a field name to the first rule violation observed for it
type Errors map[string]string

// Any reports whether at least one field failed
func (e Errors) Any() bool {
	return len(e) > 0
}

// Refinement is a deferred check run only after structural rules pass. It
// returns the field to flag and a message, or an empty message when the check
// passes. A non-nil error means the check itself could not run.
type Refinement func() (field, message string, err error)

// Struct evaluates the structural rules of payload. All fields are checked in
// one pass; each field keeps only its first violation.
func Struct(payload interface{}) (Errors, error) {
	errs := Errors{}

	err := validate.Struct(payload)
	if err == nil {
		return errs, nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, err
	}

	for _, fe := range ve {
		field, msg := message(fe)
		if _, seen := errs[field]; !seen {
			errs[field] = msg
		}
	}
	return errs, nil
}

// Run evaluates structural rules and, when they all pass, the given
// refinements. Independent refinements run concurrently; their order is not
// significant. The combined error map is empty when the payload is valid.
func Run(payload interface{}, refinements ...Refinement) (Errors, error) {
	errs, err := Struct(payload)
	if err != nil {
		return nil, err
	}
	if errs.Any() {
		return errs, nil
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	for _, ref := range refinements {
		wg.Add(1)
		go func(ref Refinement) {
			defer wg.Done()

			field, msg, err := ref()

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if msg == "" {
				return
			}
			if _, seen := errs[field]; !seen {
				errs[field] = msg
			}
		}(ref)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return errs, nil
}

// UniqueEmail builds a refinement that flags the email field when taken
// reports the address as in use. excludeID exempts a record from the check so
// updates do not collide with themselves; pass 0 to check against everyone.
func UniqueEmail(taken func(email string, excludeID uint) (bool, error), email string, excludeID uint) Refinement {
	return func() (string, string, error) {
		inUse, err := taken(email, excludeID)
		if err != nil {
			return "", "", err
		}
		if inUse {
			return "email", "Email is already taken", nil
		}
		return "", "", nil
	}
}

// message converts a single rule violation into the field to key it under and
// a human-readable message.
func message(fe validator.FieldError) (string, string) {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return field, FieldName(field) + " is required"
	case "min":
		n, _ := strconv.Atoi(fe.Param())
		// A minimum of one is just a fancy required: empty means absent
		if n <= 1 {
			return field, FieldName(field) + " is required"
		}
		return field, "The " + FieldName(field) + " field must be at least " + fe.Param() + " characters."
	case "max":
		return field, "The " + FieldName(field) + " field must be less than or equal to " + fe.Param() + " characters."
	case "email":
		return field, "Invalid email"
	case "eqfield":
		// Confirmation mismatches are reported against the confirmed field
		if field == "password_confirmation" {
			return "password", "The password confirmation does not match"
		}
		return field, "The " + FieldName(field) + " field does not match"
	default:
		return field, "The " + FieldName(field) + " field is invalid"
	}
}

// FieldName converts a snake_case field name to Title Case for display.
// "old_password" becomes "Old Password".
func FieldName(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
