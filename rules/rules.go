// Package rules provides named validators for reactivemodel: the
// required/number/min/email built-ins, plus the New(tag, message,
// predicate) Rule constructor and its WithMessage derivation. Predicates are
// built on github.com/go-playground/validator/v10's single-value Var
// validation rather than hand-rolled regexes.
package rules

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/joeycumines/go-reactivemodel"
)

// validate is a package-level singleton, mirroring the validator.New()
// singleton pattern used for ad-hoc value checks elsewhere in the ecosystem.
var validate = validator.New()

// Rule is a named, re-taggable [reactivemodel.Validator]: a tag, a message,
// and a predicate. It has the same underlying type as
// reactivemodel.Validator, so it converts to one with [Rule.Validator] or a
// plain type conversion.
type Rule reactivemodel.Validator

// New constructs a Rule from a tag, message and predicate.
func New(tag, message string, predicate reactivemodel.Predicate) Rule {
	return Rule{Tag: tag, Message: message, Predicate: predicate}
}

// WithMessage returns a new Rule sharing this one's tag and predicate but
// with a different message.
func (r Rule) WithMessage(message string) Rule {
	r.Message = message
	return r
}

// Validator converts r to the [reactivemodel.Validator] the engine consumes.
func (r Rule) Validator() reactivemodel.Validator {
	return reactivemodel.Validator(r)
}

// Required rejects nil, zero-value (including empty-string), and nil
// slice/map candidates. An empty but non-nil slice or map is accepted.
func Required() Rule {
	return New("required", "This field is required", func(_ context.Context, value any) (bool, error) {
		return validateVar(value, "required")
	})
}

// Number accepts any numeric value, or a string representation of one.
func Number() Rule {
	return New("number", "Must be a number", func(_ context.Context, value any) (bool, error) {
		return validateVar(value, "numeric")
	})
}

// Min enforces a minimum: numeric values must be >= n, strings must have
// length >= n, and slices/maps must have >= n elements, following the
// validator library's usual "min" semantics across comparable kinds.
func Min(n float64) Rule {
	tag := "min=" + strconv.FormatFloat(n, 'f', -1, 64)
	return New("min", fmt.Sprintf("Must be at least %v", n), func(_ context.Context, value any) (bool, error) {
		return validateVar(value, tag)
	})
}

// Email validates an RFC 5322-ish email address shape.
func Email() Rule {
	return New("email", "Must be a valid email address", func(_ context.Context, value any) (bool, error) {
		return validateVar(value, "email")
	})
}

func validateVar(value any, tag string) (bool, error) {
	if value == nil {
		return false, nil
	}
	if err := validate.Var(value, tag); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
