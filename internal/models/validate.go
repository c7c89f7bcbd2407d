// ABOUTME: Range validation for engine inputs using go-playground/validator.
// ABOUTME: Produces a ValidationError with human-readable reasons.
package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidationError lists every range violation found in the inputs.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Reasons, "; ")
}

func (e *ValidationError) add(reasons ...string) {
	e.Reasons = append(e.Reasons, reasons...)
}

func (e *ValidationError) orNil() error {
	if len(e.Reasons) == 0 {
		return nil
	}
	return e
}

// ValidateProfile checks that every required profile field is present and in range.
func ValidateProfile(p *Profile) error {
	if p == nil {
		return &ValidationError{Reasons: []string{"profile is required"}}
	}
	verr := &ValidationError{}
	verr.add(reasons("profile", validate.Struct(p))...)
	return verr.orNil()
}

// ValidateDrinkEvents checks every event in the ledger.
func ValidateDrinkEvents(events []*DrinkEvent) error {
	verr := &ValidationError{}
	for i, e := range events {
		if e == nil {
			verr.add(fmt.Sprintf("drink[%d] is nil", i))
			continue
		}
		verr.add(reasons(fmt.Sprintf("drink[%d]", i), validate.Struct(e))...)
	}
	return verr.orNil()
}

// ValidateSignals checks the optional daily signals that are present.
func ValidateSignals(s Signals) error {
	verr := &ValidationError{}
	if s.Sleep != nil {
		verr.add(reasons("sleep", validate.Struct(s.Sleep))...)
	}
	if s.Stress != nil {
		verr.add(reasons("stress", validate.Struct(s.Stress))...)
	}
	if s.Exercise != nil {
		verr.add(reasons("exercise", validate.Struct(s.Exercise))...)
	}
	for i, m := range s.Meals {
		if m.IsZero() {
			verr.add(fmt.Sprintf("meal[%d].timestamp is required", i))
		}
	}
	return verr.orNil()
}

// Validate runs a single struct through the validator, for write paths.
func Validate(v any) error {
	verr := &ValidationError{}
	verr.add(reasons("", validate.Struct(v))...)
	return verr.orNil()
}

func reasons(scope string, err error) []string {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		if scope != "" {
			field = scope + "." + field
		}
		out = append(out, describe(field, fe))
	}
	return out
}

func describe(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gte":
		return fmt.Sprintf("%s must be at least %s (got %v)", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be at most %s (got %v)", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got %v)", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
