package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError describes one violated rule.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

// Error is returned for any draft that cannot be committed.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", f.Field, f.Rule, f.Param))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Rule))
		}
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

// Struct validates the `validate` tags of v.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Error{}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// Fail builds an Error for a rule that struct tags cannot express.
func Fail(field, rule string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Rule: rule}}}
}

// Join merges a tag validation result with additional rule violations.
func Join(err error, extra ...*Error) error {
	var out *Error
	if err != nil {
		if !errors.As(err, &out) {
			return err
		}
	}
	for _, e := range extra {
		if e == nil {
			continue
		}
		if out == nil {
			out = &Error{}
		}
		out.Fields = append(out.Fields, e.Fields...)
	}
	if out == nil {
		return nil
	}
	return out
}
