// Package validation provides composable field checks.
//
// A Check either passes (nil) or fails with a single *Error naming the
// offending field. First runs checks in order and stops at the first
// failure; All runs every check and collects the failures.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Error a field-level validation failure
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Campo '%s': %s", e.Field, e.Reason)
}

// Fail builds a validation failure
func Fail(field, reason string) *Error {
	return &Error{Field: field, Reason: reason}
}

// AsError extracts the validation failure from err
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Check a deferred validation
type Check func() error

// First runs checks in order and returns the first failure
func First(checks ...Check) error {
	for _, c := range checks {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

// Errors failures collected by All
type Errors []*Error

func (es Errors) Error() string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the individual failures to errors.Is/As
func (es Errors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// All runs every check and returns the collected failures, or nil.
// Non-validation errors abort immediately.
func All(checks ...Check) error {
	var errs Errors
	for _, c := range checks {
		err := c()
		if err == nil {
			continue
		}
		ve, ok := AsError(err)
		if !ok {
			return err
		}
		errs = append(errs, ve)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
