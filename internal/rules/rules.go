// Package rules holds the domain calculators: infestation index, severity
// scales, area containment, pest alerting, recommendations and the
// inspection status machine.
package rules

import (
	"errors"
	"fmt"
)

// Violation a named business rule broken by otherwise well-formed data
type Violation struct {
	Rule    string
	Entity  string
	Message string
}

func (v *Violation) Error() string {
	if v.Entity == "" {
		return fmt.Sprintf("Regla '%s' violada: %s", v.Rule, v.Message)
	}
	return fmt.Sprintf("Regla '%s' violada en %s: %s", v.Rule, v.Entity, v.Message)
}

// Violate builds a rule violation
func Violate(rule, entity, message string) *Violation {
	return &Violation{Rule: rule, Entity: entity, Message: message}
}

// AsViolation extracts the violation from err
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
