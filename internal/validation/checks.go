package validation

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	numericPattern = regexp.MustCompile(`^\d+$`)
	// looseEmailPattern accepts any domain part after the '@'
	looseEmailPattern  = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)
	strictEmailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phonePattern       = regexp.MustCompile(`^[0-9]{7,10}$`)
	cedulaPattern      = regexp.MustCompile(`^[0-9]{6,10}$`)
)

// Number numeric kinds accepted by the range checks
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// NotEmpty fails on empty or blank strings
func NotEmpty(field, value string) Check {
	return func() error {
		if strings.TrimSpace(value) == "" {
			return Fail(field, "Cannot be empty")
		}
		return nil
	}
}

// NotNil fails on nil, including typed nil pointers
func NotNil(field string, value any) Check {
	return func() error {
		if isNil(value) {
			return Fail(field, "Cannot be null")
		}
		return nil
	}
}

// finite NaN and the infinities compare false against every bound
func finite[N Number](value N) bool {
	f := float64(value)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Positive fails when value <= 0, NaN or infinite
func Positive[N Number](field string, value N) Check {
	return func() error {
		if !finite(value) {
			return Fail(field, "Must be a finite number")
		}
		if value <= 0 {
			return Fail(field, "Must be positive")
		}
		return nil
	}
}

// MinLength counts runes
func MinLength(field, value string, min int) Check {
	return func() error {
		if utf8.RuneCountInString(value) < min {
			return Fail(field, fmt.Sprintf("Min length: %d", min))
		}
		return nil
	}
}

// MaxLength counts runes
func MaxLength(field, value string, max int) Check {
	return func() error {
		if utf8.RuneCountInString(value) > max {
			return Fail(field, fmt.Sprintf("Max length: %d", max))
		}
		return nil
	}
}

// Numeric digits only
func Numeric(field, value string) Check {
	return func() error {
		if !numericPattern.MatchString(value) {
			return Fail(field, "Must be numeric")
		}
		return nil
	}
}

// Email service-layer email check: a local part and any non-empty domain.
// "user@domain" passes; use StrictEmail to also require a TLD.
func Email(value string) Check {
	return func() error {
		if value == "" || !looseEmailPattern.MatchString(value) {
			return Fail("email", "Invalid email format")
		}
		return nil
	}
}

// StrictEmail utility-layer email check requiring a domain with a TLD of
// at least two letters
func StrictEmail(value string) Check {
	return func() error {
		if !strictEmailPattern.MatchString(strings.TrimSpace(value)) {
			return Fail("email", "Formato de email invalido")
		}
		return nil
	}
}

// InSet fails when value is not one of allowed. Empty values report "Cannot be null".
func InSet(field, value string, allowed ...string) Check {
	return func() error {
		if value == "" {
			return Fail(field, "Cannot be null")
		}
		for _, a := range allowed {
			if value == a {
				return nil
			}
		}
		return Fail(field, "Invalid value. Allowed: "+strings.Join(allowed, ", "))
	}
}

// Range inclusive bounds; NaN and infinities are out of range
func Range[N Number](field string, value, min, max N) Check {
	return func() error {
		if !finite(value) || value < min || value > max {
			return Fail(field, fmt.Sprintf("Debe estar entre %v y %v", min, max))
		}
		return nil
	}
}

// PositiveInt nil or non-positive values fail
func PositiveInt(field string, value *int) Check {
	return func() error {
		if value == nil || *value <= 0 {
			return Fail(field, "Debe ser un numero entero positivo")
		}
		return nil
	}
}

// Phone 7 to 10 digits
func Phone(value string) Check {
	return func() error {
		if !phonePattern.MatchString(strings.TrimSpace(value)) {
			return Fail("telefono", "Debe contener entre 7 y 10 digitos")
		}
		return nil
	}
}

// Cedula identification number, 6 to 10 digits
func Cedula(value string) Check {
	return func() error {
		if !cedulaPattern.MatchString(strings.TrimSpace(value)) {
			return Fail("cedula", "Debe contener entre 6 y 10 digitos")
		}
		return nil
	}
}

// When runs check only if cond holds
func When(cond bool, check Check) Check {
	return func() error {
		if !cond {
			return nil
		}
		return check()
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
