// Package validate maps raw textual input to typed integer values.
// Validation is pure: no shared state, safe to call from any number of
// concurrent sessions.
package validate

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Validation errors. Each carries the exact user-facing message a
// feedback port must show.
var (
	ErrEmpty        = errors.New("Please enter a number.")
	ErrNotANumber   = errors.New("Invalid number.")
	ErrNotAnInteger = errors.New("Only integer values are supported.")
)

// ErrInvalidPolicy is returned when parsing an invalid policy string.
var ErrInvalidPolicy = errors.New("invalid parse policy")

// Policy decides what happens to numeric input with a fractional
// component. The default, PolicyReject, refuses it with ErrNotAnInteger.
// PolicyTruncate keeps the integer prefix, truncating toward zero
// ("3.14" parses as 3). A session applies exactly one policy uniformly.
type Policy int

// Parse policy constants.
const (
	PolicyReject Policy = iota
	PolicyTruncate
)

// ParsePolicy converts a string to a Policy value.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "reject":
		return PolicyReject, nil
	case "truncate":
		return PolicyTruncate, nil
	default:
		return PolicyReject, ErrInvalidPolicy
	}
}

// String returns the canonical name of the policy.
func (p Policy) String() string {
	if p == PolicyTruncate {
		return "truncate"
	}

	return "reject"
}

// Parse validates raw input and returns the integer value it denotes.
// Input is trimmed here; callers guarantee nothing. Empty or
// whitespace-only input returns ErrEmpty, non-numeric input returns
// ErrNotANumber, and fractional input is resolved by the policy.
func Parse(raw string, policy Policy) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, ErrEmpty
	}

	value, intErr := strconv.ParseInt(trimmed, 10, 64)
	if intErr == nil {
		return value, nil
	}

	floatValue, floatErr := strconv.ParseFloat(trimmed, 64)
	if floatErr != nil || math.IsNaN(floatValue) || math.IsInf(floatValue, 0) {
		return 0, ErrNotANumber
	}

	// Converting a float64 outside the int64 range is implementation
	// defined, so such input is refused under either policy.
	if floatValue < math.MinInt64 || floatValue >= math.MaxInt64 {
		return 0, ErrNotANumber
	}

	if policy == PolicyTruncate {
		return int64(floatValue), nil
	}

	return 0, ErrNotAnInteger
}

// IsValidationError reports whether err is one of the input validation
// errors produced by Parse.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmpty) || errors.Is(err, ErrNotANumber) || errors.Is(err, ErrNotAnInteger)
}
