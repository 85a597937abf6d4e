// =============================
// File: internal/dex/clanker/errors.go
// =============================
package clanker

import (
	"errors"
	"strings"
)

// ErrInvalidConfig matches any ValidationErrors via errors.Is.
var ErrInvalidConfig = errors.New("invalid deploy config")

// ErrNonFiniteEstimate is returned when inputs are legal but so extreme
// that an estimate overflows or underflows to Inf or NaN.
var ErrNonFiniteEstimate = errors.New("estimate is not a finite number")

// ValidationError describes one rejected deploy config field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// ValidationErrors collects every problem found in a single pass so the
// wizard can show them all at once.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return "invalid deploy config: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Fields returns the names of all rejected fields.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, e := range v {
		fields = append(fields, e.Field)
	}
	return fields
}

func (v *ValidationErrors) add(field, reason string) {
	*v = append(*v, ValidationError{Field: field, Reason: reason})
}

// AsValidationErrors unwraps err into ValidationErrors when possible.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}
