package errors

import (
	"fmt"
	"strings"
)

// ValidationError carries structured detail about a rejected field value:
// which field failed, the value that was supplied, the set of accepted
// values (when the field has a closed set), and a "did you mean" suggestion
// derived from edit distance against the accepted values.
//
// ValidationError unwraps to ErrValidation so callers can use errors.Is().
type ValidationError struct {
	// Field is the name of the rejected field (e.g., "priority").
	Field string
	// Value is the rejected value as supplied by the caller.
	Value string
	// ValidValues lists accepted values for closed-set fields (may be empty).
	ValidValues []string
	// Reason is an optional free-text reason for open-ended fields.
	Reason string
}

// NewValidationError builds a ValidationError for a closed-set field.
func NewValidationError(field, value string, validValues []string) *ValidationError {
	return &ValidationError{Field: field, Value: value, ValidValues: validValues}
}

// NewValidationReason builds a ValidationError with a free-text reason,
// for fields without a closed value set (e.g., an empty title).
func NewValidationReason(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// Error implements the error interface. The message always surfaces the
// field and value; it appends valid values and a suggestion when available.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: invalid %s %q", ErrValidation.Error(), e.Field, e.Value)
	if e.Reason != "" {
		fmt.Fprintf(&b, " (%s)", e.Reason)
	}
	if len(e.ValidValues) > 0 {
		fmt.Fprintf(&b, ", valid values: %s", strings.Join(e.ValidValues, ", "))
	}
	if s := e.Suggestion(); s != "" {
		fmt.Fprintf(&b, ". Did you mean %q?", s)
	}
	return b.String()
}

// Unwrap returns ErrValidation so errors.Is(err, ErrValidation) succeeds.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Suggestion returns the valid value closest to the rejected value by edit
// distance, or an empty string when no candidate is close enough to be a
// plausible typo. A candidate qualifies when the distance is at most half
// its length.
func (e *ValidationError) Suggestion() string {
	if e.Value == "" || len(e.ValidValues) == 0 {
		return ""
	}
	value := strings.ToLower(e.Value)
	best := ""
	bestDist := -1
	for _, candidate := range e.ValidValues {
		d := editDistance(value, strings.ToLower(candidate))
		if bestDist == -1 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if best == "" || bestDist > len(best)/2 {
		return ""
	}
	return best
}

// editDistance computes the Levenshtein distance between two strings.
// It operates on runes so multi-byte input is counted correctly.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// minInt returns the smallest of the given ints.
func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
