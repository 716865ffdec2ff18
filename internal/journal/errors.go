package journal

import (
	"errors"
	"fmt"
)

// Standard journal errors. Surfaces map these to user-facing failures;
// none of them should ever terminate the process.
var (
	// ErrNotFound is returned when no trade exists for an (id, owner) pair.
	ErrNotFound = errors.New("trade not found")

	// ErrDerivedField is returned by surfaces that accept raw field maps
	// when a patch names a derived field (charges, gross/net P&L). Derived
	// values are only ever produced by recomputation.
	ErrDerivedField = errors.New("derived fields cannot be set directly")

	// ErrPsychologyBlocked is returned when the declared emotional state
	// is on the configured blocklist.
	ErrPsychologyBlocked = errors.New("trade entry blocked in current psychological state")
)

// ValidationError names the input field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a field validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
