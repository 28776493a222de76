package policies

import (
	"slices"

	"yuime-backend/internal/pkg/validation"
)

// Validate checks a bulk invitation before anything is sent. Rules short-circuit
// in a fixed order so the user always sees the same message for the same input:
// empty list, malformed address, duplicate address, missing role.
// A role outside allowed counts as missing.
func Validate(recipients []string, role string, allowed []string) error {
	if len(recipients) == 0 {
		return &ValidationError{Err: ErrEmptyRecipients}
	}
	if bad := validation.InvalidEmails(recipients); len(bad) > 0 {
		return &ValidationError{Err: ErrInvalidEmailFormat, Addresses: bad}
	}
	if dups := validation.Duplicates(recipients); len(dups) > 0 {
		return &ValidationError{Err: ErrDuplicateRecipients, Addresses: dups}
	}
	if role == "" || !slices.Contains(allowed, role) {
		return &ValidationError{Err: ErrMissingRole}
	}
	return nil
}
