package contact

import "errors"

// Sentinel errors for the contact service layer.
var (
	ErrNotFound       = errors.New("contact not found")
	ErrDuplicateEmail = errors.New("a contact with this email already exists")
	ErrForbidden      = errors.New("contact belongs to a different owner")
	ErrInvalidEmail   = errors.New("invalid email address")

	// ErrInvalidFieldValue wraps custom field validation failures.
	ErrInvalidFieldValue = errors.New("invalid custom field value")
)
