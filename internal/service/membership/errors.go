package membership

import "errors"

// Sentinel errors for the membership service layer.
var (
	ErrListNotFound    = errors.New("contact list not found")
	ErrContactNotFound = errors.New("contact not found")
	ErrNotMember       = errors.New("contact is not a member of this list")
)
