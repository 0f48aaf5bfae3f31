package customfield

import "errors"

// Sentinel errors for the custom field service layer.
var (
	ErrNotFound      = errors.New("custom field not found")
	ErrDuplicateName = errors.New("a custom field with this name already exists")
)
