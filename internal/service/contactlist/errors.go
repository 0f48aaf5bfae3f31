package contactlist

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the contact list service layer.
var (
	ErrNotFound             = errors.New("contact list not found")
	ErrConfirmationRequired = errors.New("bulk delete requires confirmation")
	ErrUnknownBulkAction    = errors.New("unknown bulk action")
	ErrNoListsSelected      = errors.New("no lists selected")
)

// ValidationError carries one message per violated field. It is returned
// before any storage mutation; a failed validation never partially applies.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is a field-level validation error.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
