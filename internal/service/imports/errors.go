package imports

import "errors"

// Sentinel errors for the imports service layer.
var (
	ErrNotFound      = errors.New("import job not found")
	ErrInvalidStatus = errors.New("invalid import status transition")
)
