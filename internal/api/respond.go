package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ignite/contacthub/internal/service/contact"
	"github.com/ignite/contacthub/internal/service/contactlist"
	"github.com/ignite/contacthub/internal/service/customfield"
	"github.com/ignite/contacthub/internal/service/imports"
	"github.com/ignite/contacthub/internal/service/membership"
)

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// jsonStatus writes a JSON response with an explicit status code
func jsonStatus(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// jsonError writes a JSON error response
func jsonError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// serviceError maps service-layer errors onto HTTP responses. Validation
// errors carry their per-field messages; everything unexpected becomes a
// generic 500 so internals never leak to clients.
func serviceError(w http.ResponseWriter, err error) {
	if ve, ok := contactlist.IsValidation(err); ok {
		jsonStatus(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error": "validation failed", "fields": ve.Fields,
		})
		return
	}
	if ve, ok := customfield.IsValidation(err); ok {
		jsonStatus(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error": "validation failed", "fields": ve.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, contactlist.ErrNotFound),
		errors.Is(err, contact.ErrNotFound),
		errors.Is(err, membership.ErrListNotFound),
		errors.Is(err, membership.ErrContactNotFound),
		errors.Is(err, membership.ErrNotMember),
		errors.Is(err, customfield.ErrNotFound),
		errors.Is(err, imports.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, contact.ErrDuplicateEmail),
		errors.Is(err, customfield.ErrDuplicateName),
		errors.Is(err, imports.ErrInvalidStatus):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, contact.ErrForbidden):
		jsonError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, contact.ErrInvalidFieldValue):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, contact.ErrInvalidEmail),
		errors.Is(err, contactlist.ErrNoListsSelected),
		errors.Is(err, contactlist.ErrUnknownBulkAction),
		errors.Is(err, contactlist.ErrConfirmationRequired):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("[api] internal error: %v", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
	}
}

// decodeOptionalBody parses a JSON body when one is present; an empty or
// malformed body leaves dst untouched.
func decodeOptionalBody(r *http.Request, dst interface{}) {
	if r.Body == nil {
		return
	}
	_ = json.NewDecoder(r.Body).Decode(dst)
}

// decodeBody parses a JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
