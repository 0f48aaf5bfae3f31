package api

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
)

// OwnerContextKey is the key for storing the owner id on the request context.
type OwnerContextKey struct{}

// GetOwnerIDFromRequest extracts the owner id from a request.
// Priority: 1. Context (from middleware), 2. X-Owner-ID header,
// 3. owner_id query param, 4. Dev mode env var fallback.
func GetOwnerIDFromRequest(r *http.Request) (string, error) {
	if id, ok := r.Context().Value(OwnerContextKey{}).(string); ok && id != "" {
		return id, nil
	}

	if idStr := r.Header.Get("X-Owner-ID"); idStr != "" {
		if id, err := uuid.Parse(idStr); err == nil {
			return id.String(), nil
		}
	}

	if idStr := r.URL.Query().Get("owner_id"); idStr != "" {
		if id, err := uuid.Parse(idStr); err == nil {
			return id.String(), nil
		}
	}

	devMode := os.Getenv("DEV_MODE") == "true" || os.Getenv("ENVIRONMENT") == "development"
	if devMode {
		if idStr := os.Getenv("DEFAULT_OWNER_ID"); idStr != "" {
			if id, err := uuid.Parse(idStr); err == nil {
				return id.String(), nil
			}
		}
	}

	return "", fmt.Errorf("owner id not found in request")
}

// RequireOwner rejects requests that carry no resolvable owner id and
// stores the resolved id on the context for handlers downstream.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := GetOwnerIDFromRequest(r)
		if err != nil {
			jsonError(w, "owner context required", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), OwnerContextKey{}, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ownerID reads the owner id a RequireOwner middleware stored earlier.
func ownerID(r *http.Request) string {
	id, _ := r.Context().Value(OwnerContextKey{}).(string)
	return id
}
