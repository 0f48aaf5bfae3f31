package customfield

import (
	"context"

	"github.com/ignite/contacthub/internal/domain"
)

// UpdateFields holds the editable attributes of a field definition. The
// name and type are fixed after creation so stored values stay coherent.
type UpdateFields struct {
	Label           string
	Options         domain.Strings
	DefaultValue    string
	IsRequired      bool
	IsActive        bool
	SortOrder       int
	Description     string
	ValidationRules domain.Strings
}

// Repository defines the data access contract for custom field definitions.
// Every method is scoped by owner.
type Repository interface {
	// Get returns a definition by id. Returns ErrNotFound when missing or
	// owned by someone else.
	Get(ctx context.Context, ownerID, id string) (*domain.ContactCustomField, error)

	// GetByName returns a definition by its unique per-owner name.
	GetByName(ctx context.Context, ownerID, name string) (*domain.ContactCustomField, error)

	// List returns the owner's definitions ordered by sort_order, then
	// name. activeOnly limits the result to active definitions.
	List(ctx context.Context, ownerID string, activeOnly bool) ([]domain.ContactCustomField, error)

	// Create inserts a new definition. Returns ErrDuplicateName when the
	// (owner, name) pair already exists.
	Create(ctx context.Context, f *domain.ContactCustomField) (string, error)

	// Update applies the editable fields.
	Update(ctx context.Context, ownerID, id string, u UpdateFields) error

	// Delete removes a definition. Stored contact values keyed by the
	// field's name are left in place.
	Delete(ctx context.Context, ownerID, id string) error
}
