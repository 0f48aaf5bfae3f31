package contactlist

import (
	"context"

	"github.com/ignite/contacthub/internal/domain"
)

// DefaultPageSize is the fixed page size for list views.
const DefaultPageSize = 10

// SortFields whitelists the columns list views may sort by. Unknown fields
// fall back to created_at descending.
var SortFields = map[string]bool{
	"name":           true,
	"created_at":     true,
	"updated_at":     true,
	"contacts_count": true,
}

// Filter controls search, filtering, sorting, and pagination for list views.
type Filter struct {
	Search   string // case-insensitive substring over name OR description
	Type     string // all|static|dynamic
	Status   string // all|active|inactive
	SortBy   string
	SortDir  string // asc|desc
	Page     int
	PageSize int
}

// Normalize applies the documented defaults to a filter.
func (f *Filter) Normalize() {
	if f.Type == "" {
		f.Type = "all"
	}
	if f.Status == "" {
		f.Status = "all"
	}
	if !SortFields[f.SortBy] {
		f.SortBy = "created_at"
		f.SortDir = "desc"
	}
	if f.SortDir != "asc" && f.SortDir != "desc" {
		f.SortDir = "desc"
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
}

// UpdateFields holds the mutable fields for a list update.
type UpdateFields struct {
	Name        string
	Description string
	Type        domain.ListType
	IsActive    bool
}

// Repository defines the data access contract for contact lists.
// Every method is scoped by owner: rows belonging to another owner behave
// exactly as if they did not exist.
type Repository interface {
	// Get returns a single list. Returns ErrNotFound if it doesn't exist
	// or is owned by someone else.
	Get(ctx context.Context, ownerID, id string) (*domain.ContactList, error)

	// List returns lists matching the filter plus the total matching count.
	List(ctx context.Context, ownerID string, f Filter) ([]domain.ContactList, int, error)

	// Create inserts a new list and returns its ID.
	Create(ctx context.Context, l *domain.ContactList) (string, error)

	// Update replaces the editable fields of a list.
	Update(ctx context.Context, ownerID, id string, u UpdateFields) error

	// Delete detaches all memberships then removes the list, in one
	// transaction. Returns ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, ownerID, id string) error

	// ToggleActive flips is_active and returns the new value.
	ToggleActive(ctx context.Context, ownerID, id string) (bool, error)

	// SetActiveMany updates is_active on the owner's subset of ids and
	// returns the number of rows affected.
	SetActiveMany(ctx context.Context, ownerID string, ids []string, active bool) (int, error)

	// DeleteMany cascades-deletes the owner's subset of ids and returns
	// the number of lists removed.
	DeleteMany(ctx context.Context, ownerID string, ids []string) (int, error)

	// Stats computes the owner's dashboard aggregates.
	Stats(ctx context.Context, ownerID string) (*domain.ListStats, error)

	// TopLists ranks the owner's lists by subscribed member count.
	TopLists(ctx context.Context, ownerID string, limit int) ([]domain.TopList, error)

	// Selector returns the owner's active lists, optionally filtered by a
	// name substring, ordered by name.
	Selector(ctx context.Context, ownerID, search string) ([]domain.ContactList, error)

	// RecentSubscribed returns the most recently attached subscribed
	// members of a list.
	RecentSubscribed(ctx context.Context, ownerID, listID string, limit int) ([]domain.Contact, error)

	// RecentActivity returns the latest activities across a list's members.
	RecentActivity(ctx context.Context, ownerID, listID string, limit int) ([]domain.ContactActivity, error)
}
