package membership

import (
	"context"
	"time"

	"github.com/ignite/contacthub/internal/domain"
)

// DefaultPageSize is the fixed page size for member views.
const DefaultPageSize = 10

// MemberFilter controls search and pagination over a list's members.
type MemberFilter struct {
	Search   string // matches email and name, case-insensitive
	Status   string // all|subscribed|unsubscribed (pivot status)
	Page     int
	PageSize int
}

// Normalize applies defaults to a filter.
func (f *MemberFilter) Normalize() {
	if f.Status == "" {
		f.Status = "all"
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
}

// Member joins a contact with its pivot row for one list.
type Member struct {
	Contact domain.Contact    `json:"contact"`
	Pivot   domain.Membership `json:"pivot"`
}

// SubscriptionChange flips the pivot-level subscription state.
type SubscriptionChange struct {
	Status domain.SubscriptionStatus
	At     time.Time
}

// Repository defines the data access contract for list membership. Every
// method is owner-scoped: both the list and the contact must belong to the
// owner or the call fails with the matching not-found error.
//
// Attach, Detach, and SetSubscription recompute the list's contacts_count
// inside the same transaction as the pivot write.
type Repository interface {
	// Get returns the pivot row for a (list, contact) pair. Returns
	// ErrNotMember when no row exists.
	Get(ctx context.Context, ownerID, listID, contactID string) (*domain.Membership, error)

	// Attach upserts the pivot row. On conflict the existing row is
	// updated in place and its original subscribed_at is preserved.
	// Returns the stored row.
	Attach(ctx context.Context, ownerID string, m *domain.Membership) (*domain.Membership, error)

	// Detach removes the pivot row. Detaching a non-member is a no-op.
	Detach(ctx context.Context, ownerID, listID, contactID string) error

	// SetSubscription updates the pivot subscription status. Returns
	// ErrNotMember when no row exists.
	SetSubscription(ctx context.Context, ownerID, listID, contactID string, change SubscriptionChange) error

	// Members returns a filtered page of a list's members plus the total
	// count matching the filter.
	Members(ctx context.Context, ownerID, listID string, f MemberFilter) ([]Member, int, error)

	// ListsOf returns every list a contact belongs to, with pivot state.
	ListsOf(ctx context.Context, ownerID, contactID string) ([]ListEntry, error)
}

// ListEntry joins a list with the contact's pivot row.
type ListEntry struct {
	List  domain.ContactList `json:"list"`
	Pivot domain.Membership  `json:"pivot"`
}
