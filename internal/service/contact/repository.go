package contact

import (
	"context"
	"time"

	"github.com/ignite/contacthub/internal/domain"
)

// DefaultPageSize is the fixed page size for contact search views.
const DefaultPageSize = 10

// Filter controls search and pagination for contact views. Search matches
// case-insensitively against email, first name, last name, and company.
type Filter struct {
	Search   string
	Status   string // all|subscribed|unsubscribed|bounced|complained
	Tag      string
	Page     int
	PageSize int
}

// Normalize applies defaults to a filter.
func (f *Filter) Normalize() {
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

// UpdateFields holds the mutable profile fields of a contact.
// Nil fields are not applied.
type UpdateFields struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Company   *string
	JobTitle  *string
}

// StatusUpdate describes a status-transition write. Nil fields are left
// untouched; Clear* flags null the corresponding columns.
type StatusUpdate struct {
	Status                 *domain.ContactStatus
	SubscribedAt           *time.Time
	UnsubscribedAt         *time.Time
	UnsubscribeReason      *string
	ClearUnsubscribed      bool
	EmailVerified          *bool
	EmailVerifiedAt        *time.Time
	ClearVerificationToken bool
	LastActivityAt         *time.Time
}

// Repository defines the data access contract for contacts. Every read and
// write is scoped by owner; rows belonging to another owner behave as if
// they did not exist, except OwnerOf which supports the Forbidden check on
// activity writes.
type Repository interface {
	// Get returns a single contact. Returns ErrNotFound if it doesn't
	// exist or is owned by someone else.
	Get(ctx context.Context, ownerID, id string) (*domain.Contact, error)

	// Search returns contacts matching the filter plus the total count.
	Search(ctx context.Context, ownerID string, f Filter) ([]domain.Contact, int, error)

	// Create inserts a new contact. Returns ErrDuplicateEmail when the
	// (owner, email) pair already exists.
	Create(ctx context.Context, c *domain.Contact) (string, error)

	// Update applies the non-nil profile fields.
	Update(ctx context.Context, ownerID, id string, u UpdateFields, activity *domain.ContactActivity) error

	// Delete removes the contact and detaches it from all lists, in one
	// transaction. List counts are recomputed for every affected list.
	Delete(ctx context.Context, ownerID, id string) error

	// ApplyStatus atomically applies a status update and appends the
	// activity row. Both commit together or neither is visible.
	ApplyStatus(ctx context.Context, ownerID, id string, u StatusUpdate, activity *domain.ContactActivity) error

	// SetTags replaces the tag set and appends the activity row in one
	// transaction.
	SetTags(ctx context.Context, ownerID, id string, tags domain.Strings, activity *domain.ContactActivity) error

	// SetCustomFields replaces the custom field values and appends the
	// activity row in one transaction.
	SetCustomFields(ctx context.Context, ownerID, id string, fields domain.JSON, activity *domain.ContactActivity) error

	// AddActivity appends an activity row for an owned contact.
	AddActivity(ctx context.Context, a *domain.ContactActivity) error

	// Activities returns the latest activity rows for a contact, newest
	// first.
	Activities(ctx context.Context, ownerID, contactID string, limit int) ([]domain.ContactActivity, error)

	// OwnerOf reports which owner a contact belongs to, regardless of the
	// caller. Returns ErrNotFound for unknown ids.
	OwnerOf(ctx context.Context, contactID string) (string, error)
}

// FieldDefinitions resolves custom field schemas for value validation.
// Implemented by the customfield service.
type FieldDefinitions interface {
	GetByName(ctx context.Context, ownerID, name string) (*domain.ContactCustomField, error)
}
