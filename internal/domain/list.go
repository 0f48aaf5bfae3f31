package domain

import "time"

// ListType enumerates how a list's membership is maintained.
type ListType string

const (
	// ListStatic membership changes only through explicit attach/detach.
	ListStatic ListType = "static"
	// ListDynamic membership is derived from segmentation rules. The rules
	// are stored opaquely; no evaluation engine exists in this module.
	ListDynamic ListType = "dynamic"
)

// ContactList is a named collection of contacts owned by a user.
//
// ContactsCount is a materialized aggregate: it must always equal the number
// of members whose pivot subscription_status is "subscribed". Every
// membership mutation recomputes it inside the same transaction.
type ContactList struct {
	ID                string     `json:"id" db:"id"`
	OwnerID           string     `json:"owner_id" db:"owner_id"`
	Name              string     `json:"name" db:"name"`
	Description       string     `json:"description" db:"description"`
	Type              ListType   `json:"type" db:"type"`
	SegmentationRules JSON       `json:"segmentation_rules" db:"segmentation_rules"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	ContactsCount     int        `json:"contacts_count" db:"contacts_count"`
	LastCleanedAt     *time.Time `json:"last_cleaned_at" db:"last_cleaned_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// ListStats holds the dashboard aggregates for one owner.
type ListStats struct {
	TotalLists         int     `json:"total_lists"`
	ActiveLists        int     `json:"active_lists"`
	TotalContacts      int     `json:"total_contacts"`
	SubscribedContacts int     `json:"subscribed_contacts"`
	RecentLists        int     `json:"recent_lists"`
	ContactGrowth      float64 `json:"contact_growth"`
}

// TopList is a list ranked by subscribed member count.
type TopList struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	SubscribedCount int    `json:"subscribed_count"`
}
