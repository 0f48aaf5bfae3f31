package domain

import "time"

// ActivityType names a contact activity. The set is open-ended: business
// rules outside this module may introduce new types, so unknown values are
// carried through rather than rejected.
type ActivityType string

const (
	ActivitySubscribed         ActivityType = "subscribed"
	ActivityUnsubscribed       ActivityType = "unsubscribed"
	ActivityBounced            ActivityType = "bounced"
	ActivityComplained         ActivityType = "complained"
	ActivityEmailVerified      ActivityType = "email_verified"
	ActivityUpdated            ActivityType = "updated"
	ActivityImported           ActivityType = "imported"
	ActivityTagAdded           ActivityType = "tag_added"
	ActivityTagRemoved         ActivityType = "tag_removed"
	ActivityCustomFieldUpdated ActivityType = "custom_field_updated"
)

// ContactActivity is one append-only log entry for a contact. Rows are never
// mutated or deleted in normal flow.
type ContactActivity struct {
	ID           string       `json:"id" db:"id"`
	ContactID    string       `json:"contact_id" db:"contact_id"`
	OwnerID      string       `json:"owner_id" db:"owner_id"`
	ActivityType ActivityType `json:"activity_type" db:"activity_type"`
	Description  string       `json:"description" db:"description"`
	Properties   JSON         `json:"properties" db:"properties"`
	OldValues    JSON         `json:"old_values" db:"old_values"`
	NewValues    JSON         `json:"new_values" db:"new_values"`
	Source       string       `json:"source" db:"source"`
	IPAddress    string       `json:"ip_address" db:"ip_address"`
	UserAgent    string       `json:"user_agent" db:"user_agent"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

// Color maps an activity type to a UI color bucket, with a gray fallback
// for types this module doesn't know about.
func (a *ContactActivity) Color() string {
	switch a.ActivityType {
	case ActivitySubscribed, ActivityEmailVerified:
		return "green"
	case ActivityUnsubscribed, ActivityBounced, ActivityComplained:
		return "red"
	case ActivityUpdated, ActivityCustomFieldUpdated:
		return "blue"
	case ActivityImported:
		return "purple"
	case ActivityTagAdded, ActivityTagRemoved:
		return "yellow"
	default:
		return "gray"
	}
}
