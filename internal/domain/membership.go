package domain

import "time"

// SubscriptionStatus enumerates pivot-level subscription states.
// A contact can be unsubscribed from one list while subscribed to another.
type SubscriptionStatus string

const (
	SubscriptionSubscribed   SubscriptionStatus = "subscribed"
	SubscriptionUnsubscribed SubscriptionStatus = "unsubscribed"
)

// Membership is the pivot row between a contact and a list. At most one row
// exists per (contact, list) pair; the database enforces this with a unique
// constraint.
type Membership struct {
	ID                   string             `json:"id" db:"id"`
	ContactID            string             `json:"contact_id" db:"contact_id"`
	ListID               string             `json:"list_id" db:"list_id"`
	SubscriptionStatus   SubscriptionStatus `json:"subscription_status" db:"subscription_status"`
	SubscribedAt         *time.Time         `json:"subscribed_at" db:"subscribed_at"`
	UnsubscribedAt       *time.Time         `json:"unsubscribed_at" db:"unsubscribed_at"`
	SubscriptionSource   string             `json:"subscription_source" db:"subscription_source"`
	SubscriptionMetadata JSON               `json:"subscription_metadata" db:"subscription_metadata"`
	CreatedAt            time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" db:"updated_at"`
}
