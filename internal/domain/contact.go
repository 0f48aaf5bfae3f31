package domain

import (
	"strings"
	"time"
)

// ContactStatus enumerates the subscription states of a contact.
// Transitions are one-way business events; each one appends an activity row.
type ContactStatus string

const (
	ContactSubscribed   ContactStatus = "subscribed"
	ContactUnsubscribed ContactStatus = "unsubscribed"
	ContactBounced      ContactStatus = "bounced"
	ContactComplained   ContactStatus = "complained"
)

// Contact represents a single email contact owned by a user.
// (owner_id, email) is unique; email is stored lowercased and trimmed.
type Contact struct {
	ID                string        `json:"id" db:"id"`
	OwnerID           string        `json:"owner_id" db:"owner_id"`
	Email             string        `json:"email" db:"email"`
	FirstName         string        `json:"first_name" db:"first_name"`
	LastName          string        `json:"last_name" db:"last_name"`
	Phone             string        `json:"phone" db:"phone"`
	Company           string        `json:"company" db:"company"`
	JobTitle          string        `json:"job_title" db:"job_title"`
	CustomFields      JSON          `json:"custom_fields" db:"custom_fields"`
	Tags              Strings       `json:"tags" db:"tags"`
	Status            ContactStatus `json:"status" db:"status"`
	SubscribedAt      *time.Time    `json:"subscribed_at" db:"subscribed_at"`
	UnsubscribedAt    *time.Time    `json:"unsubscribed_at" db:"unsubscribed_at"`
	UnsubscribeReason string        `json:"unsubscribe_reason" db:"unsubscribe_reason"`
	Source            string        `json:"source" db:"source"`
	IPAddress         string        `json:"ip_address" db:"ip_address"`
	UserAgent         string        `json:"user_agent" db:"user_agent"`
	EmailVerified     bool          `json:"email_verified" db:"email_verified"`
	EmailVerifiedAt   *time.Time    `json:"email_verified_at" db:"email_verified_at"`
	VerificationToken string        `json:"-" db:"verification_token"`
	LastActivityAt    *time.Time    `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FullName joins first and last name.
func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// DisplayName returns the full name, falling back to the email address.
func (c *Contact) DisplayName() string {
	if name := c.FullName(); name != "" {
		return name
	}
	return c.Email
}

// Initials returns up to two uppercased initials from the full name.
func (c *Contact) Initials() string {
	var b strings.Builder
	for _, part := range strings.Fields(c.FullName()) {
		r := []rune(part)
		b.WriteString(strings.ToUpper(string(r[0])))
		if b.Len() >= 2 {
			break
		}
	}
	return b.String()
}

// HasTag reports whether the contact carries the given tag.
func (c *Contact) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
