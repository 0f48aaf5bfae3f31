// Package customfield manages per-owner custom field definitions.
//
// Definitions are the schema behind a contact's custom_fields map. The
// contact service consults this package before writing a value, so
// deactivated definitions stop validating without losing stored data.
package customfield
