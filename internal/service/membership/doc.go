// Package membership manages the pivot between contacts and lists.
//
// Each (contact, list) pair has at most one pivot row carrying its own
// subscription state, so a contact can be unsubscribed from one list while
// remaining subscribed to another. Every mutation recomputes the affected
// list's contacts_count in the same transaction, keeping the materialized
// aggregate equal to the number of subscribed members at all times.
package membership
