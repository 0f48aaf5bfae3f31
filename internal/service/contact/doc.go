// Package contact implements contact lifecycle management.
//
// Status transitions (subscribe, bounce, complain, verify) are one-way
// business events: each atomically updates the contact row and appends one
// activity log entry. The repository contract guarantees both happen in a
// single transaction or not at all.
package contact
