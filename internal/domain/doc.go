// Package domain defines the core entities of the contact management
// platform: contacts, contact lists, the membership pivot between them,
// the append-only activity log, custom field definitions, and import jobs.
//
// Types here carry no behavior beyond derived attributes and invariant
// checks. Persistence lives in repository/postgres; business rules live in
// the service packages.
package domain
