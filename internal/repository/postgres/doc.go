// Package postgres implements the service repository contracts against
// PostgreSQL using database/sql and lib/pq.
//
// Writes that must stay consistent with the contacts_count aggregate run
// inside a transaction and recompute the affected list's count before
// committing.
package postgres
