// Package contactlist implements contact list management.
//
// The service layer owns validation, bulk-action orchestration, and the
// user-facing outcome messages for list operations. It depends on the
// repository interface defined in this package and should never import
// from api/.
//
// Repository implementations live in repository/postgres/.
package contactlist
