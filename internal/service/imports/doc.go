// Package imports tracks CSV import jobs for contacts.
//
// The ingestion worker lives elsewhere; this package owns the job records
// and their lifecycle: pending, processing, then completed or failed. Row
// counters only ever grow, so progress reported to the UI never moves
// backwards.
package imports
