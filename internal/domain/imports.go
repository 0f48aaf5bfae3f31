package domain

import (
	"fmt"
	"time"
)

// ImportStatus enumerates the lifecycle of an import job.
type ImportStatus string

const (
	ImportPending    ImportStatus = "pending"
	ImportProcessing ImportStatus = "processing"
	ImportCompleted  ImportStatus = "completed"
	ImportFailed     ImportStatus = "failed"
)

// ImportError records one failed row inside an import job.
type ImportError struct {
	Row       int       `json:"row"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// ContactImport is a CSV import job record. The ingestion loop itself runs
// outside this module and only reports progress back through the imports
// service. Counters increase monotonically.
type ContactImport struct {
	ID                string       `json:"id" db:"id"`
	OwnerID           string       `json:"owner_id" db:"owner_id"`
	ContactListID     *string      `json:"contact_list_id" db:"contact_list_id"`
	Filename          string       `json:"filename" db:"filename"`
	OriginalFilename  string       `json:"original_filename" db:"original_filename"`
	FilePath          string       `json:"file_path" db:"file_path"`
	Status            ImportStatus `json:"status" db:"status"`
	TotalRows         int          `json:"total_rows" db:"total_rows"`
	ProcessedRows     int          `json:"processed_rows" db:"processed_rows"`
	SuccessfulImports int          `json:"successful_imports" db:"successful_imports"`
	FailedImports     int          `json:"failed_imports" db:"failed_imports"`
	DuplicateContacts int          `json:"duplicate_contacts" db:"duplicate_contacts"`
	FieldMapping      JSON         `json:"field_mapping" db:"field_mapping"`
	ImportOptions     JSON         `json:"import_options" db:"import_options"`
	Errors            []ImportError `json:"errors" db:"errors"`
	ErrorMessage      string       `json:"error_message" db:"error_message"`
	StartedAt         *time.Time   `json:"started_at" db:"started_at"`
	CompletedAt       *time.Time   `json:"completed_at" db:"completed_at"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" db:"updated_at"`
}

// ProgressPercentage returns processed/total as a percentage, rounded to
// two decimals.
func (i *ContactImport) ProgressPercentage() float64 {
	if i.TotalRows == 0 {
		return 0
	}
	return round2(float64(i.ProcessedRows) / float64(i.TotalRows) * 100)
}

// SuccessRate returns successful/processed as a percentage.
func (i *ContactImport) SuccessRate() float64 {
	if i.ProcessedRows == 0 {
		return 0
	}
	return round2(float64(i.SuccessfulImports) / float64(i.ProcessedRows) * 100)
}

// Duration formats the elapsed run time, or "" when not yet finished.
func (i *ContactImport) Duration() string {
	if i.StartedAt == nil || i.CompletedAt == nil {
		return ""
	}
	d := i.CompletedAt.Sub(*i.StartedAt)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%.1f minutes", d.Minutes())
	default:
		return fmt.Sprintf("%.1f hours", d.Hours())
	}
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
