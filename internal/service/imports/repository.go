package imports

import (
	"context"
	"time"

	"github.com/ignite/contacthub/internal/domain"
)

// Progress carries one batch of counter increments from the ingestion loop.
type Progress struct {
	Processed  int `json:"processed"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Duplicates int `json:"duplicates"`
}

// StatusChange moves a job between lifecycle states.
type StatusChange struct {
	Status       domain.ImportStatus
	ErrorMessage string
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// Repository defines the data access contract for import jobs. Every method
// is scoped by owner.
type Repository interface {
	// Get returns a job by id. Returns ErrNotFound when missing or owned
	// by someone else.
	Get(ctx context.Context, ownerID, id string) (*domain.ContactImport, error)

	// List returns the owner's jobs, newest first.
	List(ctx context.Context, ownerID string, limit int) ([]domain.ContactImport, error)

	// Create inserts a new pending job.
	Create(ctx context.Context, job *domain.ContactImport) (string, error)

	// SetStatus applies a lifecycle transition.
	SetStatus(ctx context.Context, ownerID, id string, change StatusChange) error

	// AddProgress increments the row counters.
	AddProgress(ctx context.Context, ownerID, id string, p Progress) error

	// AddError appends a row-level error entry. The failed counter is
	// advanced separately through AddProgress.
	AddError(ctx context.Context, ownerID, id string, e domain.ImportError) error
}
