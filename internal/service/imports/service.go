package imports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/contacthub/internal/domain"
)

// Service implements import job lifecycle management.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates an imports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInput holds the fields for registering a new import job.
type CreateInput struct {
	ContactListID    *string     `json:"contact_list_id"`
	Filename         string      `json:"filename"`
	OriginalFilename string      `json:"original_filename"`
	FilePath         string      `json:"file_path"`
	TotalRows        int         `json:"total_rows"`
	FieldMapping     domain.JSON `json:"field_mapping"`
	ImportOptions    domain.JSON `json:"import_options"`
}

// Get returns a job scoped to its owner.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*domain.ContactImport, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// List returns the owner's most recent jobs.
func (s *Service) List(ctx context.Context, ownerID string, limit int) ([]domain.ContactImport, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, ownerID, limit)
}

// Create registers a new pending import job.
func (s *Service) Create(ctx context.Context, ownerID string, input CreateInput) (*domain.ContactImport, error) {
	now := s.now()
	job := &domain.ContactImport{
		ID:               uuid.New().String(),
		OwnerID:          ownerID,
		ContactListID:    input.ContactListID,
		Filename:         input.Filename,
		OriginalFilename: input.OriginalFilename,
		FilePath:         input.FilePath,
		Status:           domain.ImportPending,
		TotalRows:        input.TotalRows,
		FieldMapping:     input.FieldMapping,
		ImportOptions:    input.ImportOptions,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	id, err := s.repo.Create(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("create import job: %w", err)
	}
	job.ID = id
	return job, nil
}

// MarkAsProcessing moves a pending job into the processing state and stamps
// its start time.
func (s *Service) MarkAsProcessing(ctx context.Context, ownerID, id string) error {
	job, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if job.Status != domain.ImportPending {
		return ErrInvalidStatus
	}
	now := s.now()
	return s.repo.SetStatus(ctx, ownerID, id, StatusChange{
		Status:    domain.ImportProcessing,
		StartedAt: &now,
	})
}

// MarkAsCompleted finishes a processing job.
func (s *Service) MarkAsCompleted(ctx context.Context, ownerID, id string) error {
	job, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if job.Status != domain.ImportProcessing {
		return ErrInvalidStatus
	}
	now := s.now()
	return s.repo.SetStatus(ctx, ownerID, id, StatusChange{
		Status:      domain.ImportCompleted,
		CompletedAt: &now,
	})
}

// MarkAsFailed finishes a job with a terminal error. Allowed from pending
// or processing, so setup failures are also recorded.
func (s *Service) MarkAsFailed(ctx context.Context, ownerID, id, message string) error {
	job, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if job.Status == domain.ImportCompleted || job.Status == domain.ImportFailed {
		return ErrInvalidStatus
	}
	now := s.now()
	return s.repo.SetStatus(ctx, ownerID, id, StatusChange{
		Status:       domain.ImportFailed,
		ErrorMessage: message,
		CompletedAt:  &now,
	})
}

// UpdateProgress adds a batch of counter increments to a processing job.
// Negative increments are rejected so counters stay monotonic.
func (s *Service) UpdateProgress(ctx context.Context, ownerID, id string, p Progress) error {
	if p.Processed < 0 || p.Successful < 0 || p.Failed < 0 || p.Duplicates < 0 {
		return fmt.Errorf("progress increments must be non-negative")
	}
	if p == (Progress{}) {
		return nil
	}
	return s.repo.AddProgress(ctx, ownerID, id, p)
}

// AddError records a row-level failure on the job. It only appends the
// error entry; callers report the failed count via UpdateProgress.
func (s *Service) AddError(ctx context.Context, ownerID, id string, row int, message string) error {
	return s.repo.AddError(ctx, ownerID, id, domain.ImportError{
		Row:       row,
		Error:     message,
		Timestamp: s.now(),
	})
}
