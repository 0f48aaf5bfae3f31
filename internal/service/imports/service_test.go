package imports_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/ignite/contacthub/internal/domain"
	"github.com/ignite/contacthub/internal/service/imports"
)

type memRepo struct {
	mu   sync.Mutex
	jobs map[string]*domain.ContactImport
}

func newMemRepo() *memRepo {
	return &memRepo{jobs: make(map[string]*domain.ContactImport)}
}

func (m *memRepo) Get(_ context.Context, ownerID, id string) (*domain.ContactImport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.OwnerID != ownerID {
		return nil, imports.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, ownerID string, limit int) ([]domain.ContactImport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ContactImport
	for _, j := range m.jobs {
		if j.OwnerID == ownerID {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) Create(_ context.Context, job *domain.ContactImport) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memRepo) SetStatus(_ context.Context, ownerID, id string, change imports.StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.OwnerID != ownerID {
		return imports.ErrNotFound
	}
	j.Status = change.Status
	if change.ErrorMessage != "" {
		j.ErrorMessage = change.ErrorMessage
	}
	if change.StartedAt != nil {
		j.StartedAt = change.StartedAt
	}
	if change.CompletedAt != nil {
		j.CompletedAt = change.CompletedAt
	}
	return nil
}

func (m *memRepo) AddProgress(_ context.Context, ownerID, id string, p imports.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.OwnerID != ownerID {
		return imports.ErrNotFound
	}
	j.ProcessedRows += p.Processed
	j.SuccessfulImports += p.Successful
	j.FailedImports += p.Failed
	j.DuplicateContacts += p.Duplicates
	return nil
}

func (m *memRepo) AddError(_ context.Context, ownerID, id string, e domain.ImportError) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.OwnerID != ownerID {
		return imports.ErrNotFound
	}
	j.Errors = append(j.Errors, e)
	return nil
}

const testOwner = "owner-1"

func createJob(t *testing.T, svc *imports.Service, totalRows int) *domain.ContactImport {
	t.Helper()
	job, err := svc.Create(context.Background(), testOwner, imports.CreateInput{
		Filename:         "upload-abc.csv",
		OriginalFilename: "contacts.csv",
		FilePath:         "/tmp/upload-abc.csv",
		TotalRows:        totalRows,
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func TestCreatePending(t *testing.T) {
	svc := imports.NewService(newMemRepo())
	job := createJob(t, svc, 100)
	if job.Status != domain.ImportPending {
		t.Errorf("status = %s, want pending", job.Status)
	}
	if job.ProgressPercentage() != 0 {
		t.Errorf("progress = %v, want 0", job.ProgressPercentage())
	}
}

func TestLifecycle(t *testing.T) {
	repo := newMemRepo()
	svc := imports.NewService(repo)
	ctx := context.Background()
	job := createJob(t, svc, 50)

	// Completing a pending job skips processing and is rejected.
	if err := svc.MarkAsCompleted(ctx, testOwner, job.ID); err != imports.ErrInvalidStatus {
		t.Fatalf("complete from pending: expected ErrInvalidStatus, got %v", err)
	}

	if err := svc.MarkAsProcessing(ctx, testOwner, job.ID); err != nil {
		t.Fatalf("mark processing: %v", err)
	}
	got, _ := svc.Get(ctx, testOwner, job.ID)
	if got.Status != domain.ImportProcessing || got.StartedAt == nil {
		t.Errorf("job = %+v, want processing with started_at", got)
	}

	// Starting twice is rejected.
	if err := svc.MarkAsProcessing(ctx, testOwner, job.ID); err != imports.ErrInvalidStatus {
		t.Errorf("double start: expected ErrInvalidStatus, got %v", err)
	}

	if err := svc.MarkAsCompleted(ctx, testOwner, job.ID); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	got, _ = svc.Get(ctx, testOwner, job.ID)
	if got.Status != domain.ImportCompleted || got.CompletedAt == nil {
		t.Errorf("job = %+v, want completed with completed_at", got)
	}

	// Terminal states stay terminal.
	if err := svc.MarkAsFailed(ctx, testOwner, job.ID, "boom"); err != imports.ErrInvalidStatus {
		t.Errorf("fail after completion: expected ErrInvalidStatus, got %v", err)
	}
}

func TestMarkAsFailedFromPending(t *testing.T) {
	svc := imports.NewService(newMemRepo())
	ctx := context.Background()
	job := createJob(t, svc, 10)

	if err := svc.MarkAsFailed(ctx, testOwner, job.ID, "file unreadable"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	got, _ := svc.Get(ctx, testOwner, job.ID)
	if got.Status != domain.ImportFailed || got.ErrorMessage != "file unreadable" {
		t.Errorf("job = %+v, want failed with message", got)
	}
}

func TestProgressAccumulates(t *testing.T) {
	svc := imports.NewService(newMemRepo())
	ctx := context.Background()
	job := createJob(t, svc, 100)
	svc.MarkAsProcessing(ctx, testOwner, job.ID)

	for i := 0; i < 4; i++ {
		if err := svc.UpdateProgress(ctx, testOwner, job.ID, imports.Progress{
			Processed: 10, Successful: 8, Failed: 1, Duplicates: 1,
		}); err != nil {
			t.Fatalf("update progress: %v", err)
		}
	}

	got, _ := svc.Get(ctx, testOwner, job.ID)
	if got.ProcessedRows != 40 || got.SuccessfulImports != 32 || got.FailedImports != 4 || got.DuplicateContacts != 4 {
		t.Errorf("counters = %d/%d/%d/%d, want 40/32/4/4",
			got.ProcessedRows, got.SuccessfulImports, got.FailedImports, got.DuplicateContacts)
	}
	if got.ProgressPercentage() != 40 {
		t.Errorf("progress = %v, want 40", got.ProgressPercentage())
	}
	if got.SuccessRate() != 80 {
		t.Errorf("success rate = %v, want 80", got.SuccessRate())
	}

	// Negative increments are rejected.
	if err := svc.UpdateProgress(ctx, testOwner, job.ID, imports.Progress{Processed: -1}); err == nil {
		t.Error("expected error for negative increment")
	}
}

func TestAddError(t *testing.T) {
	svc := imports.NewService(newMemRepo())
	ctx := context.Background()
	job := createJob(t, svc, 10)

	if err := svc.AddError(ctx, testOwner, job.ID, 7, "invalid email"); err != nil {
		t.Fatalf("add error: %v", err)
	}
	got, _ := svc.Get(ctx, testOwner, job.ID)
	if len(got.Errors) != 1 || got.Errors[0].Row != 7 {
		t.Errorf("errors = %+v, want one entry for row 7", got.Errors)
	}
	// The failed counter only moves through UpdateProgress, so recording
	// an error must not bump it on its own.
	if got.FailedImports != 0 {
		t.Errorf("failed_imports = %d, want 0", got.FailedImports)
	}
}

func TestOwnerScoping(t *testing.T) {
	svc := imports.NewService(newMemRepo())
	job := createJob(t, svc, 10)

	if _, err := svc.Get(context.Background(), "owner-2", job.ID); err != imports.ErrNotFound {
		t.Fatalf("cross-owner get: expected ErrNotFound, got %v", err)
	}
}
