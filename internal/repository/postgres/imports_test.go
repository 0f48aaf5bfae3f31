package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ignite/contacthub/internal/domain"
	"github.com/ignite/contacthub/internal/service/imports"
)

func TestImportRepoAddErrorAppendsOnly(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewImportRepo(db)

	// Appending an error entry must not touch the failed counter; that
	// moves through AddProgress so errors and counts stay independent.
	mock.ExpectExec(regexp.QuoteMeta(
		`SET errors = COALESCE(errors, '[]'::jsonb) || $1::jsonb, updated_at = NOW() WHERE`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AddError(context.Background(), "owner-1", "import-1", domain.ImportError{
		Row:       7,
		Error:     "invalid email",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestImportRepoAddErrorNotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewImportRepo(db)

	mock.ExpectExec("UPDATE contact_imports").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AddError(context.Background(), "owner-2", "import-1", domain.ImportError{Row: 1})
	if err != imports.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
