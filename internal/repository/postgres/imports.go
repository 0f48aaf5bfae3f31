package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ignite/contacthub/internal/domain"
	"github.com/ignite/contacthub/internal/service/imports"
)

// ImportRepo implements imports.Repository against PostgreSQL.
type ImportRepo struct{ db *sql.DB }

// NewImportRepo creates a Postgres-backed import job repository.
func NewImportRepo(db *sql.DB) *ImportRepo { return &ImportRepo{db: db} }

const importColumns = `id, owner_id, contact_list_id, filename,
       COALESCE(original_filename,''), COALESCE(file_path,''), status,
       total_rows, processed_rows, successful_imports, failed_imports,
       duplicate_contacts, field_mapping, import_options, errors,
       COALESCE(error_message,''), started_at, completed_at,
       created_at, updated_at`

func scanImport(row interface{ Scan(...interface{}) error }, j *domain.ContactImport) error {
	var errsRaw []byte
	err := row.Scan(
		&j.ID, &j.OwnerID, &j.ContactListID, &j.Filename,
		&j.OriginalFilename, &j.FilePath, &j.Status,
		&j.TotalRows, &j.ProcessedRows, &j.SuccessfulImports, &j.FailedImports,
		&j.DuplicateContacts, &j.FieldMapping, &j.ImportOptions, &errsRaw,
		&j.ErrorMessage, &j.StartedAt, &j.CompletedAt,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if len(errsRaw) > 0 {
		if err := json.Unmarshal(errsRaw, &j.Errors); err != nil {
			return fmt.Errorf("decode import errors: %w", err)
		}
	}
	return nil
}

func (r *ImportRepo) Get(ctx context.Context, ownerID, id string) (*domain.ContactImport, error) {
	j := &domain.ContactImport{}
	err := scanImport(r.db.QueryRowContext(ctx, `
		SELECT `+importColumns+`
		FROM contact_imports
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID), j)
	if err == sql.ErrNoRows {
		return nil, imports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get import: %w", err)
	}
	return j, nil
}

func (r *ImportRepo) List(ctx context.Context, ownerID string, limit int) ([]domain.ContactImport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+importColumns+`
		FROM contact_imports
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	var out []domain.ContactImport
	for rows.Next() {
		var j domain.ContactImport
		if err := scanImport(rows, &j); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *ImportRepo) Create(ctx context.Context, job *domain.ContactImport) (string, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contact_imports
			(id, owner_id, contact_list_id, filename, original_filename,
			 file_path, status, total_rows, field_mapping, import_options,
			 errors, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, '[]', NOW(), NOW())
	`, job.ID, job.OwnerID, job.ContactListID, job.Filename, job.OriginalFilename,
		job.FilePath, job.Status, job.TotalRows, job.FieldMapping, job.ImportOptions)
	if err != nil {
		return "", fmt.Errorf("create import: %w", err)
	}
	return job.ID, nil
}

func (r *ImportRepo) SetStatus(ctx context.Context, ownerID, id string, change imports.StatusChange) error {
	sets := "status = $1, updated_at = NOW()"
	args := []interface{}{change.Status}
	idx := 2
	if change.ErrorMessage != "" {
		sets += fmt.Sprintf(", error_message = $%d", idx)
		args = append(args, change.ErrorMessage)
		idx++
	}
	if change.StartedAt != nil {
		sets += fmt.Sprintf(", started_at = $%d", idx)
		args = append(args, *change.StartedAt)
		idx++
	}
	if change.CompletedAt != nil {
		sets += fmt.Sprintf(", completed_at = $%d", idx)
		args = append(args, *change.CompletedAt)
		idx++
	}

	q := fmt.Sprintf("UPDATE contact_imports SET %s WHERE id = $%d AND owner_id = $%d",
		sets, idx, idx+1)
	args = append(args, id, ownerID)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("set import status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return imports.ErrNotFound
	}
	return nil
}

func (r *ImportRepo) AddProgress(ctx context.Context, ownerID, id string, p imports.Progress) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE contact_imports
		SET processed_rows = processed_rows + $1,
		    successful_imports = successful_imports + $2,
		    failed_imports = failed_imports + $3,
		    duplicate_contacts = duplicate_contacts + $4,
		    updated_at = NOW()
		WHERE id = $5 AND owner_id = $6
	`, p.Processed, p.Successful, p.Failed, p.Duplicates, id, ownerID)
	if err != nil {
		return fmt.Errorf("add import progress: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return imports.ErrNotFound
	}
	return nil
}

func (r *ImportRepo) AddError(ctx context.Context, ownerID, id string, e domain.ImportError) error {
	entry, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode import error: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE contact_imports
		SET errors = COALESCE(errors, '[]'::jsonb) || $1::jsonb,
		    updated_at = NOW()
		WHERE id = $2 AND owner_id = $3
	`, string(entry), id, ownerID)
	if err != nil {
		return fmt.Errorf("add import error: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return imports.ErrNotFound
	}
	return nil
}
