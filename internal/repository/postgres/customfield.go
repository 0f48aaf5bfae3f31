package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/contacthub/internal/domain"
	"github.com/ignite/contacthub/internal/service/customfield"
)

// CustomFieldRepo implements customfield.Repository against PostgreSQL.
type CustomFieldRepo struct{ db *sql.DB }

// NewCustomFieldRepo creates a Postgres-backed custom field repository.
func NewCustomFieldRepo(db *sql.DB) *CustomFieldRepo { return &CustomFieldRepo{db: db} }

const fieldColumns = `id, owner_id, name, label, type, options,
       COALESCE(default_value,''), is_required, is_active, sort_order,
       COALESCE(description,''), validation_rules, created_at, updated_at`

func scanField(row interface{ Scan(...interface{}) error }, f *domain.ContactCustomField) error {
	return row.Scan(
		&f.ID, &f.OwnerID, &f.Name, &f.Label, &f.Type, &f.Options,
		&f.DefaultValue, &f.IsRequired, &f.IsActive, &f.SortOrder,
		&f.Description, &f.ValidationRules, &f.CreatedAt, &f.UpdatedAt,
	)
}

func (r *CustomFieldRepo) Get(ctx context.Context, ownerID, id string) (*domain.ContactCustomField, error) {
	f := &domain.ContactCustomField{}
	err := scanField(r.db.QueryRowContext(ctx, `
		SELECT `+fieldColumns+`
		FROM contact_custom_fields
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID), f)
	if err == sql.ErrNoRows {
		return nil, customfield.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get custom field: %w", err)
	}
	return f, nil
}

func (r *CustomFieldRepo) GetByName(ctx context.Context, ownerID, name string) (*domain.ContactCustomField, error) {
	f := &domain.ContactCustomField{}
	err := scanField(r.db.QueryRowContext(ctx, `
		SELECT `+fieldColumns+`
		FROM contact_custom_fields
		WHERE owner_id = $1 AND name = $2
	`, ownerID, name), f)
	if err == sql.ErrNoRows {
		return nil, customfield.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get custom field by name: %w", err)
	}
	return f, nil
}

func (r *CustomFieldRepo) List(ctx context.Context, ownerID string, activeOnly bool) ([]domain.ContactCustomField, error) {
	q := `SELECT ` + fieldColumns + ` FROM contact_custom_fields WHERE owner_id = $1`
	if activeOnly {
		q += ` AND is_active = true`
	}
	q += ` ORDER BY sort_order ASC, name ASC`

	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list custom fields: %w", err)
	}
	defer rows.Close()

	var out []domain.ContactCustomField
	for rows.Next() {
		var f domain.ContactCustomField
		if err := scanField(rows, &f); err != nil {
			return nil, fmt.Errorf("scan custom field: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *CustomFieldRepo) Create(ctx context.Context, f *domain.ContactCustomField) (string, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contact_custom_fields
			(id, owner_id, name, label, type, options, default_value,
			 is_required, is_active, sort_order, description, validation_rules,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`, f.ID, f.OwnerID, f.Name, f.Label, f.Type, f.Options, f.DefaultValue,
		f.IsRequired, f.IsActive, f.SortOrder, f.Description, f.ValidationRules)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return "", customfield.ErrDuplicateName
		}
		return "", fmt.Errorf("create custom field: %w", err)
	}
	return f.ID, nil
}

func (r *CustomFieldRepo) Update(ctx context.Context, ownerID, id string, u customfield.UpdateFields) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE contact_custom_fields
		SET label = $1, options = $2, default_value = $3, is_required = $4,
		    is_active = $5, sort_order = $6, description = $7,
		    validation_rules = $8, updated_at = NOW()
		WHERE id = $9 AND owner_id = $10
	`, u.Label, u.Options, u.DefaultValue, u.IsRequired,
		u.IsActive, u.SortOrder, u.Description, u.ValidationRules, id, ownerID)
	if err != nil {
		return fmt.Errorf("update custom field: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return customfield.ErrNotFound
	}
	return nil
}

func (r *CustomFieldRepo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM contact_custom_fields WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete custom field: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return customfield.ErrNotFound
	}
	return nil
}
