package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/ignite/contacthub/internal/domain"
	"github.com/ignite/contacthub/internal/service/contact"
)

// ContactRepo implements contact.Repository against PostgreSQL.
type ContactRepo struct{ db *sql.DB }

// NewContactRepo creates a Postgres-backed contact repository.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

var contactColumns = []string{
	"id", "owner_id", "email",
	"COALESCE(first_name,'')", "COALESCE(last_name,'')", "COALESCE(phone,'')",
	"COALESCE(company,'')", "COALESCE(job_title,'')",
	"custom_fields", "tags", "status",
	"subscribed_at", "unsubscribed_at", "COALESCE(unsubscribe_reason,'')",
	"COALESCE(source,'')", "COALESCE(ip_address,'')", "COALESCE(user_agent,'')",
	"email_verified", "email_verified_at", "COALESCE(verification_token,'')",
	"last_activity_at", "created_at", "updated_at",
}

func contactColumnsPrefixed(alias string) string {
	out := make([]string, len(contactColumns))
	for i, col := range contactColumns {
		if strings.HasPrefix(col, "COALESCE(") {
			out[i] = "COALESCE(" + alias + "." + strings.TrimPrefix(col, "COALESCE(")
		} else {
			out[i] = alias + "." + col
		}
	}
	return strings.Join(out, ", ")
}

func scanContact(row interface{ Scan(...interface{}) error }, c *domain.Contact) error {
	return row.Scan(
		&c.ID, &c.OwnerID, &c.Email,
		&c.FirstName, &c.LastName, &c.Phone,
		&c.Company, &c.JobTitle,
		&c.CustomFields, &c.Tags, &c.Status,
		&c.SubscribedAt, &c.UnsubscribedAt, &c.UnsubscribeReason,
		&c.Source, &c.IPAddress, &c.UserAgent,
		&c.EmailVerified, &c.EmailVerifiedAt, &c.VerificationToken,
		&c.LastActivityAt, &c.CreatedAt, &c.UpdatedAt,
	)
}

func scanActivity(row interface{ Scan(...interface{}) error }, a *domain.ContactActivity) error {
	return row.Scan(
		&a.ID, &a.ContactID, &a.OwnerID, &a.ActivityType,
		&a.Description, &a.Properties, &a.OldValues, &a.NewValues,
		&a.Source, &a.IPAddress, &a.UserAgent,
		&a.CreatedAt,
	)
}

func (r *ContactRepo) Get(ctx context.Context, ownerID, id string) (*domain.Contact, error) {
	c := &domain.Contact{}
	err := scanContact(r.db.QueryRowContext(ctx, `
		SELECT `+strings.Join(contactColumns, ", ")+`
		FROM contacts
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID), c)
	if err == sql.ErrNoRows {
		return nil, contact.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

func (r *ContactRepo) Search(ctx context.Context, ownerID string, f contact.Filter) ([]domain.Contact, int, error) {
	where := `WHERE owner_id = $1`
	args := []interface{}{ownerID}
	idx := 2

	if f.Search != "" {
		where += fmt.Sprintf(` AND (email ILIKE $%d OR first_name ILIKE $%d
			OR last_name ILIKE $%d OR company ILIKE $%d)`, idx, idx, idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}
	if f.Status != "all" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, f.Status)
		idx++
	}
	if f.Tag != "" {
		where += fmt.Sprintf(" AND tags @> $%d::jsonb", idx)
		args = append(args, domain.Strings{f.Tag})
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	q := fmt.Sprintf(`SELECT `+strings.Join(contactColumns, ", ")+` FROM contacts %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, idx, idx+1)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search contacts: %w", err)
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		var c domain.Contact
		if err := scanContact(rows, &c); err != nil {
			return nil, 0, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *ContactRepo) Create(ctx context.Context, c *domain.Contact) (string, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts
			(id, owner_id, email, first_name, last_name, phone, company, job_title,
			 custom_fields, tags, status, subscribed_at, source, ip_address,
			 user_agent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
	`, c.ID, c.OwnerID, c.Email, c.FirstName, c.LastName, c.Phone, c.Company,
		c.JobTitle, c.CustomFields, c.Tags, c.Status, c.SubscribedAt,
		c.Source, c.IPAddress, c.UserAgent)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return "", contact.ErrDuplicateEmail
		}
		return "", fmt.Errorf("create contact: %w", err)
	}
	return c.ID, nil
}

func (r *ContactRepo) Update(ctx context.Context, ownerID, id string, u contact.UpdateFields, activity *domain.ContactActivity) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.FirstName != nil {
		add("first_name", *u.FirstName)
	}
	if u.LastName != nil {
		add("last_name", *u.LastName)
	}
	if u.Phone != nil {
		add("phone", *u.Phone)
	}
	if u.Company != nil {
		add("company", *u.Company)
	}
	if u.JobTitle != nil {
		add("job_title", *u.JobTitle)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update contact: %w", err)
	}
	defer tx.Rollback()

	q := fmt.Sprintf("UPDATE contacts SET %s WHERE id = $%d AND owner_id = $%d",
		strings.Join(sets, ", "), idx, idx+1)
	args = append(args, id, ownerID)

	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return contact.ErrNotFound
	}

	if err := insertActivity(ctx, tx, activity); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ContactRepo) Delete(ctx context.Context, ownerID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete contact: %w", err)
	}
	defer tx.Rollback()

	// Collect the lists whose counts need recomputing after the detach.
	rows, err := tx.QueryContext(ctx, `
		SELECT m.list_id
		FROM contact_list_memberships m
		JOIN contacts c ON c.id = m.contact_id
		WHERE m.contact_id = $1 AND c.owner_id = $2
	`, id, ownerID)
	if err != nil {
		return fmt.Errorf("affected lists: %w", err)
	}
	var listIDs []string
	for rows.Next() {
		var lid string
		if err := rows.Scan(&lid); err != nil {
			rows.Close()
			return fmt.Errorf("scan list id: %w", err)
		}
		listIDs = append(listIDs, lid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM contact_list_memberships WHERE contact_id = $1`, id); err != nil {
		return fmt.Errorf("detach contact: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM contact_activities WHERE contact_id = $1 AND owner_id = $2`, id, ownerID); err != nil {
		return fmt.Errorf("delete activities: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM contacts WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return contact.ErrNotFound
	}

	for _, lid := range listIDs {
		if err := recomputeListCount(ctx, tx, lid); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ContactRepo) ApplyStatus(ctx context.Context, ownerID, id string, u contact.StatusUpdate, activity *domain.ContactActivity) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.Status != nil {
		add("status", *u.Status)
	}
	if u.SubscribedAt != nil {
		add("subscribed_at", *u.SubscribedAt)
	}
	if u.ClearUnsubscribed {
		sets = append(sets, "unsubscribed_at = NULL", "unsubscribe_reason = NULL")
	}
	if u.UnsubscribedAt != nil {
		add("unsubscribed_at", *u.UnsubscribedAt)
	}
	if u.UnsubscribeReason != nil {
		add("unsubscribe_reason", *u.UnsubscribeReason)
	}
	if u.EmailVerified != nil {
		add("email_verified", *u.EmailVerified)
	}
	if u.EmailVerifiedAt != nil {
		add("email_verified_at", *u.EmailVerifiedAt)
	}
	if u.ClearVerificationToken {
		sets = append(sets, "verification_token = NULL")
	}
	if u.LastActivityAt != nil {
		add("last_activity_at", *u.LastActivityAt)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback()

	q := fmt.Sprintf("UPDATE contacts SET %s WHERE id = $%d AND owner_id = $%d",
		strings.Join(sets, ", "), idx, idx+1)
	args = append(args, id, ownerID)

	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("apply status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return contact.ErrNotFound
	}

	if err := insertActivity(ctx, tx, activity); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ContactRepo) SetTags(ctx context.Context, ownerID, id string, tags domain.Strings, activity *domain.ContactActivity) error {
	return r.setColumn(ctx, ownerID, id, "tags", tags, activity)
}

func (r *ContactRepo) SetCustomFields(ctx context.Context, ownerID, id string, fields domain.JSON, activity *domain.ContactActivity) error {
	return r.setColumn(ctx, ownerID, id, "custom_fields", fields, activity)
}

func (r *ContactRepo) setColumn(ctx context.Context, ownerID, id, col string, val interface{}, activity *domain.ContactActivity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set %s: %w", col, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE contacts SET %s = $1, updated_at = NOW() WHERE id = $2 AND owner_id = $3", col),
		val, id, ownerID)
	if err != nil {
		return fmt.Errorf("set %s: %w", col, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return contact.ErrNotFound
	}

	if err := insertActivity(ctx, tx, activity); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ContactRepo) AddActivity(ctx context.Context, a *domain.ContactActivity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add activity: %w", err)
	}
	defer tx.Rollback()
	if err := insertActivity(ctx, tx, a); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ContactRepo) Activities(ctx context.Context, ownerID, contactID string, limit int) ([]domain.ContactActivity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, contact_id, owner_id, activity_type,
		       COALESCE(description,''), properties, old_values, new_values,
		       COALESCE(source,''), COALESCE(ip_address,''), COALESCE(user_agent,''),
		       created_at
		FROM contact_activities
		WHERE contact_id = $1 AND owner_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, contactID, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var out []domain.ContactActivity
	for rows.Next() {
		var a domain.ContactActivity
		if err := scanActivity(rows, &a); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ContactRepo) OwnerOf(ctx context.Context, contactID string) (string, error) {
	var ownerID string
	err := r.db.QueryRowContext(ctx,
		`SELECT owner_id FROM contacts WHERE id = $1`, contactID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return "", contact.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("owner of contact: %w", err)
	}
	return ownerID, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func insertActivity(ctx context.Context, tx execer, a *domain.ContactActivity) error {
	if a == nil {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO contact_activities
			(id, contact_id, owner_id, activity_type, description, properties,
			 old_values, new_values, source, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, a.ID, a.ContactID, a.OwnerID, a.ActivityType, a.Description, a.Properties,
		a.OldValues, a.NewValues, a.Source, a.IPAddress, a.UserAgent, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// recomputeListCount resets contacts_count to the number of subscribed
// members, inside the caller's transaction.
func recomputeListCount(ctx context.Context, tx execer, listID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE contact_lists
		SET contacts_count = (
			SELECT COUNT(*) FROM contact_list_memberships
			WHERE list_id = $1 AND subscription_status = 'subscribed'
		), updated_at = NOW()
		WHERE id = $1
	`, listID)
	if err != nil {
		return fmt.Errorf("recompute list count: %w", err)
	}
	return nil
}
