package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/contacthub/internal/domain"
	"github.com/ignite/contacthub/internal/service/contactlist"
)

// ListRepo implements contactlist.Repository against PostgreSQL.
type ListRepo struct{ db *sql.DB }

// NewListRepo creates a Postgres-backed contact list repository.
func NewListRepo(db *sql.DB) *ListRepo { return &ListRepo{db: db} }

const listColumns = `id, owner_id, name, COALESCE(description,''), type,
       segmentation_rules, is_active, contacts_count, last_cleaned_at,
       created_at, updated_at`

func scanList(row interface{ Scan(...interface{}) error }, l *domain.ContactList) error {
	return row.Scan(
		&l.ID, &l.OwnerID, &l.Name, &l.Description, &l.Type,
		&l.SegmentationRules, &l.IsActive, &l.ContactsCount, &l.LastCleanedAt,
		&l.CreatedAt, &l.UpdatedAt,
	)
}

func (r *ListRepo) Get(ctx context.Context, ownerID, id string) (*domain.ContactList, error) {
	l := &domain.ContactList{}
	err := scanList(r.db.QueryRowContext(ctx, `
		SELECT `+listColumns+`
		FROM contact_lists
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID), l)
	if err == sql.ErrNoRows {
		return nil, contactlist.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

func (r *ListRepo) List(ctx context.Context, ownerID string, f contactlist.Filter) ([]domain.ContactList, int, error) {
	where := `WHERE owner_id = $1`
	args := []interface{}{ownerID}
	idx := 2

	if f.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}
	if f.Type != "all" {
		where += fmt.Sprintf(" AND type = $%d", idx)
		args = append(args, f.Type)
		idx++
	}
	switch f.Status {
	case "active":
		where += " AND is_active = true"
	case "inactive":
		where += " AND is_active = false"
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_lists `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count lists: %w", err)
	}

	// SortBy/SortDir come pre-normalized against the whitelist, but guard
	// anyway since they end up in the query text.
	sortBy := f.SortBy
	if !contactlist.SortFields[sortBy] {
		sortBy = "created_at"
	}
	dir := "DESC"
	if f.SortDir == "asc" {
		dir = "ASC"
	}

	q := fmt.Sprintf(`SELECT `+listColumns+` FROM contact_lists %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		where, sortBy, dir, idx, idx+1)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var out []domain.ContactList
	for rows.Next() {
		var l domain.ContactList
		if err := scanList(rows, &l); err != nil {
			return nil, 0, fmt.Errorf("scan list: %w", err)
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *ListRepo) Create(ctx context.Context, l *domain.ContactList) (string, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contact_lists
			(id, owner_id, name, description, type, segmentation_rules,
			 is_active, contacts_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, NOW(), NOW())
	`, l.ID, l.OwnerID, l.Name, l.Description, l.Type, l.SegmentationRules, l.IsActive)
	if err != nil {
		return "", fmt.Errorf("create list: %w", err)
	}
	return l.ID, nil
}

func (r *ListRepo) Update(ctx context.Context, ownerID, id string, u contactlist.UpdateFields) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE contact_lists
		SET name = $1, description = $2, type = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5 AND owner_id = $6
	`, u.Name, u.Description, u.Type, u.IsActive, id, ownerID)
	if err != nil {
		return fmt.Errorf("update list: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return contactlist.ErrNotFound
	}
	return nil
}

func (r *ListRepo) Delete(ctx context.Context, ownerID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete list: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM contact_list_memberships
		WHERE list_id = $1
		  AND list_id IN (SELECT id FROM contact_lists WHERE id = $1 AND owner_id = $2)
	`, id, ownerID); err != nil {
		return fmt.Errorf("detach members: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM contact_lists WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return contactlist.ErrNotFound
	}
	return tx.Commit()
}

func (r *ListRepo) ToggleActive(ctx context.Context, ownerID, id string) (bool, error) {
	var active bool
	err := r.db.QueryRowContext(ctx, `
		UPDATE contact_lists SET is_active = NOT is_active, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING is_active
	`, id, ownerID).Scan(&active)
	if err == sql.ErrNoRows {
		return false, contactlist.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle list: %w", err)
	}
	return active, nil
}

func (r *ListRepo) SetActiveMany(ctx context.Context, ownerID string, ids []string, active bool) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE contact_lists SET is_active = $1, updated_at = NOW()
		WHERE owner_id = $2 AND id = ANY($3)
	`, active, ownerID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk set active: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *ListRepo) DeleteMany(ctx context.Context, ownerID string, ids []string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM contact_list_memberships
		WHERE list_id IN (SELECT id FROM contact_lists WHERE owner_id = $1 AND id = ANY($2))
	`, ownerID, pq.Array(ids)); err != nil {
		return 0, fmt.Errorf("bulk detach members: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM contact_lists WHERE owner_id = $1 AND id = ANY($2)`,
		ownerID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk delete lists: %w", err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk delete: %w", err)
	}
	return int(n), nil
}

func (r *ListRepo) Stats(ctx context.Context, ownerID string) (*domain.ListStats, error) {
	s := &domain.ListStats{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active),
		       COUNT(*) FILTER (WHERE created_at > NOW() - INTERVAL '30 days')
		FROM contact_lists
		WHERE owner_id = $1
	`, ownerID).Scan(&s.TotalLists, &s.ActiveLists, &s.RecentLists)
	if err != nil {
		return nil, fmt.Errorf("list stats: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'subscribed')
		FROM contacts
		WHERE owner_id = $1
	`, ownerID).Scan(&s.TotalContacts, &s.SubscribedContacts)
	if err != nil {
		return nil, fmt.Errorf("contact stats: %w", err)
	}

	var recent, previous int
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE m.created_at > NOW() - INTERVAL '30 days'),
		       COUNT(*) FILTER (WHERE m.created_at <= NOW() - INTERVAL '30 days'
		                          AND m.created_at > NOW() - INTERVAL '60 days')
		FROM contact_list_memberships m
		JOIN contact_lists l ON l.id = m.list_id
		WHERE l.owner_id = $1
	`, ownerID).Scan(&recent, &previous)
	if err != nil {
		return nil, fmt.Errorf("membership stats: %w", err)
	}

	switch {
	case previous > 0:
		s.ContactGrowth = float64(recent-previous) / float64(previous) * 100
	case recent > 0:
		s.ContactGrowth = 100
	}
	return s, nil
}

func (r *ListRepo) TopLists(ctx context.Context, ownerID string, limit int) ([]domain.TopList, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, contacts_count
		FROM contact_lists
		WHERE owner_id = $1
		ORDER BY contacts_count DESC, name ASC
		LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("top lists: %w", err)
	}
	defer rows.Close()

	var out []domain.TopList
	for rows.Next() {
		var t domain.TopList
		if err := rows.Scan(&t.ID, &t.Name, &t.SubscribedCount); err != nil {
			return nil, fmt.Errorf("scan top list: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *ListRepo) Selector(ctx context.Context, ownerID, search string) ([]domain.ContactList, error) {
	q := `SELECT ` + listColumns + ` FROM contact_lists WHERE owner_id = $1 AND is_active = true`
	args := []interface{}{ownerID}
	if search != "" {
		q += ` AND name ILIKE $2`
		args = append(args, "%"+search+"%")
	}
	q += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list selector: %w", err)
	}
	defer rows.Close()

	var out []domain.ContactList
	for rows.Next() {
		var l domain.ContactList
		if err := scanList(rows, &l); err != nil {
			return nil, fmt.Errorf("scan selector list: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *ListRepo) RecentSubscribed(ctx context.Context, ownerID, listID string, limit int) ([]domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+contactColumnsPrefixed("c")+`
		FROM contacts c
		JOIN contact_list_memberships m ON m.contact_id = c.id
		JOIN contact_lists l ON l.id = m.list_id
		WHERE l.id = $1 AND l.owner_id = $2 AND m.subscription_status = 'subscribed'
		ORDER BY m.subscribed_at DESC NULLS LAST
		LIMIT $3
	`, listID, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent subscribed: %w", err)
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		var c domain.Contact
		if err := scanContact(rows, &c); err != nil {
			return nil, fmt.Errorf("scan recent contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ListRepo) RecentActivity(ctx context.Context, ownerID, listID string, limit int) ([]domain.ContactActivity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.contact_id, a.owner_id, a.activity_type,
		       COALESCE(a.description,''), a.properties, a.old_values, a.new_values,
		       COALESCE(a.source,''), COALESCE(a.ip_address,''), COALESCE(a.user_agent,''),
		       a.created_at
		FROM contact_activities a
		JOIN contact_list_memberships m ON m.contact_id = a.contact_id
		JOIN contact_lists l ON l.id = m.list_id
		WHERE l.id = $1 AND l.owner_id = $2
		ORDER BY a.created_at DESC
		LIMIT $3
	`, listID, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
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
