package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/contacthub/internal/domain"
	"github.com/ignite/contacthub/internal/service/membership"
)

// MembershipRepo implements membership.Repository against PostgreSQL.
type MembershipRepo struct{ db *sql.DB }

// NewMembershipRepo creates a Postgres-backed membership repository.
func NewMembershipRepo(db *sql.DB) *MembershipRepo { return &MembershipRepo{db: db} }

const pivotColumns = `id, contact_id, list_id, subscription_status,
       subscribed_at, unsubscribed_at, COALESCE(subscription_source,''),
       subscription_metadata, created_at, updated_at`

func scanPivot(row interface{ Scan(...interface{}) error }, m *domain.Membership) error {
	return row.Scan(
		&m.ID, &m.ContactID, &m.ListID, &m.SubscriptionStatus,
		&m.SubscribedAt, &m.UnsubscribedAt, &m.SubscriptionSource,
		&m.SubscriptionMetadata, &m.CreatedAt, &m.UpdatedAt,
	)
}

// checkOwnership verifies the list and the contact both belong to ownerID.
func checkOwnership(ctx context.Context, q execer, ownerID, listID, contactID string) error {
	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM contact_lists WHERE id = $1 AND owner_id = $2)`,
		listID, ownerID).Scan(&exists); err != nil {
		return fmt.Errorf("check list: %w", err)
	}
	if !exists {
		return membership.ErrListNotFound
	}
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM contacts WHERE id = $1 AND owner_id = $2)`,
		contactID, ownerID).Scan(&exists); err != nil {
		return fmt.Errorf("check contact: %w", err)
	}
	if !exists {
		return membership.ErrContactNotFound
	}
	return nil
}

func (r *MembershipRepo) Get(ctx context.Context, ownerID, listID, contactID string) (*domain.Membership, error) {
	if err := checkOwnership(ctx, r.db, ownerID, listID, contactID); err != nil {
		return nil, err
	}
	m := &domain.Membership{}
	err := scanPivot(r.db.QueryRowContext(ctx, `
		SELECT `+pivotColumns+`
		FROM contact_list_memberships
		WHERE list_id = $1 AND contact_id = $2
	`, listID, contactID), m)
	if err == sql.ErrNoRows {
		return nil, membership.ErrNotMember
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

func (r *MembershipRepo) Attach(ctx context.Context, ownerID string, m *domain.Membership) (*domain.Membership, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin attach: %w", err)
	}
	defer tx.Rollback()

	if err := checkOwnership(ctx, tx, ownerID, m.ListID, m.ContactID); err != nil {
		return nil, err
	}

	// On conflict the original subscribed_at survives so repeat attaches
	// never rewrite subscription history.
	stored := &domain.Membership{}
	err = scanPivot(tx.QueryRowContext(ctx, `
		INSERT INTO contact_list_memberships
			(id, contact_id, list_id, subscription_status, subscribed_at,
			 subscription_source, subscription_metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (contact_id, list_id) DO UPDATE SET
			subscription_status = EXCLUDED.subscription_status,
			subscription_source = EXCLUDED.subscription_source,
			subscription_metadata = EXCLUDED.subscription_metadata,
			unsubscribed_at = NULL,
			updated_at = NOW()
		RETURNING `+pivotColumns+`
	`, m.ID, m.ContactID, m.ListID, m.SubscriptionStatus, m.SubscribedAt,
		m.SubscriptionSource, m.SubscriptionMetadata), stored)
	if err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}

	if err := recomputeListCount(ctx, tx, m.ListID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit attach: %w", err)
	}
	return stored, nil
}

func (r *MembershipRepo) Detach(ctx context.Context, ownerID, listID, contactID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin detach: %w", err)
	}
	defer tx.Rollback()

	if err := checkOwnership(ctx, tx, ownerID, listID, contactID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM contact_list_memberships
		WHERE list_id = $1 AND contact_id = $2
	`, listID, contactID); err != nil {
		return fmt.Errorf("detach: %w", err)
	}

	if err := recomputeListCount(ctx, tx, listID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *MembershipRepo) SetSubscription(ctx context.Context, ownerID, listID, contactID string, change membership.SubscriptionChange) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin subscription change: %w", err)
	}
	defer tx.Rollback()

	if err := checkOwnership(ctx, tx, ownerID, listID, contactID); err != nil {
		return err
	}

	var res sql.Result
	if change.Status == domain.SubscriptionUnsubscribed {
		res, err = tx.ExecContext(ctx, `
			UPDATE contact_list_memberships
			SET subscription_status = $1, unsubscribed_at = $2, updated_at = NOW()
			WHERE list_id = $3 AND contact_id = $4
		`, change.Status, change.At, listID, contactID)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE contact_list_memberships
			SET subscription_status = $1, unsubscribed_at = NULL, updated_at = NOW()
			WHERE list_id = $2 AND contact_id = $3
		`, change.Status, listID, contactID)
	}
	if err != nil {
		return fmt.Errorf("set subscription: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return membership.ErrNotMember
	}

	if err := recomputeListCount(ctx, tx, listID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *MembershipRepo) Members(ctx context.Context, ownerID, listID string, f membership.MemberFilter) ([]membership.Member, int, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM contact_lists WHERE id = $1 AND owner_id = $2)`,
		listID, ownerID).Scan(&exists); err != nil {
		return nil, 0, fmt.Errorf("check list: %w", err)
	}
	if !exists {
		return nil, 0, membership.ErrListNotFound
	}

	where := `WHERE m.list_id = $1`
	args := []interface{}{listID}
	idx := 2

	if f.Search != "" {
		where += fmt.Sprintf(` AND (c.email ILIKE $%d OR c.first_name ILIKE $%d OR c.last_name ILIKE $%d)`,
			idx, idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}
	if f.Status != "all" {
		where += fmt.Sprintf(" AND m.subscription_status = $%d", idx)
		args = append(args, f.Status)
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM contact_list_memberships m
		JOIN contacts c ON c.id = m.contact_id
		`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}

	q := fmt.Sprintf(`
		SELECT `+contactColumnsPrefixed("c")+`,
		       m.id, m.contact_id, m.list_id, m.subscription_status,
		       m.subscribed_at, m.unsubscribed_at, COALESCE(m.subscription_source,''),
		       m.subscription_metadata, m.created_at, m.updated_at
		FROM contact_list_memberships m
		JOIN contacts c ON c.id = m.contact_id
		%s
		ORDER BY m.subscribed_at DESC NULLS LAST
		LIMIT $%d OFFSET $%d`, where, idx, idx+1)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []membership.Member
	for rows.Next() {
		var mem membership.Member
		if err := rows.Scan(
			&mem.Contact.ID, &mem.Contact.OwnerID, &mem.Contact.Email,
			&mem.Contact.FirstName, &mem.Contact.LastName, &mem.Contact.Phone,
			&mem.Contact.Company, &mem.Contact.JobTitle,
			&mem.Contact.CustomFields, &mem.Contact.Tags, &mem.Contact.Status,
			&mem.Contact.SubscribedAt, &mem.Contact.UnsubscribedAt, &mem.Contact.UnsubscribeReason,
			&mem.Contact.Source, &mem.Contact.IPAddress, &mem.Contact.UserAgent,
			&mem.Contact.EmailVerified, &mem.Contact.EmailVerifiedAt, &mem.Contact.VerificationToken,
			&mem.Contact.LastActivityAt, &mem.Contact.CreatedAt, &mem.Contact.UpdatedAt,
			&mem.Pivot.ID, &mem.Pivot.ContactID, &mem.Pivot.ListID, &mem.Pivot.SubscriptionStatus,
			&mem.Pivot.SubscribedAt, &mem.Pivot.UnsubscribedAt, &mem.Pivot.SubscriptionSource,
			&mem.Pivot.SubscriptionMetadata, &mem.Pivot.CreatedAt, &mem.Pivot.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, mem)
	}
	return out, total, rows.Err()
}

func (r *MembershipRepo) ListsOf(ctx context.Context, ownerID, contactID string) ([]membership.ListEntry, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM contacts WHERE id = $1 AND owner_id = $2)`,
		contactID, ownerID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check contact: %w", err)
	}
	if !exists {
		return nil, membership.ErrContactNotFound
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.owner_id, l.name, COALESCE(l.description,''), l.type,
		       l.segmentation_rules, l.is_active, l.contacts_count, l.last_cleaned_at,
		       l.created_at, l.updated_at,
		       m.id, m.contact_id, m.list_id, m.subscription_status,
		       m.subscribed_at, m.unsubscribed_at, COALESCE(m.subscription_source,''),
		       m.subscription_metadata, m.created_at, m.updated_at
		FROM contact_list_memberships m
		JOIN contact_lists l ON l.id = m.list_id
		WHERE m.contact_id = $1 AND l.owner_id = $2
		ORDER BY l.name ASC
	`, contactID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("lists of contact: %w", err)
	}
	defer rows.Close()

	var out []membership.ListEntry
	for rows.Next() {
		var e membership.ListEntry
		if err := rows.Scan(
			&e.List.ID, &e.List.OwnerID, &e.List.Name, &e.List.Description, &e.List.Type,
			&e.List.SegmentationRules, &e.List.IsActive, &e.List.ContactsCount, &e.List.LastCleanedAt,
			&e.List.CreatedAt, &e.List.UpdatedAt,
			&e.Pivot.ID, &e.Pivot.ContactID, &e.Pivot.ListID, &e.Pivot.SubscriptionStatus,
			&e.Pivot.SubscribedAt, &e.Pivot.UnsubscribedAt, &e.Pivot.SubscriptionSource,
			&e.Pivot.SubscriptionMetadata, &e.Pivot.CreatedAt, &e.Pivot.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan list entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
