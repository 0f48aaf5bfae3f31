package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ignite/contacthub/internal/domain"
	"github.com/ignite/contacthub/internal/service/membership"
)

func expectOwnership(mock sqlmock.Sqlmock, listOK, contactOK bool) {
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(listOK))
	if listOK {
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(contactOK))
	}
}

func pivotRows(subscribedAt time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "contact_id", "list_id", "subscription_status",
		"subscribed_at", "unsubscribed_at", "subscription_source",
		"subscription_metadata", "created_at", "updated_at",
	}).AddRow("m1", "c1", "list-1", "subscribed",
		subscribedAt, nil, "manual", []byte(`{}`), now, now)
}

func TestMembershipRepoAttachRecomputesCount(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewMembershipRepo(db)

	first := time.Now().Add(-time.Hour)

	mock.ExpectBegin()
	expectOwnership(mock, true, true)
	mock.ExpectQuery("INSERT INTO contact_list_memberships").
		WillReturnRows(pivotRows(first))
	mock.ExpectExec("UPDATE contact_lists").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	now := time.Now()
	stored, err := repo.Attach(context.Background(), "owner-1", &domain.Membership{
		ID: "m1", ContactID: "c1", ListID: "list-1",
		SubscriptionStatus: domain.SubscriptionSubscribed,
		SubscribedAt:       &now,
		SubscriptionSource: "manual",
	})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	// The upsert returned the original subscribed_at, not the new one.
	if !stored.SubscribedAt.Equal(first) {
		t.Errorf("subscribed_at = %v, want original %v", stored.SubscribedAt, first)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestMembershipRepoAttachForeignList(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewMembershipRepo(db)

	mock.ExpectBegin()
	expectOwnership(mock, false, true)
	mock.ExpectRollback()

	_, err := repo.Attach(context.Background(), "owner-1", &domain.Membership{
		ID: "m1", ContactID: "c1", ListID: "foreign-list",
		SubscriptionStatus: domain.SubscriptionSubscribed,
	})
	if err != membership.ErrListNotFound {
		t.Fatalf("expected ErrListNotFound, got %v", err)
	}
}

func TestMembershipRepoSetSubscriptionNotMember(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewMembershipRepo(db)

	mock.ExpectBegin()
	expectOwnership(mock, true, true)
	mock.ExpectExec("UPDATE contact_list_memberships").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SetSubscription(context.Background(), "owner-1", "list-1", "c1",
		membership.SubscriptionChange{Status: domain.SubscriptionUnsubscribed, At: time.Now()})
	if err != membership.ErrNotMember {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestMembershipRepoDetachRecomputesCount(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewMembershipRepo(db)

	mock.ExpectBegin()
	expectOwnership(mock, true, true)
	mock.ExpectExec("DELETE FROM contact_list_memberships").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE contact_lists").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Detach(context.Background(), "owner-1", "list-1", "c1"); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
