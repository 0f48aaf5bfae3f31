package membership

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/contacthub/internal/domain"
)

// DefaultSource is recorded on pivot rows attached without an explicit
// subscription source.
const DefaultSource = "manual"

// Service implements membership business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a membership service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// AttachInput holds the optional pivot overrides for an attach.
type AttachInput struct {
	Source   string      `json:"source"`
	Metadata domain.JSON `json:"metadata"`
}

// MemberPage is one page of a list's members.
type MemberPage struct {
	Members    []Member `json:"members"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}

// Attach adds a contact to a list as a subscribed member. Attaching an
// existing member updates its source and metadata but keeps the original
// subscribed_at, so repeat imports don't rewrite subscription history.
func (s *Service) Attach(ctx context.Context, ownerID, listID, contactID string, input AttachInput) (*domain.Membership, error) {
	source := input.Source
	if source == "" {
		source = DefaultSource
	}
	now := s.now()
	m := &domain.Membership{
		ID:                   uuid.New().String(),
		ContactID:            contactID,
		ListID:               listID,
		SubscriptionStatus:   domain.SubscriptionSubscribed,
		SubscribedAt:         &now,
		SubscriptionSource:   source,
		SubscriptionMetadata: input.Metadata,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	stored, err := s.repo.Attach(ctx, ownerID, m)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Detach removes a contact from a list. Detaching a contact that is not a
// member succeeds without effect.
func (s *Service) Detach(ctx context.Context, ownerID, listID, contactID string) error {
	return s.repo.Detach(ctx, ownerID, listID, contactID)
}

// Unsubscribe flips the pivot to unsubscribed for this list only. The
// contact's global status and other list memberships are untouched.
func (s *Service) Unsubscribe(ctx context.Context, ownerID, listID, contactID string) error {
	return s.repo.SetSubscription(ctx, ownerID, listID, contactID, SubscriptionChange{
		Status: domain.SubscriptionUnsubscribed,
		At:     s.now(),
	})
}

// Resubscribe flips the pivot back to subscribed for this list.
func (s *Service) Resubscribe(ctx context.Context, ownerID, listID, contactID string) error {
	return s.repo.SetSubscription(ctx, ownerID, listID, contactID, SubscriptionChange{
		Status: domain.SubscriptionSubscribed,
		At:     s.now(),
	})
}

// Members returns a filtered page of a list's members.
func (s *Service) Members(ctx context.Context, ownerID, listID string, f MemberFilter) (*MemberPage, error) {
	f.Normalize()
	members, total, err := s.repo.Members(ctx, ownerID, listID, f)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	totalPages := int(math.Ceil(float64(total) / float64(f.PageSize)))
	if totalPages < 1 {
		totalPages = 1
	}
	return &MemberPage{Members: members, Total: total, Page: f.Page, PageSize: f.PageSize, TotalPages: totalPages}, nil
}

// ListsOf returns every list a contact belongs to together with its pivot
// subscription state.
func (s *Service) ListsOf(ctx context.Context, ownerID, contactID string) ([]ListEntry, error) {
	return s.repo.ListsOf(ctx, ownerID, contactID)
}
