package contactlist

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ignite/contacthub/internal/domain"
)

// Outcome messages surfaced to the UI as flash-style notifications.
const (
	MsgCreated       = "Contact list created successfully!"
	MsgUpdated       = "Contact list updated successfully!"
	MsgDeleted       = "Contact list deleted successfully!"
	MsgStatusToggled = "List status updated successfully!"
	MsgOperationFail = "Something went wrong. Please try again."
)

// Service implements contact list business logic. All public methods are
// safe for concurrent use if the underlying repository is concurrency-safe.
type Service struct {
	repo     Repository
	validate *validator.Validate
	stats    *StatsCache // optional
}

// NewService creates a contact list service backed by the given repository.
// cache may be nil to disable stats caching.
func NewService(repo Repository, cache *StatsCache) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		stats:    cache,
	}
}

// ListInput holds the editable fields of a contact list form.
type ListInput struct {
	Name        string `json:"name" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"max=1000"`
	Type        string `json:"type" validate:"required,oneof=static dynamic"`
	IsActive    bool   `json:"is_active"`
}

// Page is one page of list results.
type Page struct {
	Lists      []domain.ContactList `json:"lists"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
}

// Overview bundles the dashboard aggregates with the top lists.
type Overview struct {
	Stats    domain.ListStats `json:"stats"`
	TopLists []domain.TopList `json:"top_lists"`
}

// Preview is the detail view of a list: the ten most recently subscribed
// members and the five latest activities across its contacts.
type Preview struct {
	List             *domain.ContactList      `json:"list"`
	Contacts         []domain.Contact         `json:"contacts"`
	RecentActivities []domain.ContactActivity `json:"recent_activities"`
}

// BulkAction enumerates the supported bulk operations.
type BulkAction string

const (
	BulkActivate   BulkAction = "activate"
	BulkDeactivate BulkAction = "deactivate"
	BulkDelete     BulkAction = "delete"
)

// BulkInput selects lists and an action to apply to them. Delete is
// destructive and requires the Confirmed flag.
type BulkInput struct {
	IDs       []string   `json:"ids"`
	Action    BulkAction `json:"action"`
	Confirmed bool       `json:"confirmed"`
}

// BulkResult reports how many of the selected lists were affected.
type BulkResult struct {
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// Get returns a single list scoped to its owner.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*domain.ContactList, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// List returns a filtered, sorted page of the owner's lists.
func (s *Service) List(ctx context.Context, ownerID string, f Filter) (*Page, error) {
	f.Normalize()
	lists, total, err := s.repo.List(ctx, ownerID, f)
	if err != nil {
		return nil, fmt.Errorf("list contact lists: %w", err)
	}
	totalPages := int(math.Ceil(float64(total) / float64(f.PageSize)))
	if totalPages < 1 {
		totalPages = 1
	}
	return &Page{
		Lists:      lists,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Create validates and persists a new list. Validation failures return a
// *ValidationError and never touch storage.
func (s *Service) Create(ctx context.Context, ownerID string, input ListInput) (*domain.ContactList, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	l := &domain.ContactList{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        input.Name,
		Description: input.Description,
		Type:        domain.ListType(input.Type),
		IsActive:    input.IsActive,
	}
	id, err := s.repo.Create(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("create contact list: %w", err)
	}
	l.ID = id
	s.invalidateStats(ctx, ownerID)
	return l, nil
}

// Update validates and applies the editable fields to an existing list.
func (s *Service) Update(ctx context.Context, ownerID, id string, input ListInput) (*domain.ContactList, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	err := s.repo.Update(ctx, ownerID, id, UpdateFields{
		Name:        input.Name,
		Description: input.Description,
		Type:        domain.ListType(input.Type),
		IsActive:    input.IsActive,
	})
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, ownerID)
	return s.repo.Get(ctx, ownerID, id)
}

// Delete removes a list after detaching all its members.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.invalidateStats(ctx, ownerID)
	return nil
}

// ToggleStatus flips is_active. Membership is untouched.
func (s *Service) ToggleStatus(ctx context.Context, ownerID, id string) (*domain.ContactList, error) {
	if _, err := s.repo.ToggleActive(ctx, ownerID, id); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, ownerID)
	return s.repo.Get(ctx, ownerID, id)
}

// Bulk applies an action to the owner's subset of the selected ids and
// reports how many lists were affected. Ids owned by someone else are
// skipped silently.
func (s *Service) Bulk(ctx context.Context, ownerID string, input BulkInput) (*BulkResult, error) {
	if len(input.IDs) == 0 {
		return nil, ErrNoListsSelected
	}

	var (
		n    int
		err  error
		verb string
	)
	switch input.Action {
	case BulkActivate:
		n, err = s.repo.SetActiveMany(ctx, ownerID, input.IDs, true)
		verb = "activated"
	case BulkDeactivate:
		n, err = s.repo.SetActiveMany(ctx, ownerID, input.IDs, false)
		verb = "deactivated"
	case BulkDelete:
		if !input.Confirmed {
			return nil, ErrConfirmationRequired
		}
		n, err = s.repo.DeleteMany(ctx, ownerID, input.IDs)
		verb = "deleted"
	default:
		return nil, ErrUnknownBulkAction
	}
	if err != nil {
		return nil, fmt.Errorf("bulk %s: %w", input.Action, err)
	}

	log.Printf("[contactlist.Service] Bulk %s: %d/%d lists for owner %s",
		input.Action, n, len(input.IDs), ownerID)
	s.invalidateStats(ctx, ownerID)
	return &BulkResult{
		Count:   n,
		Message: fmt.Sprintf("%d lists %s successfully!", n, verb),
	}, nil
}

// Stats returns the owner's dashboard aggregates, served from the cache
// when fresh.
func (s *Service) Stats(ctx context.Context, ownerID string) (*Overview, error) {
	if s.stats != nil {
		if ov, ok := s.stats.Get(ctx, ownerID); ok {
			return ov, nil
		}
	}

	stats, err := s.repo.Stats(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("compute stats: %w", err)
	}
	top, err := s.repo.TopLists(ctx, ownerID, 5)
	if err != nil {
		return nil, fmt.Errorf("top lists: %w", err)
	}

	ov := &Overview{Stats: *stats, TopLists: top}
	if s.stats != nil {
		s.stats.Set(ctx, ownerID, ov)
	}
	return ov, nil
}

// Preview returns a list with its most recent subscribed members and the
// latest activities of its contacts.
func (s *Service) Preview(ctx context.Context, ownerID, id string) (*Preview, error) {
	l, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	contacts, err := s.repo.RecentSubscribed(ctx, ownerID, id, 10)
	if err != nil {
		return nil, fmt.Errorf("recent subscribed: %w", err)
	}
	activities, err := s.repo.RecentActivity(ctx, ownerID, id, 5)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	return &Preview{List: l, Contacts: contacts, RecentActivities: activities}, nil
}

// Selector returns the owner's active lists matching a name search, for
// list-picker widgets.
func (s *Service) Selector(ctx context.Context, ownerID, search string) ([]domain.ContactList, error) {
	return s.repo.Selector(ctx, ownerID, search)
}

func (s *Service) validateInput(input ListInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "Name":
			switch fe.Tag() {
			case "required":
				fields["name"] = "name is required"
			case "min":
				fields["name"] = "name must be at least 3 characters"
			case "max":
				fields["name"] = "name must be at most 255 characters"
			}
		case "Description":
			fields["description"] = "description must be at most 1000 characters"
		case "Type":
			fields["type"] = "type must be static or dynamic"
		}
	}
	return &ValidationError{Fields: fields}
}

func (s *Service) invalidateStats(ctx context.Context, ownerID string) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, ownerID)
	}
}
