package contact

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ignite/contacthub/internal/domain"
)

// Meta carries request-level attribution recorded on activity rows.
type Meta struct {
	Source    string
	IPAddress string
	UserAgent string
}

func (m Meta) source() string {
	if m.Source == "" {
		return "system"
	}
	return m.Source
}

// Service implements contact business logic.
type Service struct {
	repo     Repository
	fields   FieldDefinitions // optional; nil skips custom field validation
	validate *validator.Validate
	now      func() time.Time
}

// NewService creates a contact service. fields may be nil when custom field
// definitions are not configured.
func NewService(repo Repository, fields FieldDefinitions) *Service {
	return &Service{
		repo:     repo,
		fields:   fields,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// CreateInput holds the fields for creating a new contact.
type CreateInput struct {
	Email        string      `json:"email"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Phone        string      `json:"phone"`
	Company      string      `json:"company"`
	JobTitle     string      `json:"job_title"`
	Tags         []string    `json:"tags"`
	CustomFields domain.JSON `json:"custom_fields"`
	Source       string      `json:"source"`
	IPAddress    string      `json:"ip_address"`
	UserAgent    string      `json:"user_agent"`
}

// Page is one page of contact search results.
type Page struct {
	Contacts   []domain.Contact `json:"contacts"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// Get returns a single contact scoped to its owner.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*domain.Contact, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// Search returns a filtered page of the owner's contacts.
func (s *Service) Search(ctx context.Context, ownerID string, f Filter) (*Page, error) {
	f.Normalize()
	contacts, total, err := s.repo.Search(ctx, ownerID, f)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	totalPages := int(math.Ceil(float64(total) / float64(f.PageSize)))
	if totalPages < 1 {
		totalPages = 1
	}
	return &Page{Contacts: contacts, Total: total, Page: f.Page, PageSize: f.PageSize, TotalPages: totalPages}, nil
}

// Create validates and persists a new contact, defaulting to subscribed
// status. The (owner, email) pair must be unique.
func (s *Service) Create(ctx context.Context, ownerID string, input CreateInput) (*domain.Contact, error) {
	email := domain.NormalizeEmail(input.Email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}

	now := s.now()
	c := &domain.Contact{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Email:        email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Company:      input.Company,
		JobTitle:     input.JobTitle,
		Tags:         domain.Strings(input.Tags),
		CustomFields: input.CustomFields,
		Status:       domain.ContactSubscribed,
		SubscribedAt: &now,
		Source:       input.Source,
		IPAddress:    input.IPAddress,
		UserAgent:    input.UserAgent,
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

// Update applies profile fields and logs an "updated" activity carrying the
// old and new values.
func (s *Service) Update(ctx context.Context, ownerID, id string, u UpdateFields, meta Meta) (*domain.Contact, error) {
	current, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	oldVals, newVals := diffFields(current, u)
	if len(newVals) == 0 {
		return current, nil
	}

	act := s.newActivity(ownerID, id, domain.ActivityUpdated, "Contact updated", nil, meta)
	act.OldValues = oldVals
	act.NewValues = newVals

	if err := s.repo.Update(ctx, ownerID, id, u, act); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, ownerID, id)
}

// Delete removes a contact and detaches it from all lists.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// Subscribe marks the contact subscribed, clearing any unsubscribe state.
func (s *Service) Subscribe(ctx context.Context, ownerID, id string, meta Meta) error {
	now := s.now()
	status := domain.ContactSubscribed
	u := StatusUpdate{
		Status:            &status,
		SubscribedAt:      &now,
		ClearUnsubscribed: true,
		LastActivityAt:    &now,
	}
	act := s.newActivity(ownerID, id, domain.ActivitySubscribed, "Contact subscribed",
		domain.JSON{"source": meta.source()}, meta)
	return s.repo.ApplyStatus(ctx, ownerID, id, u, act)
}

// Unsubscribe marks the contact unsubscribed with an optional reason.
func (s *Service) Unsubscribe(ctx context.Context, ownerID, id, reason string, meta Meta) error {
	now := s.now()
	status := domain.ContactUnsubscribed
	u := StatusUpdate{
		Status:            &status,
		UnsubscribedAt:    &now,
		UnsubscribeReason: &reason,
		LastActivityAt:    &now,
	}
	var props domain.JSON
	if reason != "" {
		props = domain.JSON{"reason": reason}
	}
	act := s.newActivity(ownerID, id, domain.ActivityUnsubscribed, "Contact unsubscribed", props, meta)
	return s.repo.ApplyStatus(ctx, ownerID, id, u, act)
}

// MarkBounced records a hard bounce.
func (s *Service) MarkBounced(ctx context.Context, ownerID, id string, meta Meta) error {
	now := s.now()
	status := domain.ContactBounced
	u := StatusUpdate{Status: &status, LastActivityAt: &now}
	act := s.newActivity(ownerID, id, domain.ActivityBounced, "Email bounced", nil, meta)
	return s.repo.ApplyStatus(ctx, ownerID, id, u, act)
}

// MarkComplained records a spam complaint.
func (s *Service) MarkComplained(ctx context.Context, ownerID, id string, meta Meta) error {
	now := s.now()
	status := domain.ContactComplained
	u := StatusUpdate{Status: &status, LastActivityAt: &now}
	act := s.newActivity(ownerID, id, domain.ActivityComplained, "Spam complaint received", nil, meta)
	return s.repo.ApplyStatus(ctx, ownerID, id, u, act)
}

// Verify marks the contact's email address as verified and clears the
// verification token.
func (s *Service) Verify(ctx context.Context, ownerID, id string, meta Meta) error {
	now := s.now()
	verified := true
	u := StatusUpdate{
		EmailVerified:          &verified,
		EmailVerifiedAt:        &now,
		ClearVerificationToken: true,
		LastActivityAt:         &now,
	}
	act := s.newActivity(ownerID, id, domain.ActivityEmailVerified, "Email address verified", nil, meta)
	return s.repo.ApplyStatus(ctx, ownerID, id, u, act)
}

// AddTag appends a tag if not already present. A no-op for existing tags.
func (s *Service) AddTag(ctx context.Context, ownerID, id, tag string, meta Meta) error {
	c, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if c.HasTag(tag) {
		return nil
	}
	tags := append(domain.Strings{}, c.Tags...)
	tags = append(tags, tag)
	act := s.newActivity(ownerID, id, domain.ActivityTagAdded, "Tag added", domain.JSON{"tag": tag}, meta)
	return s.repo.SetTags(ctx, ownerID, id, tags, act)
}

// RemoveTag drops a tag if present, preserving the order of the rest.
func (s *Service) RemoveTag(ctx context.Context, ownerID, id, tag string, meta Meta) error {
	c, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !c.HasTag(tag) {
		return nil
	}
	tags := make(domain.Strings, 0, len(c.Tags)-1)
	for _, t := range c.Tags {
		if t != tag {
			tags = append(tags, t)
		}
	}
	act := s.newActivity(ownerID, id, domain.ActivityTagRemoved, "Tag removed", domain.JSON{"tag": tag}, meta)
	return s.repo.SetTags(ctx, ownerID, id, tags, act)
}

// UpdateCustomField sets one custom field value, validating it against the
// owner's field definition when one exists.
func (s *Service) UpdateCustomField(ctx context.Context, ownerID, id, field string, value interface{}, meta Meta) error {
	c, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if s.fields != nil {
		def, err := s.fields.GetByName(ctx, ownerID, field)
		if err == nil && def != nil && def.IsActive {
			if verr := def.ValidateValue(value); verr != nil {
				return fmt.Errorf("%w: %v", ErrInvalidFieldValue, verr)
			}
		}
	}

	fields := domain.JSON{}
	for k, v := range c.CustomFields {
		fields[k] = v
	}
	oldValue := fields[field]
	fields[field] = value

	act := s.newActivity(ownerID, id, domain.ActivityCustomFieldUpdated, "Custom field updated",
		domain.JSON{"field": field, "old_value": oldValue, "new_value": value}, meta)
	return s.repo.SetCustomFields(ctx, ownerID, id, fields, act)
}

// RecordActivity appends an arbitrary activity entry for an owned contact.
// Writing against another owner's contact fails with ErrForbidden.
func (s *Service) RecordActivity(ctx context.Context, ownerID, contactID string, typ domain.ActivityType, description string, properties domain.JSON, meta Meta) (*domain.ContactActivity, error) {
	actualOwner, err := s.repo.OwnerOf(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if actualOwner != ownerID {
		return nil, ErrForbidden
	}

	act := s.newActivity(ownerID, contactID, typ, description, properties, meta)
	if err := s.repo.AddActivity(ctx, act); err != nil {
		return nil, fmt.Errorf("record activity: %w", err)
	}
	return act, nil
}

// Activities returns the newest activity entries for a contact.
func (s *Service) Activities(ctx context.Context, ownerID, contactID string, limit int) ([]domain.ContactActivity, error) {
	if limit <= 0 {
		limit = 30
	}
	return s.repo.Activities(ctx, ownerID, contactID, limit)
}

func (s *Service) newActivity(ownerID, contactID string, typ domain.ActivityType, description string, properties domain.JSON, meta Meta) *domain.ContactActivity {
	return &domain.ContactActivity{
		ID:           uuid.New().String(),
		ContactID:    contactID,
		OwnerID:      ownerID,
		ActivityType: typ,
		Description:  description,
		Properties:   properties,
		Source:       meta.source(),
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		CreatedAt:    s.now(),
	}
}

func diffFields(c *domain.Contact, u UpdateFields) (oldVals, newVals domain.JSON) {
	oldVals, newVals = domain.JSON{}, domain.JSON{}
	set := func(name, oldV string, newV *string) {
		if newV != nil && *newV != oldV {
			oldVals[name] = oldV
			newVals[name] = *newV
		}
	}
	set("first_name", c.FirstName, u.FirstName)
	set("last_name", c.LastName, u.LastName)
	set("phone", c.Phone, u.Phone)
	set("company", c.Company, u.Company)
	set("job_title", c.JobTitle, u.JobTitle)
	if len(newVals) == 0 {
		return nil, nil
	}
	return oldVals, newVals
}
