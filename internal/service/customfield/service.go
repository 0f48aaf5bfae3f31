package customfield

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ignite/contacthub/internal/domain"
)

// ValidationError carries one message per violated field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is a field-level validation error.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Service implements custom field definition management. It also satisfies
// the contact service's FieldDefinitions interface.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService creates a custom field service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// FieldInput holds the form fields for creating a field definition.
type FieldInput struct {
	Name         string   `json:"name" validate:"required,min=2,max=64"`
	Label        string   `json:"label" validate:"required,max=255"`
	Type         string   `json:"type" validate:"required,oneof=text number date boolean select multiselect"`
	Options      []string `json:"options"`
	DefaultValue string   `json:"default_value"`
	IsRequired   bool     `json:"is_required"`
	IsActive     bool     `json:"is_active"`
	SortOrder    int      `json:"sort_order"`
	Description  string   `json:"description" validate:"max=1000"`
}

// Get returns a single definition scoped to its owner.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*domain.ContactCustomField, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// GetByName resolves a definition by its machine name.
func (s *Service) GetByName(ctx context.Context, ownerID, name string) (*domain.ContactCustomField, error) {
	return s.repo.GetByName(ctx, ownerID, normalizeName(name))
}

// List returns the owner's definitions in display order.
func (s *Service) List(ctx context.Context, ownerID string, activeOnly bool) ([]domain.ContactCustomField, error) {
	return s.repo.List(ctx, ownerID, activeOnly)
}

// Create validates and persists a new definition. The machine name is
// normalized to lowercase with underscores.
func (s *Service) Create(ctx context.Context, ownerID string, input FieldInput) (*domain.ContactCustomField, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	f := &domain.ContactCustomField{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Name:         normalizeName(input.Name),
		Label:        input.Label,
		Type:         domain.FieldType(input.Type),
		Options:      domain.Strings(input.Options),
		DefaultValue: input.DefaultValue,
		IsRequired:   input.IsRequired,
		IsActive:     input.IsActive,
		SortOrder:    input.SortOrder,
		Description:  input.Description,
	}
	f.ValidationRules = f.Rules()
	id, err := s.repo.Create(ctx, f)
	if err != nil {
		return nil, err
	}
	f.ID = id
	return f, nil
}

// Update applies the editable fields to an existing definition. Name and
// type are immutable; changing them would orphan values already stored on
// contacts.
func (s *Service) Update(ctx context.Context, ownerID, id string, input FieldInput) (*domain.ContactCustomField, error) {
	current, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	check := input
	check.Name = current.Name
	check.Type = string(current.Type)
	if err := s.validateInput(check); err != nil {
		return nil, err
	}

	next := &domain.ContactCustomField{
		Type:       current.Type,
		Options:    domain.Strings(input.Options),
		IsRequired: input.IsRequired,
	}
	err = s.repo.Update(ctx, ownerID, id, UpdateFields{
		Label:           input.Label,
		Options:         domain.Strings(input.Options),
		DefaultValue:    input.DefaultValue,
		IsRequired:      input.IsRequired,
		IsActive:        input.IsActive,
		SortOrder:       input.SortOrder,
		Description:     input.Description,
		ValidationRules: next.Rules(),
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, ownerID, id)
}

// Delete removes a definition. Values already stored on contacts are kept.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

func (s *Service) validateInput(input FieldInput) error {
	fields := make(map[string]string)

	if err := s.validate.Struct(input); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range verrs {
			switch fe.Field() {
			case "Name":
				switch fe.Tag() {
				case "required":
					fields["name"] = "name is required"
				case "min":
					fields["name"] = "name must be at least 2 characters"
				case "max":
					fields["name"] = "name must be at most 64 characters"
				}
			case "Label":
				switch fe.Tag() {
				case "required":
					fields["label"] = "label is required"
				case "max":
					fields["label"] = "label must be at most 255 characters"
				}
			case "Type":
				fields["type"] = "type must be one of text, number, date, boolean, select, multiselect"
			case "Description":
				fields["description"] = "description must be at most 1000 characters"
			}
		}
	}

	switch domain.FieldType(input.Type) {
	case domain.FieldSelect, domain.FieldMultiSelect:
		if len(input.Options) == 0 {
			fields["options"] = "options are required for select fields"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func normalizeName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return strings.ReplaceAll(name, " ", "_")
}
