package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldType enumerates the value types a custom field can hold.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldDate        FieldType = "date"
	FieldBoolean     FieldType = "boolean"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multiselect"
)

// ContactCustomField is a per-owner schema definition for a dynamic contact
// attribute. Name is unique per owner. Options are required for select and
// multiselect fields.
type ContactCustomField struct {
	ID              string    `json:"id" db:"id"`
	OwnerID         string    `json:"owner_id" db:"owner_id"`
	Name            string    `json:"name" db:"name"`
	Label           string    `json:"label" db:"label"`
	Type            FieldType `json:"type" db:"type"`
	Options         Strings   `json:"options" db:"options"`
	DefaultValue    string    `json:"default_value" db:"default_value"`
	IsRequired      bool      `json:"is_required" db:"is_required"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	SortOrder       int       `json:"sort_order" db:"sort_order"`
	Description     string    `json:"description" db:"description"`
	ValidationRules Strings   `json:"validation_rules" db:"validation_rules"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// ValidateValue checks a candidate value against the field's type and
// required flag. nil is valid unless the field is required.
func (f *ContactCustomField) ValidateValue(value interface{}) error {
	if value == nil || value == "" {
		if f.IsRequired {
			return fmt.Errorf("%s is required", f.Name)
		}
		return nil
	}

	switch f.Type {
	case FieldNumber:
		switch v := value.(type) {
		case float64, int, int64:
		case string:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return fmt.Errorf("%s must be a number", f.Name)
			}
		default:
			return fmt.Errorf("%s must be a number", f.Name)
		}
	case FieldDate:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s must be a date", f.Name)
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			if _, err := time.Parse(time.RFC3339, s); err != nil {
				return fmt.Errorf("%s must be a date", f.Name)
			}
		}
	case FieldBoolean:
		switch value.(type) {
		case bool:
		default:
			return fmt.Errorf("%s must be a boolean", f.Name)
		}
	case FieldSelect:
		s, ok := value.(string)
		if !ok || !f.hasOption(s) {
			return fmt.Errorf("%s must be one of the configured options", f.Name)
		}
	case FieldMultiSelect:
		items, ok := toStringSlice(value)
		if !ok {
			return fmt.Errorf("%s must be a list", f.Name)
		}
		for _, item := range items {
			if !f.hasOption(item) {
				return fmt.Errorf("%s contains an unknown option %q", f.Name, item)
			}
		}
	}
	return nil
}

// Rules derives the declarative validation rules for the field from its
// type, required flag, and options. Stored alongside the definition so
// clients can render validation without re-deriving it.
func (f *ContactCustomField) Rules() Strings {
	rules := Strings{}
	if f.IsRequired {
		rules = append(rules, "required")
	} else {
		rules = append(rules, "nullable")
	}

	switch f.Type {
	case FieldNumber:
		rules = append(rules, "numeric")
	case FieldDate:
		rules = append(rules, "date")
	case FieldBoolean:
		rules = append(rules, "boolean")
	case FieldSelect:
		if len(f.Options) > 0 {
			rules = append(rules, "in:"+strings.Join(f.Options, ","))
		}
	case FieldMultiSelect:
		rules = append(rules, "array")
		if len(f.Options) > 0 {
			rules = append(rules, "in:"+strings.Join(f.Options, ","))
		}
	}
	return rules
}

func (f *ContactCustomField) hasOption(value string) bool {
	for _, opt := range f.Options {
		if opt == value {
			return true
		}
	}
	return false
}

func toStringSlice(value interface{}) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
