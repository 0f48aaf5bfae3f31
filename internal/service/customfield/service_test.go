package customfield_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/ignite/contacthub/internal/domain"
	"github.com/ignite/contacthub/internal/service/customfield"
)

type memRepo struct {
	mu     sync.Mutex
	fields map[string]*domain.ContactCustomField
}

func newMemRepo() *memRepo {
	return &memRepo{fields: make(map[string]*domain.ContactCustomField)}
}

func (m *memRepo) Get(_ context.Context, ownerID, id string) (*domain.ContactCustomField, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fields[id]
	if !ok || f.OwnerID != ownerID {
		return nil, customfield.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memRepo) GetByName(_ context.Context, ownerID, name string) (*domain.ContactCustomField, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.fields {
		if f.OwnerID == ownerID && f.Name == name {
			cp := *f
			return &cp, nil
		}
	}
	return nil, customfield.ErrNotFound
}

func (m *memRepo) List(_ context.Context, ownerID string, activeOnly bool) ([]domain.ContactCustomField, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ContactCustomField
	for _, f := range m.fields {
		if f.OwnerID != ownerID {
			continue
		}
		if activeOnly && !f.IsActive {
			continue
		}
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *memRepo) Create(_ context.Context, f *domain.ContactCustomField) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.fields {
		if existing.OwnerID == f.OwnerID && existing.Name == f.Name {
			return "", customfield.ErrDuplicateName
		}
	}
	cp := *f
	m.fields[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memRepo) Update(_ context.Context, ownerID, id string, u customfield.UpdateFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fields[id]
	if !ok || f.OwnerID != ownerID {
		return customfield.ErrNotFound
	}
	f.Label = u.Label
	f.Options = u.Options
	f.DefaultValue = u.DefaultValue
	f.IsRequired = u.IsRequired
	f.IsActive = u.IsActive
	f.SortOrder = u.SortOrder
	f.Description = u.Description
	f.ValidationRules = u.ValidationRules
	return nil
}

func (m *memRepo) Delete(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fields[id]
	if !ok || f.OwnerID != ownerID {
		return customfield.ErrNotFound
	}
	delete(m.fields, id)
	return nil
}

const testOwner = "owner-1"

func TestCreateNormalizesName(t *testing.T) {
	svc := customfield.NewService(newMemRepo())
	f, err := svc.Create(context.Background(), testOwner, customfield.FieldInput{
		Name: " Favorite Color ", Label: "Favorite Color", Type: "text", IsActive: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.Name != "favorite_color" {
		t.Errorf("name = %q, want favorite_color", f.Name)
	}

	got, err := svc.GetByName(context.Background(), testOwner, "Favorite Color")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if got.ID != f.ID {
		t.Error("GetByName should resolve through the normalized name")
	}
}

func TestCreateDuplicateName(t *testing.T) {
	svc := customfield.NewService(newMemRepo())
	ctx := context.Background()
	input := customfield.FieldInput{Name: "plan", Label: "Plan", Type: "text"}
	if _, err := svc.Create(ctx, testOwner, input); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, testOwner, input); err != customfield.ErrDuplicateName {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	// Same name under another owner is fine.
	if _, err := svc.Create(ctx, "owner-2", input); err != nil {
		t.Fatalf("same name, different owner: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := customfield.NewService(newMemRepo())
	tests := []struct {
		name  string
		input customfield.FieldInput
		field string
	}{
		{"missing name", customfield.FieldInput{Label: "X", Type: "text"}, "name"},
		{"short name", customfield.FieldInput{Name: "a", Label: "X", Type: "text"}, "name"},
		{"missing label", customfield.FieldInput{Name: "plan", Type: "text"}, "label"},
		{"bad type", customfield.FieldInput{Name: "plan", Label: "Plan", Type: "json"}, "type"},
		{"select without options", customfield.FieldInput{Name: "plan", Label: "Plan", Type: "select"}, "options"},
		{"multiselect without options", customfield.FieldInput{Name: "tags", Label: "Tags", Type: "multiselect"}, "options"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), testOwner, tt.input)
			ve, ok := customfield.IsValidation(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, present := ve.Fields[tt.field]; !present {
				t.Errorf("expected message for %q, got %v", tt.field, ve.Fields)
			}
		})
	}
}

func TestUpdateKeepsNameAndType(t *testing.T) {
	svc := customfield.NewService(newMemRepo())
	ctx := context.Background()
	f, err := svc.Create(ctx, testOwner, customfield.FieldInput{
		Name: "plan", Label: "Plan", Type: "select", Options: []string{"free", "pro"}, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Update(ctx, testOwner, f.ID, customfield.FieldInput{
		Name: "renamed", Label: "Subscription Plan", Type: "text",
		Options: []string{"free", "pro", "enterprise"}, IsActive: false,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "plan" || got.Type != domain.FieldSelect {
		t.Errorf("name/type changed on update: %s/%s", got.Name, got.Type)
	}
	if got.Label != "Subscription Plan" || got.IsActive {
		t.Errorf("editable fields not applied: %+v", got)
	}
	if len(got.Options) != 3 {
		t.Errorf("options = %v, want three entries", got.Options)
	}
}

func TestValidationRulesDerived(t *testing.T) {
	svc := customfield.NewService(newMemRepo())
	ctx := context.Background()

	f, err := svc.Create(ctx, testOwner, customfield.FieldInput{
		Name: "plan", Label: "Plan", Type: "select",
		Options: []string{"free", "pro"}, IsRequired: true, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := domain.Strings{"required", "in:free,pro"}
	if len(f.ValidationRules) != len(want) || f.ValidationRules[0] != want[0] || f.ValidationRules[1] != want[1] {
		t.Errorf("rules = %v, want %v", f.ValidationRules, want)
	}

	// Re-derived when options or the required flag change.
	got, err := svc.Update(ctx, testOwner, f.ID, customfield.FieldInput{
		Name: "plan", Label: "Plan", Type: "select",
		Options: []string{"free", "pro", "enterprise"}, IsRequired: false, IsActive: true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want = domain.Strings{"nullable", "in:free,pro,enterprise"}
	if len(got.ValidationRules) != len(want) || got.ValidationRules[0] != want[0] || got.ValidationRules[1] != want[1] {
		t.Errorf("rules after update = %v, want %v", got.ValidationRules, want)
	}
}

func TestListActiveOnlyAndOrder(t *testing.T) {
	svc := customfield.NewService(newMemRepo())
	ctx := context.Background()
	svc.Create(ctx, testOwner, customfield.FieldInput{Name: "bb", Label: "B", Type: "text", IsActive: true, SortOrder: 2})
	svc.Create(ctx, testOwner, customfield.FieldInput{Name: "aa", Label: "A", Type: "text", IsActive: true, SortOrder: 1})
	svc.Create(ctx, testOwner, customfield.FieldInput{Name: "cc", Label: "C", Type: "text", IsActive: false, SortOrder: 0})

	all, err := svc.List(ctx, testOwner, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}

	active, err := svc.List(ctx, testOwner, true)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 || active[0].Name != "aa" || active[1].Name != "bb" {
		t.Errorf("active = %v, want [aa bb] in sort order", active)
	}
}
