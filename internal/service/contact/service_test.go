package contact_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/ignite/contacthub/internal/domain"
	"github.com/ignite/contacthub/internal/service/contact"
)

// memRepo is an in-memory contact repository for unit testing. ApplyStatus,
// SetTags, and SetCustomFields mimic the transactional contract: the row
// update and the activity append happen together.
type memRepo struct {
	mu         sync.Mutex
	contacts   map[string]*domain.Contact
	activities []domain.ContactActivity
}

func newMemRepo() *memRepo {
	return &memRepo{contacts: make(map[string]*domain.Contact)}
}

func (m *memRepo) Get(_ context.Context, ownerID, id string) (*domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return nil, contact.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) Search(_ context.Context, ownerID string, f contact.Filter) ([]domain.Contact, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Contact
	needle := strings.ToLower(f.Search)
	for _, c := range m.contacts {
		if c.OwnerID != ownerID {
			continue
		}
		if f.Search != "" {
			hay := strings.ToLower(c.Email + " " + c.FirstName + " " + c.LastName + " " + c.Company)
			if !strings.Contains(hay, needle) {
				continue
			}
		}
		if f.Status != "all" && string(c.Status) != f.Status {
			continue
		}
		if f.Tag != "" && !c.HasTag(f.Tag) {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *memRepo) Create(_ context.Context, c *domain.Contact) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.contacts {
		if existing.OwnerID == c.OwnerID && existing.Email == c.Email {
			return "", contact.ErrDuplicateEmail
		}
	}
	cp := *c
	m.contacts[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memRepo) Update(_ context.Context, ownerID, id string, u contact.UpdateFields, act *domain.ContactActivity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return contact.ErrNotFound
	}
	if u.FirstName != nil {
		c.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		c.LastName = *u.LastName
	}
	if u.Phone != nil {
		c.Phone = *u.Phone
	}
	if u.Company != nil {
		c.Company = *u.Company
	}
	if u.JobTitle != nil {
		c.JobTitle = *u.JobTitle
	}
	m.activities = append(m.activities, *act)
	return nil
}

func (m *memRepo) Delete(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return contact.ErrNotFound
	}
	delete(m.contacts, id)
	return nil
}

func (m *memRepo) ApplyStatus(_ context.Context, ownerID, id string, u contact.StatusUpdate, act *domain.ContactActivity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return contact.ErrNotFound
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.SubscribedAt != nil {
		c.SubscribedAt = u.SubscribedAt
	}
	if u.ClearUnsubscribed {
		c.UnsubscribedAt = nil
		c.UnsubscribeReason = ""
	}
	if u.UnsubscribedAt != nil {
		c.UnsubscribedAt = u.UnsubscribedAt
	}
	if u.UnsubscribeReason != nil {
		c.UnsubscribeReason = *u.UnsubscribeReason
	}
	if u.EmailVerified != nil {
		c.EmailVerified = *u.EmailVerified
	}
	if u.EmailVerifiedAt != nil {
		c.EmailVerifiedAt = u.EmailVerifiedAt
	}
	if u.ClearVerificationToken {
		c.VerificationToken = ""
	}
	if u.LastActivityAt != nil {
		c.LastActivityAt = u.LastActivityAt
	}
	m.activities = append(m.activities, *act)
	return nil
}

func (m *memRepo) SetTags(_ context.Context, ownerID, id string, tags domain.Strings, act *domain.ContactActivity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return contact.ErrNotFound
	}
	c.Tags = tags
	m.activities = append(m.activities, *act)
	return nil
}

func (m *memRepo) SetCustomFields(_ context.Context, ownerID, id string, fields domain.JSON, act *domain.ContactActivity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return contact.ErrNotFound
	}
	c.CustomFields = fields
	m.activities = append(m.activities, *act)
	return nil
}

func (m *memRepo) AddActivity(_ context.Context, a *domain.ContactActivity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = append(m.activities, *a)
	return nil
}

func (m *memRepo) Activities(_ context.Context, ownerID, contactID string, limit int) ([]domain.ContactActivity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ContactActivity
	for i := len(m.activities) - 1; i >= 0 && len(out) < limit; i-- {
		a := m.activities[i]
		if a.OwnerID == ownerID && a.ContactID == contactID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memRepo) OwnerOf(_ context.Context, contactID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[contactID]
	if !ok {
		return "", contact.ErrNotFound
	}
	return c.OwnerID, nil
}

func (m *memRepo) lastActivity() *domain.ContactActivity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.activities) == 0 {
		return nil
	}
	a := m.activities[len(m.activities)-1]
	return &a
}

// fixedFields is a stub FieldDefinitions returning a single definition.
type fixedFields struct{ def *domain.ContactCustomField }

func (f *fixedFields) GetByName(_ context.Context, ownerID, name string) (*domain.ContactCustomField, error) {
	if f.def != nil && f.def.Name == name {
		return f.def, nil
	}
	return nil, contact.ErrNotFound
}

const testOwner = "owner-1"

func mustCreate(t *testing.T, svc *contact.Service, email string) *domain.Contact {
	t.Helper()
	c, err := svc.Create(context.Background(), testOwner, contact.CreateInput{Email: email, Source: "manual"})
	if err != nil {
		t.Fatalf("create %s: %v", email, err)
	}
	return c
}

func TestCreateDefaults(t *testing.T) {
	svc := contact.NewService(newMemRepo(), nil)
	c, err := svc.Create(context.Background(), testOwner, contact.CreateInput{Email: "  Ada@Example.COM "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Email != "ada@example.com" {
		t.Errorf("email = %q, want normalized ada@example.com", c.Email)
	}
	if c.Status != domain.ContactSubscribed {
		t.Errorf("status = %s, want subscribed", c.Status)
	}
	if c.SubscribedAt == nil {
		t.Error("subscribed_at should be set on create")
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newMemRepo()
	svc := contact.NewService(repo, nil)
	mustCreate(t, svc, "dup@example.com")

	_, err := svc.Create(context.Background(), testOwner, contact.CreateInput{Email: "DUP@example.com"})
	if err != contact.ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// Same email under a different owner is fine.
	if _, err := svc.Create(context.Background(), "owner-2", contact.CreateInput{Email: "dup@example.com"}); err != nil {
		t.Fatalf("same email, different owner: %v", err)
	}
}

func TestCreateInvalidEmail(t *testing.T) {
	svc := contact.NewService(newMemRepo(), nil)
	for _, email := range []string{"", "not-an-email", "missing@tld@x"} {
		if _, err := svc.Create(context.Background(), testOwner, contact.CreateInput{Email: email}); err != contact.ErrInvalidEmail {
			t.Errorf("Create(%q): expected ErrInvalidEmail, got %v", email, err)
		}
	}
}

func TestStatusTransitionsAppendActivity(t *testing.T) {
	tests := []struct {
		name     string
		apply    func(svc *contact.Service, id string) error
		status   domain.ContactStatus
		activity domain.ActivityType
	}{
		{
			"bounce",
			func(svc *contact.Service, id string) error {
				return svc.MarkBounced(context.Background(), testOwner, id, contact.Meta{})
			},
			domain.ContactBounced, domain.ActivityBounced,
		},
		{
			"complaint",
			func(svc *contact.Service, id string) error {
				return svc.MarkComplained(context.Background(), testOwner, id, contact.Meta{})
			},
			domain.ContactComplained, domain.ActivityComplained,
		},
		{
			"unsubscribe",
			func(svc *contact.Service, id string) error {
				return svc.Unsubscribe(context.Background(), testOwner, id, "too many emails", contact.Meta{})
			},
			domain.ContactUnsubscribed, domain.ActivityUnsubscribed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			svc := contact.NewService(repo, nil)
			c := mustCreate(t, svc, "x@example.com")

			if err := tt.apply(svc, c.ID); err != nil {
				t.Fatalf("transition: %v", err)
			}

			got, _ := svc.Get(context.Background(), testOwner, c.ID)
			if got.Status != tt.status {
				t.Errorf("status = %s, want %s", got.Status, tt.status)
			}
			act := repo.lastActivity()
			if act == nil || act.ActivityType != tt.activity {
				t.Errorf("last activity = %+v, want type %s", act, tt.activity)
			}
		})
	}
}

func TestSubscribeClearsUnsubscribeState(t *testing.T) {
	repo := newMemRepo()
	svc := contact.NewService(repo, nil)
	c := mustCreate(t, svc, "x@example.com")

	if err := svc.Unsubscribe(context.Background(), testOwner, c.ID, "bye", contact.Meta{}); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := svc.Subscribe(context.Background(), testOwner, c.ID, contact.Meta{Source: "form"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	got, _ := svc.Get(context.Background(), testOwner, c.ID)
	if got.Status != domain.ContactSubscribed {
		t.Errorf("status = %s, want subscribed", got.Status)
	}
	if got.UnsubscribedAt != nil || got.UnsubscribeReason != "" {
		t.Error("unsubscribe state should be cleared on resubscribe")
	}
}

func TestVerify(t *testing.T) {
	repo := newMemRepo()
	svc := contact.NewService(repo, nil)
	c := mustCreate(t, svc, "x@example.com")

	if err := svc.Verify(context.Background(), testOwner, c.ID, contact.Meta{}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	got, _ := svc.Get(context.Background(), testOwner, c.ID)
	if !got.EmailVerified || got.EmailVerifiedAt == nil {
		t.Error("contact should be verified with a timestamp")
	}
	if act := repo.lastActivity(); act == nil || act.ActivityType != domain.ActivityEmailVerified {
		t.Errorf("expected email_verified activity, got %+v", act)
	}
}

func TestAddRemoveTag(t *testing.T) {
	repo := newMemRepo()
	svc := contact.NewService(repo, nil)
	c := mustCreate(t, svc, "x@example.com")
	ctx := context.Background()

	if err := svc.AddTag(ctx, testOwner, c.ID, "vip", contact.Meta{}); err != nil {
		t.Fatalf("add tag: %v", err)
	}
	if err := svc.AddTag(ctx, testOwner, c.ID, "beta", contact.Meta{}); err != nil {
		t.Fatalf("add tag: %v", err)
	}

	// Re-adding is a no-op and logs nothing.
	before := len(repo.activities)
	if err := svc.AddTag(ctx, testOwner, c.ID, "vip", contact.Meta{}); err != nil {
		t.Fatalf("re-add tag: %v", err)
	}
	if len(repo.activities) != before {
		t.Error("re-adding an existing tag should not log an activity")
	}

	if err := svc.RemoveTag(ctx, testOwner, c.ID, "vip", contact.Meta{}); err != nil {
		t.Fatalf("remove tag: %v", err)
	}
	got, _ := svc.Get(ctx, testOwner, c.ID)
	if len(got.Tags) != 1 || got.Tags[0] != "beta" {
		t.Errorf("tags = %v, want [beta]", got.Tags)
	}
	if act := repo.lastActivity(); act.ActivityType != domain.ActivityTagRemoved {
		t.Errorf("last activity = %s, want tag_removed", act.ActivityType)
	}
}

func TestUpdateCustomFieldValidated(t *testing.T) {
	def := &domain.ContactCustomField{
		Name: "plan", Type: domain.FieldSelect,
		Options: domain.Strings{"free", "pro"}, IsActive: true,
	}
	repo := newMemRepo()
	svc := contact.NewService(repo, &fixedFields{def: def})
	c := mustCreate(t, svc, "x@example.com")
	ctx := context.Background()

	if err := svc.UpdateCustomField(ctx, testOwner, c.ID, "plan", "enterprise", contact.Meta{}); err == nil {
		t.Fatal("expected validation error for unknown option")
	}

	if err := svc.UpdateCustomField(ctx, testOwner, c.ID, "plan", "pro", contact.Meta{}); err != nil {
		t.Fatalf("update custom field: %v", err)
	}
	got, _ := svc.Get(ctx, testOwner, c.ID)
	if got.CustomFields["plan"] != "pro" {
		t.Errorf("custom_fields.plan = %v, want pro", got.CustomFields["plan"])
	}

	// Fields without a definition pass through.
	if err := svc.UpdateCustomField(ctx, testOwner, c.ID, "nickname", "ace", contact.Meta{}); err != nil {
		t.Fatalf("update undefined field: %v", err)
	}
	if act := repo.lastActivity(); act.ActivityType != domain.ActivityCustomFieldUpdated {
		t.Errorf("last activity = %s, want custom_field_updated", act.ActivityType)
	}
}

func TestUpdateLogsOldAndNewValues(t *testing.T) {
	repo := newMemRepo()
	svc := contact.NewService(repo, nil)
	c, err := svc.Create(context.Background(), testOwner, contact.CreateInput{Email: "x@example.com", FirstName: "Ada"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newName := "Grace"
	got, err := svc.Update(context.Background(), testOwner, c.ID, contact.UpdateFields{FirstName: &newName}, contact.Meta{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.FirstName != "Grace" {
		t.Errorf("first_name = %q, want Grace", got.FirstName)
	}

	act := repo.lastActivity()
	if act.ActivityType != domain.ActivityUpdated {
		t.Fatalf("activity type = %s, want updated", act.ActivityType)
	}
	if act.OldValues["first_name"] != "Ada" || act.NewValues["first_name"] != "Grace" {
		t.Errorf("old/new = %v / %v", act.OldValues, act.NewValues)
	}
}

func TestRecordActivityCrossOwnerForbidden(t *testing.T) {
	repo := newMemRepo()
	svc := contact.NewService(repo, nil)
	c := mustCreate(t, svc, "x@example.com")

	_, err := svc.RecordActivity(context.Background(), "intruder", c.ID, domain.ActivityUpdated, "sneaky", nil, contact.Meta{})
	if err != contact.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	_, err = svc.RecordActivity(context.Background(), testOwner, "no-such-contact", domain.ActivityUpdated, "", nil, contact.Meta{})
	if err != contact.ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown contact, got %v", err)
	}
}

func TestSearchMatchesProfileFields(t *testing.T) {
	svc := contact.NewService(newMemRepo(), nil)
	ctx := context.Background()
	svc.Create(ctx, testOwner, contact.CreateInput{Email: "ada@acme.com", FirstName: "Ada", Company: "Acme"})
	svc.Create(ctx, testOwner, contact.CreateInput{Email: "bob@globex.com", FirstName: "Bob", Company: "Globex"})

	page, err := svc.Search(ctx, testOwner, contact.Filter{Search: "ACME"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 1 || page.Contacts[0].Email != "ada@acme.com" {
		t.Errorf("search acme: total = %d, want only ada@acme.com", page.Total)
	}
}
