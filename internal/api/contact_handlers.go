package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/contacthub/internal/domain"
	"github.com/ignite/contacthub/internal/service/contact"
)

// requestMeta builds activity attribution from the request.
func requestMeta(r *http.Request, source string) contact.Meta {
	return contact.Meta{
		Source:    source,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

func (s *Server) handleSearchContacts(w http.ResponseWriter, r *http.Request) {
	pag := ParsePagination(r, contact.DefaultPageSize, 100)
	q := r.URL.Query()

	page, err := s.contacts.Search(r.Context(), ownerID(r), contact.Filter{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Tag:      q.Get("tag"),
		Page:     pag.Page,
		PageSize: pag.PageSize,
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, page)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.contacts.Get(r.Context(), ownerID(r), chi.URLParam(r, "contactID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, c)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var input contact.CreateInput
	if !decodeBody(w, r, &input) {
		return
	}
	if input.IPAddress == "" {
		input.IPAddress = r.RemoteAddr
	}
	if input.UserAgent == "" {
		input.UserAgent = r.UserAgent()
	}
	c, err := s.contacts.Create(r.Context(), ownerID(r), input)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonStatus(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Phone     *string `json:"phone"`
		Company   *string `json:"company"`
		JobTitle  *string `json:"job_title"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	c, err := s.contacts.Update(r.Context(), ownerID(r), chi.URLParam(r, "contactID"),
		contact.UpdateFields{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Phone:     input.Phone,
			Company:   input.Company,
			JobTitle:  input.JobTitle,
		}, requestMeta(r, "manual"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, c)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := s.contacts.Delete(r.Context(), ownerID(r), chi.URLParam(r, "contactID")); err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Contact deleted successfully!"})
}

func (s *Server) handleSubscribeContact(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Source string `json:"source"`
	}
	decodeOptionalBody(r, &input)
	err := s.contacts.Subscribe(r.Context(), ownerID(r), chi.URLParam(r, "contactID"),
		requestMeta(r, input.Source))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Contact subscribed successfully!"})
}

func (s *Server) handleUnsubscribeContact(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Reason string `json:"reason"`
		Source string `json:"source"`
	}
	decodeOptionalBody(r, &input)
	err := s.contacts.Unsubscribe(r.Context(), ownerID(r), chi.URLParam(r, "contactID"),
		input.Reason, requestMeta(r, input.Source))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Contact unsubscribed successfully!"})
}

func (s *Server) handleBounceContact(w http.ResponseWriter, r *http.Request) {
	err := s.contacts.MarkBounced(r.Context(), ownerID(r), chi.URLParam(r, "contactID"),
		requestMeta(r, "system"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Contact marked as bounced"})
}

func (s *Server) handleComplaintContact(w http.ResponseWriter, r *http.Request) {
	err := s.contacts.MarkComplained(r.Context(), ownerID(r), chi.URLParam(r, "contactID"),
		requestMeta(r, "system"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Contact marked as complained"})
}

func (s *Server) handleVerifyContact(w http.ResponseWriter, r *http.Request) {
	err := s.contacts.Verify(r.Context(), ownerID(r), chi.URLParam(r, "contactID"),
		requestMeta(r, "system"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Email verified successfully!"})
}

func (s *Server) handleAddTag(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Tag string `json:"tag"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	if input.Tag == "" {
		jsonError(w, "tag is required", http.StatusBadRequest)
		return
	}
	err := s.contacts.AddTag(r.Context(), ownerID(r), chi.URLParam(r, "contactID"),
		input.Tag, requestMeta(r, "manual"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Tag added successfully!"})
}

func (s *Server) handleRemoveTag(w http.ResponseWriter, r *http.Request) {
	err := s.contacts.RemoveTag(r.Context(), ownerID(r), chi.URLParam(r, "contactID"),
		chi.URLParam(r, "tag"), requestMeta(r, "manual"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Tag removed successfully!"})
}

func (s *Server) handleSetCustomField(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Value interface{} `json:"value"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	err := s.contacts.UpdateCustomField(r.Context(), ownerID(r), chi.URLParam(r, "contactID"),
		chi.URLParam(r, "field"), input.Value, requestMeta(r, "manual"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Custom field updated successfully!"})
}

func (s *Server) handleContactActivities(w http.ResponseWriter, r *http.Request) {
	pag := ParsePagination(r, 30, 100)
	activities, err := s.contacts.Activities(r.Context(), ownerID(r),
		chi.URLParam(r, "contactID"), pag.PageSize)
	if err != nil {
		serviceError(w, err)
		return
	}
	if activities == nil {
		activities = []domain.ContactActivity{}
	}
	jsonResponse(w, map[string]interface{}{"activities": activities})
}

func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Type        string      `json:"type"`
		Description string      `json:"description"`
		Properties  domain.JSON `json:"properties"`
		Source      string      `json:"source"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	act, err := s.contacts.RecordActivity(r.Context(), ownerID(r), chi.URLParam(r, "contactID"),
		domain.ActivityType(input.Type), input.Description, input.Properties,
		requestMeta(r, input.Source))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonStatus(w, http.StatusCreated, act)
}

func (s *Server) handleContactLists(w http.ResponseWriter, r *http.Request) {
	entries, err := s.members.ListsOf(r.Context(), ownerID(r), chi.URLParam(r, "contactID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]interface{}{"lists": entries})
}
