package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/contacthub/internal/domain"
	"github.com/ignite/contacthub/internal/service/customfield"
)

func (s *Server) handleListFields(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	fields, err := s.fields.List(r.Context(), ownerID(r), activeOnly)
	if err != nil {
		serviceError(w, err)
		return
	}
	if fields == nil {
		fields = []domain.ContactCustomField{}
	}
	jsonResponse(w, map[string]interface{}{"fields": fields})
}

func (s *Server) handleGetField(w http.ResponseWriter, r *http.Request) {
	f, err := s.fields.Get(r.Context(), ownerID(r), chi.URLParam(r, "fieldID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, f)
}

func (s *Server) handleCreateField(w http.ResponseWriter, r *http.Request) {
	var input customfield.FieldInput
	if !decodeBody(w, r, &input) {
		return
	}
	f, err := s.fields.Create(r.Context(), ownerID(r), input)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonStatus(w, http.StatusCreated, f)
}

func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	var input customfield.FieldInput
	if !decodeBody(w, r, &input) {
		return
	}
	f, err := s.fields.Update(r.Context(), ownerID(r), chi.URLParam(r, "fieldID"), input)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, f)
}

func (s *Server) handleDeleteField(w http.ResponseWriter, r *http.Request) {
	if err := s.fields.Delete(r.Context(), ownerID(r), chi.URLParam(r, "fieldID")); err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Custom field deleted successfully!"})
}
