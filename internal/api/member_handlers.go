package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/contacthub/internal/service/membership"
)

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	pag := ParsePagination(r, membership.DefaultPageSize, 100)
	q := r.URL.Query()

	page, err := s.members.Members(r.Context(), ownerID(r), chi.URLParam(r, "listID"),
		membership.MemberFilter{
			Search:   q.Get("search"),
			Status:   q.Get("status"),
			Page:     pag.Page,
			PageSize: pag.PageSize,
		})
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, page)
}

func (s *Server) handleAttach(w http.ResponseWriter, r *http.Request) {
	var input membership.AttachInput
	decodeOptionalBody(r, &input)

	pivot, err := s.members.Attach(r.Context(), ownerID(r),
		chi.URLParam(r, "listID"), chi.URLParam(r, "contactID"), input)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonStatus(w, http.StatusCreated, map[string]interface{}{
		"membership": pivot, "message": "Contact added to list successfully!",
	})
}

func (s *Server) handleDetach(w http.ResponseWriter, r *http.Request) {
	err := s.members.Detach(r.Context(), ownerID(r),
		chi.URLParam(r, "listID"), chi.URLParam(r, "contactID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Contact removed from list successfully!"})
}

func (s *Server) handleMemberUnsubscribe(w http.ResponseWriter, r *http.Request) {
	err := s.members.Unsubscribe(r.Context(), ownerID(r),
		chi.URLParam(r, "listID"), chi.URLParam(r, "contactID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Contact unsubscribed from list"})
}

func (s *Server) handleMemberResubscribe(w http.ResponseWriter, r *http.Request) {
	err := s.members.Resubscribe(r.Context(), ownerID(r),
		chi.URLParam(r, "listID"), chi.URLParam(r, "contactID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Contact resubscribed to list"})
}
