package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/contacthub/internal/domain"
	"github.com/ignite/contacthub/internal/service/contactlist"
)

func (s *Server) handleListLists(w http.ResponseWriter, r *http.Request) {
	pag := ParsePagination(r, contactlist.DefaultPageSize, 100)
	q := r.URL.Query()

	page, err := s.lists.List(r.Context(), ownerID(r), contactlist.Filter{
		Search:   q.Get("search"),
		Type:     q.Get("type"),
		Status:   q.Get("status"),
		SortBy:   q.Get("sort_by"),
		SortDir:  q.Get("sort_dir"),
		Page:     pag.Page,
		PageSize: pag.PageSize,
	})
	if err != nil {
		serviceError(w, err)
		return
	}

	// The dashboard shows the aggregates next to the table, so the listing
	// carries them along.
	ov, err := s.lists.Stats(r.Context(), ownerID(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	if page.Lists == nil {
		page.Lists = []domain.ContactList{}
	}
	jsonResponse(w, map[string]interface{}{
		"lists":       page.Lists,
		"total":       page.Total,
		"page":        page.Page,
		"page_size":   page.PageSize,
		"total_pages": page.TotalPages,
		"stats":       ov.Stats,
	})
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	l, err := s.lists.Get(r.Context(), ownerID(r), chi.URLParam(r, "listID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, l)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var input contactlist.ListInput
	if !decodeBody(w, r, &input) {
		return
	}
	l, err := s.lists.Create(r.Context(), ownerID(r), input)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonStatus(w, http.StatusCreated, map[string]interface{}{
		"list": l, "message": contactlist.MsgCreated,
	})
}

func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	var input contactlist.ListInput
	if !decodeBody(w, r, &input) {
		return
	}
	l, err := s.lists.Update(r.Context(), ownerID(r), chi.URLParam(r, "listID"), input)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"list": l, "message": contactlist.MsgUpdated,
	})
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if err := s.lists.Delete(r.Context(), ownerID(r), chi.URLParam(r, "listID")); err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": contactlist.MsgDeleted})
}

func (s *Server) handleToggleListStatus(w http.ResponseWriter, r *http.Request) {
	l, err := s.lists.ToggleStatus(r.Context(), ownerID(r), chi.URLParam(r, "listID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"list": l, "message": contactlist.MsgStatusToggled,
	})
}

func (s *Server) handleBulkLists(w http.ResponseWriter, r *http.Request) {
	var input contactlist.BulkInput
	if !decodeBody(w, r, &input) {
		return
	}
	res, err := s.lists.Bulk(r.Context(), ownerID(r), input)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, res)
}

func (s *Server) handleListStats(w http.ResponseWriter, r *http.Request) {
	ov, err := s.lists.Stats(r.Context(), ownerID(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, ov)
}

func (s *Server) handlePreviewList(w http.ResponseWriter, r *http.Request) {
	p, err := s.lists.Preview(r.Context(), ownerID(r), chi.URLParam(r, "listID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, p)
}

func (s *Server) handleListSelector(w http.ResponseWriter, r *http.Request) {
	lists, err := s.lists.Selector(r.Context(), ownerID(r), r.URL.Query().Get("search"))
	if err != nil {
		serviceError(w, err)
		return
	}
	if lists == nil {
		lists = []domain.ContactList{}
	}
	jsonResponse(w, map[string]interface{}{"lists": lists})
}
