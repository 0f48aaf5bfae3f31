package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/contacthub/internal/domain"
	imp "github.com/ignite/contacthub/internal/service/imports"
)

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	pag := ParsePagination(r, 20, 100)
	jobs, err := s.imports.List(r.Context(), ownerID(r), pag.PageSize)
	if err != nil {
		serviceError(w, err)
		return
	}
	if jobs == nil {
		jobs = []domain.ContactImport{}
	}
	jsonResponse(w, map[string]interface{}{"imports": jobs})
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	job, err := s.imports.Get(r.Context(), ownerID(r), chi.URLParam(r, "importID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"import":              job,
		"progress_percentage": job.ProgressPercentage(),
		"success_rate":        job.SuccessRate(),
		"duration":            job.Duration(),
	})
}

func (s *Server) handleCreateImport(w http.ResponseWriter, r *http.Request) {
	var input imp.CreateInput
	if !decodeBody(w, r, &input) {
		return
	}
	job, err := s.imports.Create(r.Context(), ownerID(r), input)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonStatus(w, http.StatusCreated, job)
}

func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	if err := s.imports.MarkAsProcessing(r.Context(), ownerID(r), chi.URLParam(r, "importID")); err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Import started"})
}

func (s *Server) handleCompleteImport(w http.ResponseWriter, r *http.Request) {
	if err := s.imports.MarkAsCompleted(r.Context(), ownerID(r), chi.URLParam(r, "importID")); err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Import completed"})
}

func (s *Server) handleFailImport(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Message string `json:"message"`
	}
	decodeOptionalBody(r, &input)
	if err := s.imports.MarkAsFailed(r.Context(), ownerID(r), chi.URLParam(r, "importID"), input.Message); err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Import marked as failed"})
}

func (s *Server) handleImportProgress(w http.ResponseWriter, r *http.Request) {
	var input imp.Progress
	if !decodeBody(w, r, &input) {
		return
	}
	if err := s.imports.UpdateProgress(r.Context(), ownerID(r), chi.URLParam(r, "importID"), input); err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Progress recorded"})
}

func (s *Server) handleImportError(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Row     int    `json:"row"`
		Message string `json:"message"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	if err := s.imports.AddError(r.Context(), ownerID(r), chi.URLParam(r, "importID"), input.Row, input.Message); err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]string{"message": "Error recorded"})
}
