package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/contacthub/internal/config"
)

// SetupRoutes configures all API routes.
func SetupRoutes(s *Server, corsCfg config.CORSConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsCfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Owner-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (no owner required)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireOwner)

		r.Route("/lists", func(r chi.Router) {
			r.Get("/", s.handleListLists)
			r.Post("/", s.handleCreateList)
			r.Get("/stats", s.handleListStats)
			r.Get("/selector", s.handleListSelector)
			r.Post("/bulk", s.handleBulkLists)

			r.Route("/{listID}", func(r chi.Router) {
				r.Get("/", s.handleGetList)
				r.Put("/", s.handleUpdateList)
				r.Delete("/", s.handleDeleteList)
				r.Post("/toggle-status", s.handleToggleListStatus)
				r.Get("/preview", s.handlePreviewList)

				r.Route("/contacts", func(r chi.Router) {
					r.Get("/", s.handleListMembers)
					r.Post("/{contactID}", s.handleAttach)
					r.Delete("/{contactID}", s.handleDetach)
					r.Post("/{contactID}/unsubscribe", s.handleMemberUnsubscribe)
					r.Post("/{contactID}/resubscribe", s.handleMemberResubscribe)
				})
			})
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", s.handleSearchContacts)
			r.Post("/", s.handleCreateContact)

			r.Route("/{contactID}", func(r chi.Router) {
				r.Get("/", s.handleGetContact)
				r.Put("/", s.handleUpdateContact)
				r.Delete("/", s.handleDeleteContact)
				r.Post("/subscribe", s.handleSubscribeContact)
				r.Post("/unsubscribe", s.handleUnsubscribeContact)
				r.Post("/bounce", s.handleBounceContact)
				r.Post("/complaint", s.handleComplaintContact)
				r.Post("/verify", s.handleVerifyContact)
				r.Post("/tags", s.handleAddTag)
				r.Delete("/tags/{tag}", s.handleRemoveTag)
				r.Put("/custom-fields/{field}", s.handleSetCustomField)
				r.Get("/activities", s.handleContactActivities)
				r.Post("/activities", s.handleRecordActivity)
				r.Get("/lists", s.handleContactLists)
			})
		})

		r.Route("/custom-fields", func(r chi.Router) {
			r.Get("/", s.handleListFields)
			r.Post("/", s.handleCreateField)
			r.Get("/{fieldID}", s.handleGetField)
			r.Put("/{fieldID}", s.handleUpdateField)
			r.Delete("/{fieldID}", s.handleDeleteField)
		})

		r.Route("/imports", func(r chi.Router) {
			r.Get("/", s.handleListImports)
			r.Post("/", s.handleCreateImport)
			r.Get("/{importID}", s.handleGetImport)
			r.Post("/{importID}/start", s.handleStartImport)
			r.Post("/{importID}/complete", s.handleCompleteImport)
			r.Post("/{importID}/fail", s.handleFailImport)
			r.Post("/{importID}/progress", s.handleImportProgress)
			r.Post("/{importID}/errors", s.handleImportError)
		})
	})

	return r
}
