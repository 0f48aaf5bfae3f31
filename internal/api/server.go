package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/contacthub/internal/config"
	"github.com/ignite/contacthub/internal/service/contact"
	"github.com/ignite/contacthub/internal/service/contactlist"
	"github.com/ignite/contacthub/internal/service/customfield"
	"github.com/ignite/contacthub/internal/service/imports"
	"github.com/ignite/contacthub/internal/service/membership"
)

// Server represents the API server
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server

	lists    *contactlist.Service
	contacts *contact.Service
	members  *membership.Service
	fields   *customfield.Service
	imports  *imports.Service
}

// Services bundles the service layer dependencies of the API.
type Services struct {
	Lists    *contactlist.Service
	Contacts *contact.Service
	Members  *membership.Service
	Fields   *customfield.Service
	Imports  *imports.Service
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, cors config.CORSConfig, svcs Services) *Server {
	s := &Server{
		config:   cfg,
		lists:    svcs.Lists,
		contacts: svcs.Contacts,
		members:  svcs.Members,
		fields:   svcs.Fields,
		imports:  svcs.Imports,
	}
	s.handler = SetupRoutes(s, cors)
	return s
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
