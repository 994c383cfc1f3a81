// Package server implements the mindgrid HTTP API.
//
// The API is a thin JSON adapter over a store.Store: every route maps to one
// store operation, errors travel as structured payloads
// ({"error": {"code", "message"}}) with the status derived from the code,
// and pkg/store.Client speaks the same protocol from the other side. Any
// backend works - memory for throwaway servers, file or Mongo for durable
// ones, optionally wrapped in the Redis board cache.
package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/mindgrid/pkg/store"
)

// Server serves the map API over a store backend.
type Server struct {
	store  store.Store
	logger *log.Logger
	token  string
}

// Option configures a Server.
type Option func(*Server)

// WithToken requires the given bearer token on every /api route.
// An empty token leaves the API open.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// New creates a server reading and writing through st.
// If logger is nil, the package default logger is used.
func New(st store.Store, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{store: st, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.token != "" {
			r.Use(requireToken(s.token))
		}
		r.Route("/maps", func(r chi.Router) {
			r.Post("/", s.handleCreateMap)
			r.Get("/", s.handleListMaps)
			r.Route("/{mapID}", func(r chi.Router) {
				r.Get("/", s.handleGetMap)
				r.Patch("/", s.handleRenameMap)
				r.Delete("/", s.handleDeleteMap)
				r.Get("/board", s.handleGetBoard)
				r.Put("/nodes/{nodeID}", s.handlePutNode)
				r.Delete("/nodes/{nodeID}", s.handleDeleteNode)
				r.Post("/connections", s.handleCreateConnection)
				r.Delete("/connections/{connID}", s.handleDeleteConnection)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
