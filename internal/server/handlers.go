package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/errors"
)

// =============================================================================
// Maps
// =============================================================================

// handleCreateMap handles POST /api/maps.
func (s *Server) handleCreateMap(w http.ResponseWriter, r *http.Request) {
	var m board.Map
	if err := decodeBody(r, &m); err != nil {
		writeError(w, err)
		return
	}
	if m.ID == "" {
		m.ID = board.NewID()
	}

	if err := s.store.CreateMap(r.Context(), &m); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// handleListMaps handles GET /api/maps.
func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	maps, err := s.store.ListMaps(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if maps == nil {
		maps = []board.Map{}
	}
	writeJSON(w, http.StatusOK, maps)
}

// handleGetMap handles GET /api/maps/{mapID}.
func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetMap(r.Context(), chi.URLParam(r, "mapID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleRenameMap handles PATCH /api/maps/{mapID}.
func (s *Server) handleRenameMap(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.RenameMap(r.Context(), chi.URLParam(r, "mapID"), body.Title); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteMap handles DELETE /api/maps/{mapID}.
func (s *Server) handleDeleteMap(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteMap(r.Context(), chi.URLParam(r, "mapID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetBoard handles GET /api/maps/{mapID}/board.
func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.LoadBoard(r.Context(), chi.URLParam(r, "mapID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board.FromBoard(b))
}

// =============================================================================
// Nodes and Connections
// =============================================================================

// handlePutNode handles PUT /api/maps/{mapID}/nodes/{nodeID}.
// The URL is authoritative for both identifiers.
func (s *Server) handlePutNode(w http.ResponseWriter, r *http.Request) {
	var n board.Node
	if err := decodeBody(r, &n); err != nil {
		writeError(w, err)
		return
	}
	n.MapID = chi.URLParam(r, "mapID")
	n.ID = chi.URLParam(r, "nodeID")
	n.ApplyDefaults()

	if err := s.store.PutNode(r.Context(), &n); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// handleDeleteNode handles DELETE /api/maps/{mapID}/nodes/{nodeID}.
// Incident connections are cascaded by the store.
func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteNode(r.Context(), chi.URLParam(r, "mapID"), chi.URLParam(r, "nodeID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCreateConnection handles POST /api/maps/{mapID}/connections.
func (s *Server) handleCreateConnection(w http.ResponseWriter, r *http.Request) {
	var c board.Connection
	if err := decodeBody(r, &c); err != nil {
		writeError(w, err)
		return
	}
	c.MapID = chi.URLParam(r, "mapID")
	if c.ID == "" {
		c.ID = board.NewID()
	}

	if err := s.store.PutConnection(r.Context(), &c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// handleDeleteConnection handles DELETE /api/maps/{mapID}/connections/{connID}.
func (s *Server) handleDeleteConnection(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteConnection(r.Context(), chi.URLParam(r, "mapID"), chi.URLParam(r, "connID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// JSON Helpers
// =============================================================================

func decodeBody(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError serializes an error as the API's wire payload, with the HTTP
// status derived from its code. Errors without a code read as internal.
func writeError(w http.ResponseWriter, err error) {
	payload := errors.ToPayload(err)
	writeJSON(w, errors.HTTPStatus(payload.Code), map[string]errors.Payload{"error": payload})
}
