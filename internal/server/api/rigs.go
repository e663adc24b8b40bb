// Package api provides HTTP API handlers for the pose retargeting engine.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/natya/internal/rig"
	"github.com/ayusman/natya/internal/store"
)

// RigActivator loads a stored rig into the running engine.
type RigActivator interface {
	LoadRig(id string) error
}

// RigHandler handles HTTP requests for rig resources.
type RigHandler struct {
	store     *store.Store
	activator RigActivator
}

// NewRigHandler creates a new RigHandler. The activator may be nil, in
// which case activation requests fail.
func NewRigHandler(s *store.Store, activator RigActivator) *RigHandler {
	return &RigHandler{store: s, activator: activator}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *RigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/rigs, /api/rigs/{id},
	// /api/rigs/{id}/overrides, /api/rigs/{id}/activate
	path := strings.TrimPrefix(r.URL.Path, "/api/rigs")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "overrides":
		switch r.Method {
		case http.MethodGet:
			h.getOverrides(w, r, id)
		case http.MethodPut:
			h.setOverrides(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "activate":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.activate(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

// Request and response types

type createRigRequest struct {
	Name   string `json:"name"`
	Format string `json:"format"`
	Data   string `json:"data"`
}

type rigResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Format    string `json:"format"`
	Joints    int    `json:"joints"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type listRigsResponse struct {
	Rigs []rigResponse `json:"rigs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toRigResponse converts a store.Rig to a rigResponse. The joint count is
// zero when the stored data no longer parses.
func toRigResponse(stored *store.Rig) rigResponse {
	joints := 0
	if r, err := parseStoredRig(stored); err == nil {
		joints = r.JointCount()
	}

	return rigResponse{
		ID:        stored.ID,
		Name:      stored.Name,
		Format:    string(stored.Format),
		Joints:    joints,
		CreatedAt: stored.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: stored.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// parseStoredRig materializes a stored rig row into a joint tree.
func parseStoredRig(stored *store.Rig) (*rig.Rig, error) {
	switch stored.Format {
	case store.RigFormatBVH:
		return rig.ParseBVH(stored.Name, strings.NewReader(stored.Data))
	case store.RigFormatBuiltin:
		return rig.NewHumanoid(), nil
	default:
		return nil, errors.New("unknown rig format")
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/rigs and returns all rigs.
func (h *RigHandler) list(w http.ResponseWriter, r *http.Request) {
	rigs, err := h.store.Rigs().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rigs")
		return
	}

	response := listRigsResponse{
		Rigs: make([]rigResponse, 0, len(rigs)),
	}
	for _, stored := range rigs {
		response.Rigs = append(response.Rigs, toRigResponse(stored))
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/rigs. The rig data must parse and validate
// before it is stored.
func (h *RigHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createRigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Format != string(store.RigFormatBVH) && req.Format != string(store.RigFormatBuiltin) {
		writeError(w, http.StatusBadRequest, "Format must be 'bvh' or 'builtin'")
		return
	}

	stored := &store.Rig{
		ID:     uuid.NewString(),
		Name:   req.Name,
		Format: store.RigFormat(req.Format),
		Data:   req.Data,
	}

	if _, err := parseStoredRig(stored); err != nil {
		writeError(w, http.StatusBadRequest, "Rig data does not parse: "+err.Error())
		return
	}

	if err := h.store.Rigs().Create(stored); err != nil {
		writeError(w, http.StatusConflict, "Failed to create rig")
		return
	}

	writeJSON(w, http.StatusCreated, toRigResponse(stored))
}

// get handles GET /api/rigs/{id}.
func (h *RigHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	stored, err := h.store.Rigs().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Rig not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get rig")
		return
	}

	writeJSON(w, http.StatusOK, toRigResponse(stored))
}

// delete handles DELETE /api/rigs/{id}.
func (h *RigHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Rigs().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Rig not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete rig")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// getOverrides handles GET /api/rigs/{id}/overrides.
func (h *RigHandler) getOverrides(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Rigs().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Rig not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get rig")
		return
	}

	overrides, err := h.store.Rigs().GetOverrides(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get overrides")
		return
	}

	writeJSON(w, http.StatusOK, overrides)
}

// setOverrides handles PUT /api/rigs/{id}/overrides. Role names must be
// known and the named joints must exist in the rig.
func (h *RigHandler) setOverrides(w http.ResponseWriter, r *http.Request, id string) {
	stored, err := h.store.Rigs().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Rig not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get rig")
		return
	}

	var overrides map[string]string
	if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	parsed, err := parseStoredRig(stored)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Stored rig no longer parses")
		return
	}

	for roleName, joint := range overrides {
		if _, ok := rig.ParseRole(roleName); !ok {
			writeError(w, http.StatusBadRequest, "Unknown role: "+roleName)
			return
		}
		if parsed.Find(joint) == nil {
			writeError(w, http.StatusBadRequest, "Unknown joint: "+joint)
			return
		}
	}

	if err := h.store.Rigs().SetOverrides(id, overrides); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save overrides")
		return
	}

	writeJSON(w, http.StatusOK, overrides)
}

// activate handles POST /api/rigs/{id}/activate.
func (h *RigHandler) activate(w http.ResponseWriter, r *http.Request, id string) {
	if h.activator == nil {
		writeError(w, http.StatusServiceUnavailable, "Engine not running")
		return
	}

	if err := h.activator.LoadRig(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Rig not found")
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to activate rig: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"active": id})
}
