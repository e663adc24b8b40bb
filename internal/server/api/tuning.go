package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/natya/internal/retarget"
	"github.com/ayusman/natya/internal/store"
)

// TuningHandler handles HTTP requests for tuning profile resources.
type TuningHandler struct {
	store *store.Store
	apply func(id string, tuning retarget.Tuning) error
}

// NewTuningHandler creates a new TuningHandler. The apply callback pushes
// a profile's gains into the running engine; it may be nil.
func NewTuningHandler(s *store.Store, apply func(id string, tuning retarget.Tuning) error) *TuningHandler {
	return &TuningHandler{store: s, apply: apply}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *TuningHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/tuning, /api/tuning/{id}, /api/tuning/{id}/activate
	path := strings.TrimPrefix(r.URL.Path, "/api/tuning")
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

	if path == "defaults" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, retarget.DefaultTuning())
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodPut:
			h.update(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
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

type tuningProfileRequest struct {
	Name   string          `json:"name"`
	Tuning retarget.Tuning `json:"tuning"`
}

type tuningProfileResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Tuning    retarget.Tuning `json:"tuning"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

type listTuningResponse struct {
	Profiles []tuningProfileResponse `json:"profiles"`
}

// toTuningResponse converts a stored profile to its response form.
// Malformed stored data falls back to the defaults.
func toTuningResponse(p *store.TuningProfile) tuningProfileResponse {
	tuning := retarget.DefaultTuning()
	json.Unmarshal([]byte(p.Data), &tuning)

	return tuningProfileResponse{
		ID:        p.ID,
		Name:      p.Name,
		Tuning:    tuning,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// decodeProfile validates a profile request and encodes its tuning.
func decodeProfile(r *http.Request) (*tuningProfileRequest, string, error) {
	var req tuningProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, "", errors.New("invalid JSON body")
	}
	if req.Name == "" {
		return nil, "", errors.New("name is required")
	}

	data, err := json.Marshal(req.Tuning)
	if err != nil {
		return nil, "", err
	}
	return &req, string(data), nil
}

// list handles GET /api/tuning and returns all profiles.
func (h *TuningHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Tunings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	response := listTuningResponse{
		Profiles: make([]tuningProfileResponse, 0, len(profiles)),
	}
	for _, p := range profiles {
		response.Profiles = append(response.Profiles, toTuningResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/tuning.
func (h *TuningHandler) create(w http.ResponseWriter, r *http.Request) {
	req, data, err := decodeProfile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := &store.TuningProfile{
		ID:   uuid.NewString(),
		Name: req.Name,
		Data: data,
	}
	if err := h.store.Tunings().Create(p); err != nil {
		writeError(w, http.StatusConflict, "Failed to create profile")
		return
	}

	writeJSON(w, http.StatusCreated, toTuningResponse(p))
}

// get handles GET /api/tuning/{id}.
func (h *TuningHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Tunings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, toTuningResponse(p))
}

// update handles PUT /api/tuning/{id}.
func (h *TuningHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Tunings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	req, data, err := decodeProfile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p.Name = req.Name
	p.Data = data
	if err := h.store.Tunings().Update(p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, toTuningResponse(p))
}

// delete handles DELETE /api/tuning/{id}.
func (h *TuningHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Tunings().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// activate handles POST /api/tuning/{id}/activate.
func (h *TuningHandler) activate(w http.ResponseWriter, r *http.Request, id string) {
	if h.apply == nil {
		writeError(w, http.StatusServiceUnavailable, "Engine not running")
		return
	}

	p, err := h.store.Tunings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	tuning := retarget.DefaultTuning()
	if err := json.Unmarshal([]byte(p.Data), &tuning); err != nil {
		writeError(w, http.StatusInternalServerError, "Stored profile is malformed")
		return
	}

	if err := h.apply(id, tuning); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to apply profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"active": id})
}
