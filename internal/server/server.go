// Package server provides the HTTP server for the pose retargeting engine.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/ayusman/natya/internal/app"
	"github.com/ayusman/natya/internal/retarget"
	"github.com/ayusman/natya/internal/server/api"
	"github.com/ayusman/natya/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
}

// Server represents the HTTP control surface of the engine.
type Server struct {
	config Config
	mux    *http.ServeMux
	pose   *PoseHandler
	start  time.Time
}

// New creates a new Server with the given configuration. When an App is
// configured, the server registers its websocket broadcaster as one of the
// app's frame sinks.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		pose:   NewPoseHandler(),
		start:  time.Now(),
	}
	s.setupRoutes()

	if config.App != nil {
		config.App.Sinks().Add(s.pose)
	}

	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		var activator api.RigActivator
		if s.config.App != nil {
			activator = s.config.App
		}
		rigHandler := api.NewRigHandler(s.config.Store, activator)
		s.mux.Handle("/api/rigs", rigHandler)
		s.mux.Handle("/api/rigs/", rigHandler)

		tuningHandler := api.NewTuningHandler(s.config.Store, s.applyTuning())
		s.mux.Handle("/api/tuning", tuningHandler)
		s.mux.Handle("/api/tuning/", tuningHandler)
	}

	if s.config.App != nil {
		s.mux.HandleFunc("/api/tracking", s.handleTracking)
		s.mux.HandleFunc("/api/calibrate", s.handleCalibrate)

		streamHandler := NewStreamHandler(s.config.App.Camera())
		s.mux.Handle("/api/stream", streamHandler)
	}

	s.mux.Handle("/ws/pose", s.pose)

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// applyTuning returns the callback that pushes an activated profile into
// the engine, or nil when no app is configured.
func (s *Server) applyTuning() func(string, retarget.Tuning) error {
	if s.config.App == nil {
		return nil
	}
	return func(id string, tuning retarget.Tuning) error {
		s.config.App.Session().SetTuning(tuning)
		if err := s.config.Store.SetSetting(app.SettingActiveTuning, id); err != nil {
			log.Printf("Failed to persist active tuning: %v", err)
		}
		return nil
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.App != nil {
		response["rig"] = s.config.App.RigName()
		response["tracking"] = s.config.App.IsEnabled()
		response["frames"] = s.config.App.Session().Frames()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleTracking handles GET and POST requests to /api/tracking.
func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}
		s.config.App.SetEnabled(req.Enabled)
		log.Printf("Tracking %v via API", req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"enabled": s.config.App.IsEnabled()})
}

// handleCalibrate handles GET and POST requests to /api/calibrate.
func (s *Server) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		s.config.App.StartCalibration()
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"calibrating": s.config.App.Calibrating()})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
