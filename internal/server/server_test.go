package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/natya/internal/app"
	"github.com/ayusman/natya/internal/detector"
	"github.com/ayusman/natya/internal/sink"
	"github.com/ayusman/natya/internal/store"
)

func newTestServer(t *testing.T) (*Server, *app.App, *store.Store) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	a := app.New(app.Config{
		Store:   s,
		SinkDir: t.TempDir(),
	})
	a.SetDetector(detector.NewMockDetector())
	if err := a.LoadBuiltinRig(); err != nil {
		t.Fatalf("LoadBuiltinRig() error = %v", err)
	}

	return New(Config{Store: s, App: a}), a, s
}

func TestServer_Health(t *testing.T) {
	srv, _, _ := newTestServer(t)

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}
		if response["rig"] != "humanoid" {
			t.Errorf("expected rig 'humanoid', got %v", response["rig"])
		}
		if response["tracking"] != false {
			t.Errorf("expected tracking false, got %v", response["tracking"])
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}

func TestServer_Tracking(t *testing.T) {
	srv, a, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/tracking", strings.NewReader(`{"enabled":true}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !a.IsEnabled() {
		t.Error("tracking not enabled via API")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/tracking", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var response map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response["enabled"] {
		t.Error("GET /api/tracking did not report enabled")
	}
}

func TestServer_Calibrate(t *testing.T) {
	srv, a, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/calibrate", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !a.Calibrating() {
		t.Error("calibration not started via API")
	}

	var response map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response["calibrating"] {
		t.Error("response did not report calibrating")
	}
}

func TestServer_RegistersWebsocketSink(t *testing.T) {
	_, a, _ := newTestServer(t)

	for _, name := range a.Sinks().Names() {
		if name == "websocket" {
			return
		}
	}
	t.Error("websocket sink not registered with the app")
}

func TestPoseHandler_SendWithoutClients(t *testing.T) {
	h := NewPoseHandler()
	if err := h.Send(&sink.Frame{Seq: 1}); err != nil {
		t.Errorf("Send() with no clients failed: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
}

func TestServer_NotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
