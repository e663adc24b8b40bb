// Package app provides the main application logic for the pose retargeting
// engine: it owns the capture pipeline, the retargeting session, and frame
// delivery to sinks.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/ayusman/natya/internal/capture"
	"github.com/ayusman/natya/internal/detector"
	"github.com/ayusman/natya/internal/retarget"
	"github.com/ayusman/natya/internal/rig"
	"github.com/ayusman/natya/internal/sink"
	"github.com/ayusman/natya/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active tracking.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
	// CalibrationFrames is the capture window for neutral pose calibration.
	CalibrationFrames = 30
)

// Settings keys used in the store.
const (
	SettingActiveRig    = "active_rig"
	SettingActiveTuning = "active_tuning"
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	SinkDir      string
	CameraID     int
	MotionThresh float64
	Tuning       retarget.Tuning
}

// App orchestrates capture, detection, retargeting, and frame delivery.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	session    *retarget.Session
	sinkMgr    *sink.Manager
	sinks      *sink.Registry
	rigName    string
	calibrator *retarget.Calibrator
	enabled    bool
	seq        uint64
	mu         sync.RWMutex
	stopCh     chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	tuning := config.Tuning
	if tuning == (retarget.Tuning{}) {
		tuning = retarget.DefaultTuning()
	}

	a := &App{
		config:  config,
		camera:  capture.NewCamera(config.CameraID),
		motion:  capture.NewMotionDetector(motionThreshold),
		session: retarget.NewSession(tuning),
		sinkMgr: sink.NewManager(config.SinkDir),
		sinks:   sink.NewRegistry(),
		enabled: false,
		stopCh:  nil,
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe body and hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables tracking.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the landmark detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the landmark detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Session returns the retargeting session.
func (a *App) Session() *retarget.Session {
	return a.session
}

// Sinks returns the frame delivery registry.
func (a *App) Sinks() *sink.Registry {
	return a.sinks
}

// SinkManager returns the external sink manager.
func (a *App) SinkManager() *sink.Manager {
	return a.sinkMgr
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// RigName returns the name of the active rig, or an empty string.
func (a *App) RigName() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rigName
}

// DiscoverSinks scans the sink directory and launches every discovered
// sink as a child process. Sinks that fail to start are logged and
// skipped.
func (a *App) DiscoverSinks() error {
	if err := a.sinkMgr.Discover(); err != nil {
		return err
	}

	for _, d := range a.sinkMgr.List() {
		p, err := sink.StartProcess(d)
		if err != nil {
			log.Printf("Failed to start sink %s: %v", d.Manifest.Name, err)
			continue
		}
		a.sinks.Add(p)
		log.Printf("Started sink %s %s", d.Manifest.Name, d.Manifest.Version)
	}

	return nil
}

// LoadRig activates a stored rig: the rig data is parsed, roles are
// resolved with the stored overrides applied, and the rig is recorded as
// active.
func (a *App) LoadRig(rigID string) error {
	if a.config.Store == nil {
		return errors.New("no store configured")
	}

	stored, err := a.config.Store.Rigs().GetByID(rigID)
	if err != nil {
		return fmt.Errorf("failed to load rig %s: %w", rigID, err)
	}

	r, err := buildRig(stored)
	if err != nil {
		return err
	}

	rawOverrides, err := a.config.Store.Rigs().GetOverrides(rigID)
	if err != nil {
		return fmt.Errorf("failed to load overrides for %s: %w", rigID, err)
	}

	overrides := make(map[rig.Role]string, len(rawOverrides))
	for roleName, joint := range rawOverrides {
		role, ok := rig.ParseRole(roleName)
		if !ok {
			log.Printf("Skipping override for unknown role %q", roleName)
			continue
		}
		overrides[role] = joint
	}

	if err := a.session.LoadRig(r, overrides); err != nil {
		return err
	}

	a.mu.Lock()
	a.rigName = stored.Name
	a.mu.Unlock()

	if err := a.config.Store.SetSetting(SettingActiveRig, rigID); err != nil {
		log.Printf("Failed to persist active rig: %v", err)
	}

	return nil
}

// LoadBuiltinRig activates the generated humanoid rig without touching
// the store. Used as the startup fallback.
func (a *App) LoadBuiltinRig() error {
	r := rig.NewHumanoid()
	if err := a.session.LoadRig(r, nil); err != nil {
		return err
	}

	a.mu.Lock()
	a.rigName = r.Name
	a.mu.Unlock()
	return nil
}

// buildRig materializes a stored rig row into a joint tree.
func buildRig(stored *store.Rig) (*rig.Rig, error) {
	switch stored.Format {
	case store.RigFormatBVH:
		r, err := rig.ParseBVH(stored.Name, strings.NewReader(stored.Data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse rig %s: %w", stored.Name, err)
		}
		return r, nil
	case store.RigFormatBuiltin:
		if stored.Data != "humanoid" {
			return nil, fmt.Errorf("unknown builtin rig %q", stored.Data)
		}
		r := rig.NewHumanoid()
		r.Name = stored.Name
		return r, nil
	default:
		return nil, fmt.Errorf("unknown rig format %q", stored.Format)
	}
}

// LoadStoredState restores the active rig and tuning profile recorded in
// the store. Missing or stale references fall back to the builtin rig and
// default tuning.
func (a *App) LoadStoredState() error {
	if a.config.Store == nil {
		return a.LoadBuiltinRig()
	}

	rigID, err := a.config.Store.GetSetting(SettingActiveRig)
	if err == nil {
		if err := a.LoadRig(rigID); err != nil {
			log.Printf("Stored rig %s unavailable (%v), using builtin", rigID, err)
			if err := a.LoadBuiltinRig(); err != nil {
				return err
			}
		}
	} else if errors.Is(err, store.ErrNotFound) {
		if err := a.LoadBuiltinRig(); err != nil {
			return err
		}
	} else {
		return err
	}

	profileID, err := a.config.Store.GetSetting(SettingActiveTuning)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	profile, err := a.config.Store.Tunings().GetByID(profileID)
	if err != nil {
		log.Printf("Stored tuning profile %s unavailable: %v", profileID, err)
		return nil
	}

	tuning := retarget.DefaultTuning()
	if err := json.Unmarshal([]byte(profile.Data), &tuning); err != nil {
		log.Printf("Tuning profile %s is malformed: %v", profile.Name, err)
		return nil
	}
	a.session.SetTuning(tuning)
	log.Printf("Applied tuning profile %s", profile.Name)

	return nil
}

// StartCalibration begins a neutral pose capture window. The subject
// stands relaxed; once enough tracked frames accumulate the averaged pose
// becomes the decay target.
func (a *App) StartCalibration() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calibrator = retarget.NewCalibrator(CalibrationFrames)
	log.Printf("Calibration started: %d frames", CalibrationFrames)
}

// Calibrating reports whether a calibration window is in progress.
func (a *App) Calibrating() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.calibrator != nil
}

// Start begins the retargeting pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline()

	log.Println("Retargeting pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.sinks.Close()

	log.Println("Retargeting pipeline stopped")
}
