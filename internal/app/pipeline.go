package app

import (
	"errors"
	"log"
	"time"

	"github.com/ayusman/natya/internal/detector"
	"github.com/ayusman/natya/internal/retarget"
	"github.com/ayusman/natya/internal/sink"
)

// runPipeline is the main loop that processes frames from the camera.
// It manages the state transitions between idle and active modes based on
// motion detection.
//
// Pipeline logic:
//  1. Start in idle mode (idleFPS=5)
//  2. On motion detected, switch to active mode (activeFPS=15)
//  3. Run body and hand landmark detection
//  4. Retarget and smooth into the active rig
//  5. Publish the applied pose to every sink
//  6. After 2s no motion, switch back to idle mode; the smoother keeps
//     advancing so lost tracking decays toward the neutral pose
func (a *App) runPipeline() {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			// Skip processing if tracking is disabled
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Motion detection
			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				if !activeMode {
					activeMode = true
					a.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			// Step 2: Landmark detection only in active mode. Idle
			// frames still advance the smoother so the rig settles
			// toward neutral between takes.
			var det *detector.Detection
			if activeMode && a.Detector() != nil {
				det, err = a.Detector().Detect(frame)
				if err != nil {
					log.Printf("Error detecting landmarks: %v", err)
					det = nil
				}
			}
			frame.Close()

			a.step(det)
		}
	}
}

// step runs one retarget-and-publish pass for a detection (which may be
// nil). Split from the loop so tests can drive frames directly.
func (a *App) step(det *detector.Detection) {
	a.feedCalibration(det)

	pose, err := a.session.Advance(det)
	if err != nil {
		if !errors.Is(err, retarget.ErrNoRig) {
			log.Printf("Error advancing pose: %v", err)
		}
		return
	}

	a.mu.Lock()
	a.seq++
	seq := a.seq
	rigName := a.rigName
	a.mu.Unlock()

	a.sinks.Publish(sink.NewFrame(seq, rigName, pose, a.session.Mapping()))
}

// feedCalibration adds one frame of raw targets to an in-progress
// calibration window and installs the neutral pose when it completes.
func (a *App) feedCalibration(det *detector.Detection) {
	a.mu.Lock()
	cal := a.calibrator
	a.mu.Unlock()

	if cal == nil || det == nil || det.Pose == nil {
		return
	}

	targets, err := a.session.Targets(det)
	if err != nil {
		return
	}
	if !cal.Add(targets) {
		return
	}

	neutral, err := cal.Neutral()
	if err != nil {
		log.Printf("Calibration failed: %v", err)
	} else {
		a.session.SetNeutral(neutral)
		log.Printf("Calibration complete: %d roles", len(neutral))
	}

	a.mu.Lock()
	a.calibrator = nil
	a.mu.Unlock()
}
