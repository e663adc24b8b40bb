package retarget

import (
	"errors"
	"log"
	"sync"

	"gonum.org/v1/gonum/num/quat"

	"github.com/ayusman/natya/internal/detector"
	"github.com/ayusman/natya/internal/rig"
)

// ErrNoRig is returned by Advance before a rig has been loaded.
var ErrNoRig = errors.New("no rig loaded")

// Session owns the retargeting state for one active rig: the resolved role
// mapping and the smoothing state. Loading a new rig replaces both, so no
// stale joint references survive a swap. All methods are safe for use from
// a single frame-driving goroutine plus control calls from others.
type Session struct {
	mu       sync.Mutex
	tuning   Tuning
	rig      *rig.Rig
	mapping  rig.RoleMapping
	pose     *PoseRetargeter
	hands    *HandRetargeter
	smoother *Smoother
	frames   uint64
}

// NewSession creates a session with the given tuning and no rig.
func NewSession(tuning Tuning) *Session {
	return &Session{
		tuning:   tuning,
		pose:     NewPoseRetargeter(tuning),
		hands:    NewHandRetargeter(tuning),
		smoother: NewSmoother(tuning),
	}
}

// LoadRig resolves roles for the rig, applies any manual overrides, and
// resets the smoothing state. The previous rig's mapping and state are
// discarded. Structurally invalid rigs are rejected and leave the session
// unchanged.
func (s *Session) LoadRig(r *rig.Rig, overrides map[rig.Role]string) error {
	mapping, err := rig.Resolve(r)
	if err != nil {
		return err
	}
	if len(overrides) > 0 {
		mapping.ApplyOverrides(r, overrides)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rig = r
	s.mapping = mapping
	s.smoother.Reset(mapping)
	s.frames = 0

	log.Printf("rig %q loaded: %d joints, %d roles mapped", r.Name, r.JointCount(), mapping.MappedCount())
	return nil
}

// SetTuning replaces the engine tuning. Smoothing state carries over; only
// gains and thresholds change.
func (s *Session) SetTuning(tuning Tuning) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tuning = tuning
	s.pose = NewPoseRetargeter(tuning)
	s.hands = NewHandRetargeter(tuning)
	s.smoother.tuning = tuning
}

// Tuning returns the session's current tuning.
func (s *Session) Tuning() Tuning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tuning
}

// Rig returns the active rig, or nil.
func (s *Session) Rig() *rig.Rig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rig
}

// Mapping returns the active role mapping. The mapping is read-only by
// contract; callers must not modify it.
func (s *Session) Mapping() rig.RoleMapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapping
}

// Frames returns the number of frames advanced since the rig was loaded.
func (s *Session) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// SetNeutral installs calibrated neutral rotations, usually produced by a
// Calibrator, as the pose the rig relaxes to when detection is lost.
func (s *Session) SetNeutral(neutral map[rig.Role]quat.Number) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for role, q := range neutral {
		s.smoother.SetNeutral(role, q)
	}
}

// Advance runs one full retarget-and-smooth pass for a detection frame.
// A nil detection is treated as an empty frame: every role goes one frame
// without a target, driving decay. The returned pose is always fully
// defined for every mapped role.
func (s *Session) Advance(det *detector.Detection) (AppliedPose, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rig == nil {
		return AppliedPose{}, ErrNoRig
	}

	var poseTargets PoseTargets
	var handTargets map[rig.Role]quat.Number
	tracked := false

	if det != nil {
		poseTargets = s.pose.Retarget(det.Pose, s.mapping)
		handTargets = s.hands.Retarget(det.Hands, s.mapping)
		tracked = det.Pose != nil
	} else {
		poseTargets = PoseTargets{Rotations: make(map[rig.Role]quat.Number)}
	}

	for role, q := range handTargets {
		poseTargets.Rotations[role] = q
	}

	s.frames++
	return s.smoother.Advance(poseTargets.Rotations, poseTargets.Root, tracked), nil
}

// Targets runs the retargeting step alone, without smoothing or state
// mutation. Used by the calibrator to sample raw target rotations.
func (s *Session) Targets(det *detector.Detection) (map[rig.Role]quat.Number, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rig == nil {
		return nil, ErrNoRig
	}
	if det == nil {
		return map[rig.Role]quat.Number{}, nil
	}

	targets := s.pose.Retarget(det.Pose, s.mapping)
	for role, q := range s.hands.Retarget(det.Hands, s.mapping) {
		targets.Rotations[role] = q
	}
	return targets.Rotations, nil
}
