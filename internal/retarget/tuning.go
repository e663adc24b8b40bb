package retarget

import (
	"github.com/golang/geo/r3"

	"github.com/ayusman/natya/internal/rig"
)

// Tuning is the configuration surface of the retargeting engine. The gain
// values are empirically chosen defaults, not invariants; profiles stored
// by the user override them wholesale.
type Tuning struct {
	// LimbAlpha is the per-frame smoothing gain for arm, leg and finger
	// roles. Higher values track faster at the cost of jitter.
	LimbAlpha float64 `json:"limbAlpha"`

	// CoreAlpha is the smoothing gain for head, neck and torso roles,
	// lower than LimbAlpha for stability.
	CoreAlpha float64 `json:"coreAlpha"`

	// DecayAlpha is the gain used to relax a role toward its neutral pose
	// once detection has been missing past MissingThreshold frames.
	DecayAlpha float64 `json:"decayAlpha"`

	// MissingThreshold is the number of consecutive frames a role may go
	// without a fresh target before decay begins.
	MissingThreshold int `json:"missingThreshold"`

	// HeadYawGain and HeadPitchGain scale nose offset from frame center
	// into head rotation.
	HeadYawGain   float64 `json:"headYawGain"`
	HeadPitchGain float64 `json:"headPitchGain"`

	// TorsoRollGain scales the shoulder height difference into torso roll.
	TorsoRollGain float64 `json:"torsoRollGain"`

	// HipRollGain scales the hip height difference into hip roll.
	HipRollGain float64 `json:"hipRollGain"`

	// StanceGain scales the hip-to-knee lateral angle into leg stance.
	StanceGain float64 `json:"stanceGain"`

	// FingerCurlMax is the bend in radians of a fully curled finger.
	FingerCurlMax float64 `json:"fingerCurlMax"`

	// RootScale and RootOffset map the shoulder-midpoint landmark into
	// scene coordinates for root placement. Scale depends on the
	// renderer's aspect ratio and is expected to be adjusted per scene.
	RootScale  r3.Vector `json:"rootScale"`
	RootOffset r3.Vector `json:"rootOffset"`

	// Mirrored declares whether the incoming video is horizontally
	// mirrored (the usual webcam selfie view). It flips the lateral sign
	// convention uniformly across all limb computations.
	Mirrored bool `json:"mirrored"`
}

// DefaultTuning returns the default engine configuration.
func DefaultTuning() Tuning {
	return Tuning{
		LimbAlpha:        0.25,
		CoreAlpha:        0.12,
		DecayAlpha:       0.05,
		MissingThreshold: 10,
		HeadYawGain:      0.4,
		HeadPitchGain:    0.35,
		TorsoRollGain:    2.5,
		HipRollGain:      1.8,
		StanceGain:       1.0,
		FingerCurlMax:    1.4,
		RootScale:        r3.Vector{X: 2.0, Y: 1.5, Z: 1.0},
		RootOffset:       r3.Vector{},
		Mirrored:         true,
	}
}

// alphaFor returns the smoothing gain for a role's category.
func (t Tuning) alphaFor(role rig.Role) float64 {
	switch role {
	case rig.RoleHead, rig.RoleNeck, rig.RoleSpine:
		return t.CoreAlpha
	default:
		return t.LimbAlpha
	}
}
