package retarget

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/ayusman/natya/internal/rig"
)

// AppliedPose is the smoothed output of one frame pass: a defined, finite
// rotation for every tracked role, plus the root translation once one has
// been observed.
type AppliedPose struct {
	Rotations map[rig.Role]quat.Number
	Root      r3.Vector
	HasRoot   bool
	// Tracked reports whether this frame carried a fresh body detection.
	Tracked bool
}

// roleState is the per-role persistent smoothing record.
type roleState struct {
	applied quat.Number
	neutral quat.Number
	missing int
}

// Smoother applies first-order exponential interpolation toward per-frame
// targets and relaxes roles toward their neutral pose when detection is
// absent for a run of frames.
//
// The filter is frame-count based: alpha is constant per call regardless of
// wall-clock time between frames, so responsiveness varies with frame rate.
// This keeps decay thresholds and convergence behavior expressible in
// frames, which is how the rest of the engine reasons about time.
type Smoother struct {
	tuning Tuning
	roles  map[rig.Role]*roleState

	root        r3.Vector
	rootSeen    bool
	rootMissing int
}

// NewSmoother creates a smoother with no tracked roles. Call Reset with a
// role mapping before advancing frames.
func NewSmoother(tuning Tuning) *Smoother {
	return &Smoother{
		tuning: tuning,
		roles:  make(map[rig.Role]*roleState),
	}
}

// Reset reinitializes the smoother for a newly resolved rig. Every mapped
// role starts at the identity rotation with an identity neutral pose; all
// state from a previous rig is discarded.
func (s *Smoother) Reset(mapping rig.RoleMapping) {
	s.roles = make(map[rig.Role]*roleState)
	for _, role := range rig.Roles() {
		if _, ok := mapping.Joint(role); !ok {
			continue
		}
		s.roles[role] = &roleState{
			applied: identityQuat(),
			neutral: identityQuat(),
		}
	}
	s.root = r3.Vector{}
	s.rootSeen = false
	s.rootMissing = 0
}

// SetNeutral installs a neutral rest rotation for a role, replacing the
// identity default. Unknown roles are ignored.
func (s *Smoother) SetNeutral(role rig.Role, q quat.Number) {
	state, ok := s.roles[role]
	if !ok || !finiteQuat(q) {
		return
	}
	state.neutral = quatNormalize(q)
}

// TrackedRoles returns the roles the smoother maintains state for.
func (s *Smoother) TrackedRoles() []rig.Role {
	out := make([]rig.Role, 0, len(s.roles))
	for _, role := range rig.Roles() {
		if _, ok := s.roles[role]; ok {
			out = append(out, role)
		}
	}
	return out
}

// Advance performs one frame step. Roles with a fresh finite target move
// toward it by their category gain; roles without one count missing frames
// and, past the threshold, relax toward their neutral pose with the slower
// decay gain. The returned pose always contains a finite rotation for every
// tracked role.
func (s *Smoother) Advance(targets map[rig.Role]quat.Number, root *r3.Vector, tracked bool) AppliedPose {
	out := AppliedPose{
		Rotations: make(map[rig.Role]quat.Number, len(s.roles)),
		Tracked:   tracked,
	}

	for role, state := range s.roles {
		target, ok := targets[role]
		if ok && finiteQuat(target) {
			state.missing = 0
			state.applied = nlerp(state.applied, target, s.tuning.alphaFor(role))
		} else {
			state.missing++
			if state.missing > s.tuning.MissingThreshold {
				state.applied = nlerp(state.applied, state.neutral, s.tuning.DecayAlpha)
			}
		}
		out.Rotations[role] = state.applied
	}

	if root != nil {
		if s.rootSeen {
			s.root = lerpVec(s.root, *root, s.tuning.LimbAlpha)
		} else {
			s.root = *root
			s.rootSeen = true
		}
		s.rootMissing = 0
	} else if s.rootSeen {
		s.rootMissing++
		if s.rootMissing > s.tuning.MissingThreshold {
			s.root = lerpVec(s.root, r3.Vector{}, s.tuning.DecayAlpha)
		}
	}

	out.Root = s.root
	out.HasRoot = s.rootSeen

	return out
}

func lerpVec(a, b r3.Vector, t float64) r3.Vector {
	return r3.Vector{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}
