package retarget

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/ayusman/natya/internal/rig"
)

func newTrackedSmoother(t *testing.T) *Smoother {
	t.Helper()
	mapping, err := rig.Resolve(rig.NewHumanoid())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	s := NewSmoother(DefaultTuning())
	s.Reset(mapping)
	return s
}

func TestSmoother_ConvergesToTarget(t *testing.T) {
	s := newTrackedSmoother(t)
	target := zRot(0.8)

	var applied quat.Number
	for i := 0; i < 60; i++ {
		out := s.Advance(map[rig.Role]quat.Number{rig.RoleLeftUpperArm: target}, nil, true)
		applied = out.Rotations[rig.RoleLeftUpperArm]
	}

	if diff := math.Abs(rotationAngle(applied) - 0.8); diff > 1e-3 {
		t.Errorf("applied angle after 60 frames = %f, want 0.8 (diff %f)", rotationAngle(applied), diff)
	}
}

func TestSmoother_StableOnRepeatedFrames(t *testing.T) {
	s := newTrackedSmoother(t)
	target := zRot(0.5)
	targets := map[rig.Role]quat.Number{rig.RoleLeftUpperArm: target}

	// Converge first
	var converged quat.Number
	for i := 0; i < 100; i++ {
		converged = s.Advance(targets, nil, true).Rotations[rig.RoleLeftUpperArm]
	}

	// Then the applied value must hold without oscillation
	for i := 0; i < 20; i++ {
		applied := s.Advance(targets, nil, true).Rotations[rig.RoleLeftUpperArm]
		if diff := math.Abs(rotationAngle(applied) - rotationAngle(converged)); diff > 1e-6 {
			t.Fatalf("frame %d drifted by %f after convergence", i, diff)
		}
	}
}

func TestSmoother_DecayAfterThreshold(t *testing.T) {
	s := newTrackedSmoother(t)
	threshold := DefaultTuning().MissingThreshold

	// Drive the role away from neutral
	targets := map[rig.Role]quat.Number{rig.RoleLeftUpperArm: zRot(0.6)}
	for i := 0; i < 80; i++ {
		s.Advance(targets, nil, true)
	}

	empty := map[rig.Role]quat.Number{}

	// Within the threshold the applied value must hold steady
	held := s.Advance(empty, nil, false).Rotations[rig.RoleLeftUpperArm]
	for i := 1; i < threshold; i++ {
		applied := s.Advance(empty, nil, false).Rotations[rig.RoleLeftUpperArm]
		if quatDot(applied, held) < 1-1e-9 {
			t.Fatalf("applied value moved during frame %d, before the decay threshold", i)
		}
	}

	// Past the threshold it must converge monotonically toward neutral
	prev := rotationAngle(held)
	for i := 0; i < 50; i++ {
		applied := s.Advance(empty, nil, false).Rotations[rig.RoleLeftUpperArm]
		angle := rotationAngle(applied)
		if angle > prev+1e-9 {
			t.Fatalf("decay step %d moved away from neutral: %f -> %f", i, prev, angle)
		}
		prev = angle
	}
	if prev > 0.1 {
		t.Errorf("angle after 50 decay frames = %f, want near 0", prev)
	}
}

func TestSmoother_MissingCounterResets(t *testing.T) {
	s := newTrackedSmoother(t)
	targets := map[rig.Role]quat.Number{rig.RoleLeftUpperArm: zRot(0.6)}
	empty := map[rig.Role]quat.Number{}

	for i := 0; i < 40; i++ {
		s.Advance(targets, nil, true)
	}

	// Miss a few frames, then a fresh target arrives
	for i := 0; i < 5; i++ {
		s.Advance(empty, nil, false)
	}
	s.Advance(targets, nil, true)

	// Counter restarted: the next few empty frames must hold again
	held := s.Advance(empty, nil, false).Rotations[rig.RoleLeftUpperArm]
	for i := 1; i < DefaultTuning().MissingThreshold; i++ {
		applied := s.Advance(empty, nil, false).Rotations[rig.RoleLeftUpperArm]
		if quatDot(applied, held) < 1-1e-9 {
			t.Fatalf("decay began at frame %d after the counter should have reset", i)
		}
	}
}

func TestSmoother_DecaysTowardCalibratedNeutral(t *testing.T) {
	s := newTrackedSmoother(t)
	neutral := zRot(0.3)
	s.SetNeutral(rig.RoleLeftUpperArm, neutral)

	empty := map[rig.Role]quat.Number{}
	var applied quat.Number
	for i := 0; i < 200; i++ {
		applied = s.Advance(empty, nil, false).Rotations[rig.RoleLeftUpperArm]
	}

	if diff := math.Abs(rotationAngle(applied) - 0.3); diff > 1e-2 {
		t.Errorf("decayed angle = %f, want neutral 0.3", rotationAngle(applied))
	}
}

func TestSmoother_OutputAlwaysDefined(t *testing.T) {
	s := newTrackedSmoother(t)
	roles := s.TrackedRoles()

	out := s.Advance(map[rig.Role]quat.Number{}, nil, false)
	if len(out.Rotations) != len(roles) {
		t.Fatalf("output has %d roles, want %d", len(out.Rotations), len(roles))
	}
	for role, q := range out.Rotations {
		if !finiteQuat(q) {
			t.Errorf("role %s has non-finite rotation %v", role, q)
		}
	}
}

func TestSmoother_NonFiniteTargetIgnored(t *testing.T) {
	s := newTrackedSmoother(t)

	bad := quat.Number{Real: math.NaN()}
	out := s.Advance(map[rig.Role]quat.Number{rig.RoleHead: bad}, nil, true)

	if q := out.Rotations[rig.RoleHead]; !finiteQuat(q) {
		t.Errorf("NaN target leaked into applied value %v", q)
	}
}

func TestSmoother_RootSmoothing(t *testing.T) {
	s := newTrackedSmoother(t)

	out := s.Advance(map[rig.Role]quat.Number{}, nil, false)
	if out.HasRoot {
		t.Error("HasRoot true before any root target")
	}

	root := r3.Vector{X: 0.4, Y: 0.2}
	out = s.Advance(map[rig.Role]quat.Number{}, &root, true)
	if !out.HasRoot {
		t.Fatal("HasRoot false after a root target")
	}
	// First observation snaps rather than interpolates from the origin
	if math.Abs(out.Root.X-0.4) > 1e-9 {
		t.Errorf("first root X = %f, want 0.4", out.Root.X)
	}

	moved := r3.Vector{X: 0.8, Y: 0.2}
	out = s.Advance(map[rig.Role]quat.Number{}, &moved, true)
	if out.Root.X <= 0.4 || out.Root.X >= 0.8 {
		t.Errorf("smoothed root X = %f, want between 0.4 and 0.8", out.Root.X)
	}
}
