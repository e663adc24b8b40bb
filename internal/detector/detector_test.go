package detector

import (
	"errors"
	"math"
	"testing"
)

func TestNormalize_WristAtOrigin(t *testing.T) {
	hand := OpenPalmLandmarks()

	normalized := hand.Normalize()
	if normalized == nil {
		t.Fatal("Normalize() returned nil")
	}

	wrist := normalized.Points[Wrist]
	if wrist.X != 0 || wrist.Y != 0 || wrist.Z != 0 {
		t.Errorf("wrist = (%f, %f, %f), want origin", wrist.X, wrist.Y, wrist.Z)
	}
}

func TestNormalize_MiddleMCPScale(t *testing.T) {
	hand := OpenPalmLandmarks()

	normalized := hand.Normalize()

	// Distance from wrist (origin) to middle MCP should be 1.0
	mcp := normalized.Points[MiddleMCP]
	dist := math.Sqrt(mcp.X*mcp.X + mcp.Y*mcp.Y + mcp.Z*mcp.Z)

	if math.Abs(dist-1.0) > 1e-9 {
		t.Errorf("wrist to middle MCP distance = %f, want 1.0", dist)
	}
}

func TestNormalize_NilHand(t *testing.T) {
	var hand *HandLandmarks
	if got := hand.Normalize(); got != nil {
		t.Errorf("Normalize() on nil = %v, want nil", got)
	}
}

func TestNormalize_DegenerateHand(t *testing.T) {
	// All points at the same location: scale is zero, must not divide
	hand := HandLandmarks{Handedness: "Left", Score: 0.9}
	for i := range hand.Points {
		hand.Points[i] = Point3D{X: 0.5, Y: 0.5, Z: 0}
	}

	normalized := hand.Normalize()
	if normalized == nil {
		t.Fatal("Normalize() returned nil")
	}

	for i, p := range normalized.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
			t.Fatalf("point %d is NaN after normalizing degenerate hand", i)
		}
	}
}

func TestPoseAt_VisibilityThreshold(t *testing.T) {
	pose := StandingPoseLandmarks()

	if _, ok := pose.At(Nose); !ok {
		t.Error("visible nose reported absent")
	}

	pose.Points[Nose].Visibility = 0.1
	if _, ok := pose.At(Nose); ok {
		t.Error("low-visibility nose reported present")
	}
}

func TestPoseAt_NonFiniteCoordinates(t *testing.T) {
	pose := StandingPoseLandmarks()
	pose.Points[LeftWrist].X = math.NaN()

	if _, ok := pose.At(LeftWrist); ok {
		t.Error("NaN landmark reported present")
	}
}

func TestPoseAt_OutOfRange(t *testing.T) {
	pose := StandingPoseLandmarks()

	if _, ok := pose.At(-1); ok {
		t.Error("At(-1) reported present")
	}
	if _, ok := pose.At(NumPoseLandmarks); ok {
		t.Error("At(NumPoseLandmarks) reported present")
	}
}

func TestWithoutLandmarks(t *testing.T) {
	pose := StandingPoseLandmarks()
	missing := WithoutLandmarks(pose, RightWrist, RightElbow)

	if _, ok := missing.At(RightWrist); ok {
		t.Error("removed right wrist still present")
	}
	if _, ok := missing.At(RightElbow); ok {
		t.Error("removed right elbow still present")
	}

	// Original pose must be untouched
	if _, ok := pose.At(RightWrist); !ok {
		t.Error("WithoutLandmarks mutated the original pose")
	}
}

func TestMockDetector_Script(t *testing.T) {
	mock := NewMockDetector()

	first := &Detection{Pose: StandingPoseLandmarks()}
	second := &Detection{}
	mock.SetScript([]*Detection{first, second})

	det, err := mock.Detect(nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if det.Pose == nil {
		t.Error("first scripted frame missing pose")
	}

	// Second and every later call return the last entry
	for i := 0; i < 3; i++ {
		det, err = mock.Detect(nil)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if det.Pose != nil {
			t.Error("exhausted script returned non-final entry")
		}
	}
}

func TestMockDetector_Error(t *testing.T) {
	mock := NewMockDetector()
	wantErr := errors.New("camera unplugged")
	mock.SetError(wantErr)

	if _, err := mock.Detect(nil); !errors.Is(err, wantErr) {
		t.Errorf("Detect() error = %v, want %v", err, wantErr)
	}
}
