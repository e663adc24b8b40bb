package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results, optionally as a
// scripted sequence of per-frame detections.
type MockDetector struct {
	detection *Detection
	script    []*Detection
	cursor    int
	err       error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetDetection sets the detection that will be returned by every Detect call.
func (m *MockDetector) SetDetection(det *Detection) {
	m.detection = det
	m.script = nil
	m.cursor = 0
}

// SetScript sets a sequence of detections returned by successive Detect
// calls. After the script is exhausted, the last entry repeats.
func (m *MockDetector) SetScript(script []*Detection) {
	m.script = script
	m.cursor = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured detection or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*Detection, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) > 0 {
		det := m.script[m.cursor]
		if m.cursor < len(m.script)-1 {
			m.cursor++
		}
		return det, nil
	}
	if m.detection != nil {
		return m.detection, nil
	}
	return &Detection{}, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// StandingPoseLandmarks returns a preset PoseLandmarks for a person standing
// upright, centered in frame, arms hanging straight down.
func StandingPoseLandmarks() *PoseLandmarks {
	pose := &PoseLandmarks{Score: 0.95}

	set := func(i int, x, y, z float64) {
		pose.Points[i] = Landmark{Point3D: Point3D{X: x, Y: y, Z: z}, Visibility: 0.95}
	}

	// Head
	set(Nose, 0.5, 0.2, 0)
	set(LeftEye, 0.52, 0.18, 0)
	set(RightEye, 0.48, 0.18, 0)
	set(LeftEar, 0.54, 0.19, 0)
	set(RightEar, 0.46, 0.19, 0)

	// Torso
	set(LeftShoulder, 0.6, 0.4, 0)
	set(RightShoulder, 0.4, 0.4, 0)
	set(LeftHip, 0.56, 0.62, 0)
	set(RightHip, 0.44, 0.62, 0)

	// Arms hanging straight down
	set(LeftElbow, 0.6, 0.52, 0)
	set(RightElbow, 0.4, 0.52, 0)
	set(LeftWrist, 0.6, 0.64, 0)
	set(RightWrist, 0.4, 0.64, 0)

	// Legs straight down
	set(LeftKnee, 0.56, 0.78, 0)
	set(RightKnee, 0.44, 0.78, 0)
	set(LeftAnkle, 0.56, 0.93, 0)
	set(RightAnkle, 0.44, 0.93, 0)

	return pose
}

// RaisedArmPoseLandmarks returns a standing pose with the left arm raised
// out to the side at shoulder height, elbow bent 90 degrees.
func RaisedArmPoseLandmarks() *PoseLandmarks {
	pose := StandingPoseLandmarks()

	set := func(i int, x, y, z float64) {
		pose.Points[i] = Landmark{Point3D: Point3D{X: x, Y: y, Z: z}, Visibility: 0.95}
	}

	set(LeftElbow, 0.72, 0.4, 0)
	set(LeftWrist, 0.72, 0.28, 0)

	return pose
}

// WithoutLandmarks returns a copy of the pose with the given landmark
// indices marked absent (visibility zero).
func WithoutLandmarks(pose *PoseLandmarks, indices ...int) *PoseLandmarks {
	if pose == nil {
		return nil
	}
	out := *pose
	for _, i := range indices {
		if i >= 0 && i < NumPoseLandmarks {
			out.Points[i].Visibility = 0
		}
	}
	return &out
}

// OpenPalmLandmarks returns a preset HandLandmarks with all fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	// Wrist at base
	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	// Index finger extended upward
	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	// Middle finger extended upward (slightly longer)
	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	// Ring finger extended upward
	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	// Pinky finger extended upward
	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}

// FistLandmarks returns a preset HandLandmarks with all fingers curled
// toward the palm.
func FistLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	// Wrist at origin
	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb folded across the palm
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.56, Y: 0.72, Z: -0.02}
	landmarks.Points[ThumbIP] = Point3D{X: 0.53, Y: 0.71, Z: -0.04}
	landmarks.Points[ThumbTip] = Point3D{X: 0.50, Y: 0.71, Z: -0.04}

	// Index finger curled (knuckles close together, tip near palm)
	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	landmarks.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	landmarks.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	landmarks.Points[IndexTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	// Middle finger curled
	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	landmarks.Points[MiddleTip] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	// Ring finger curled
	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	landmarks.Points[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	landmarks.Points[RingTip] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	// Pinky finger curled
	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	landmarks.Points[PinkyTip] = Point3D{X: 0.35, Y: 0.74, Z: -0.02}

	return landmarks
}
