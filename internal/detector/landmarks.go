// Package detector provides body and hand landmark detection interfaces and types.
package detector

import "math"

// Body pose landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose             = 0
	LeftEyeInner     = 1
	LeftEye          = 2
	LeftEyeOuter     = 3
	RightEyeInner    = 4
	RightEye         = 5
	RightEyeOuter    = 6
	LeftEar          = 7
	RightEar         = 8
	MouthLeft        = 9
	MouthRight       = 10
	LeftShoulder     = 11
	RightShoulder    = 12
	LeftElbow        = 13
	RightElbow       = 14
	LeftWrist        = 15
	RightWrist       = 16
	LeftPinky        = 17
	RightPinky       = 18
	LeftIndex        = 19
	RightIndex       = 20
	LeftThumb        = 21
	RightThumb       = 22
	LeftHip          = 23
	RightHip         = 24
	LeftKnee         = 25
	RightKnee        = 26
	LeftAnkle        = 27
	RightAnkle       = 28
	LeftHeel         = 29
	RightHeel        = 30
	LeftFootIndex    = 31
	RightFootIndex   = 32
	NumPoseLandmarks = 33
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist            = 0
	ThumbCMC         = 1
	ThumbMCP         = 2
	ThumbIP          = 3
	ThumbTip         = 4
	IndexMCP         = 5
	IndexPIP         = 6
	IndexDIP         = 7
	IndexTip         = 8
	MiddleMCP        = 9
	MiddlePIP        = 10
	MiddleDIP        = 11
	MiddleTip        = 12
	RingMCP          = 13
	RingPIP          = 14
	RingDIP          = 15
	RingTip          = 16
	PinkyMCP         = 17
	PinkyPIP         = 18
	PinkyDIP         = 19
	PinkyTip         = 20
	NumHandLandmarks = 21
)

// DefaultMinVisibility is the visibility threshold below which a body
// landmark is treated as absent for the frame.
const DefaultMinVisibility = 0.5

// Point3D represents a 3D point in space with x, y, z coordinates.
// X and Y are normalized to [0,1] relative to frame width and height;
// Z is a relative depth, not metric.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmark is a detected keypoint with an optional visibility score in [0,1].
type Landmark struct {
	Point3D
	Visibility float64 `json:"visibility"`
}

// PoseLandmarks represents the 33 body landmarks detected by MediaPipe
// for a single frame.
type PoseLandmarks struct {
	Points [NumPoseLandmarks]Landmark `json:"points"`
	Score  float64                    `json:"score"`
}

// At returns the landmark at index i and whether it is usable this frame.
// A landmark is absent when its visibility falls below DefaultMinVisibility
// or its coordinates are not finite.
func (p *PoseLandmarks) At(i int) (Landmark, bool) {
	if p == nil || i < 0 || i >= NumPoseLandmarks {
		return Landmark{}, false
	}
	lm := p.Points[i]
	if lm.Visibility < DefaultMinVisibility {
		return Landmark{}, false
	}
	if math.IsNaN(lm.X) || math.IsNaN(lm.Y) || math.IsNaN(lm.Z) ||
		math.IsInf(lm.X, 0) || math.IsInf(lm.Y, 0) || math.IsInf(lm.Z, 0) {
		return Landmark{}, false
	}
	return lm, true
}

// Detection is the result of analyzing one video frame: at most one body
// pose and zero to two hands. A nil Pose means no body was detected.
type Detection struct {
	Pose  *PoseLandmarks  `json:"pose,omitempty"`
	Hands []HandLandmarks `json:"hands,omitempty"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumHandLandmarks]Point3D `json:"points"`
	Handedness string                    `json:"handedness"` // "Left" or "Right"
	Score      float64                   `json:"score"`
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Normalize normalizes the hand landmarks relative to wrist position and hand size.
// The normalized landmarks have the wrist at origin (0,0,0) and are scaled
// so that the distance from wrist to middle finger MCP is 1.0.
// Returns a new HandLandmarks instance with normalized points.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil {
		return nil
	}

	normalized := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	// Get wrist position as the origin
	wrist := h.Points[Wrist]

	// Translate all points relative to wrist
	for i := 0; i < NumHandLandmarks; i++ {
		normalized.Points[i] = Point3D{
			X: h.Points[i].X - wrist.X,
			Y: h.Points[i].Y - wrist.Y,
			Z: h.Points[i].Z - wrist.Z,
		}
	}

	// Calculate scale factor using distance from wrist to middle finger MCP
	middleMCP := normalized.Points[MiddleMCP]
	scale := distance3D(Point3D{0, 0, 0}, middleMCP)

	// Avoid division by zero
	if scale < 1e-10 {
		return normalized
	}

	// Scale all points
	for i := 0; i < NumHandLandmarks; i++ {
		normalized.Points[i].X /= scale
		normalized.Points[i].Y /= scale
		normalized.Points[i].Z /= scale
	}

	return normalized
}
