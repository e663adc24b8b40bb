package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion analysis constants.
const (
	// GaussianBlurSize is the blur kernel size used to suppress sensor noise.
	GaussianBlurSize = 21
	// DiffThreshold is the per-pixel intensity delta that counts as change.
	DiffThreshold = 25
	// analysisWidth is the width frames are downscaled to before
	// differencing, so the cost stays flat regardless of capture resolution.
	analysisWidth = 320
)

// MotionDetector wakes the tracking pipeline from idle. It compares
// consecutive frames by grayscale differencing and reports the fraction
// of pixels that changed; the pipeline switches to the active frame
// rate when that fraction exceeds the threshold.
type MotionDetector struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionDetector creates a MotionDetector. The threshold is the
// percentage of pixels that must change between frames, e.g. 1.0 means
// a performer shifting across 1% of the image triggers tracking.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect compares a frame against the previous one and returns whether
// motion exceeded the threshold, along with the changed-pixel
// percentage. The first frame after construction, Reset, or a capture
// resolution change becomes the new baseline and never reports motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	// Downscale so 720p capture costs the same to analyze as VGA.
	if gray.Cols() > analysisWidth {
		h := gray.Rows() * analysisWidth / gray.Cols()
		small := gocv.NewMat()
		gocv.Resize(gray, &small, image.Point{X: analysisWidth, Y: h}, 0, 0, gocv.InterpolationLinear)
		gray.Close()
		gray = small
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	// Re-baseline on the first frame and whenever the frame size changes,
	// since AbsDiff requires matching dimensions.
	if !m.initialized || blurred.Rows() != m.prevGray.Rows() || blurred.Cols() != m.prevGray.Cols() {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	nonZero := gocv.CountNonZero(thresh)
	totalPixels := thresh.Rows() * thresh.Cols()
	changePercent := float64(nonZero) / float64(totalPixels) * 100.0

	blurred.CopyTo(&m.prevGray)

	return changePercent > m.threshold, changePercent
}

// Reset discards the baseline so the next frame starts fresh.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// Close releases the baseline Mat. The detector may be reused after
// Close; the next Detect re-initializes it.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// SetThreshold changes the changed-pixel percentage required to report
// motion. Values <= 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.threshold = threshold
}
