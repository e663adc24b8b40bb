package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestNewMotionDetector(t *testing.T) {
	for _, threshold := range []float64{0.5, 1.0, 5.0} {
		md := NewMotionDetector(threshold)
		if md == nil {
			t.Fatal("NewMotionDetector returned nil")
		}

		if md.threshold != threshold {
			t.Errorf("threshold = %f, want %f", md.threshold, threshold)
		}

		if md.initialized {
			t.Error("detector should not have a baseline before the first frame")
		}

		md.Close()
	}
}

func TestMotionDetector_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()

	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	// First frame becomes the baseline.
	detected, changePercent := md.Detect(&frame1)
	if detected {
		t.Error("baseline frame should not report motion")
	}
	if changePercent != 0 {
		t.Errorf("baseline changePercent = %f, want 0", changePercent)
	}

	detected, changePercent = md.Detect(&frame2)
	if detected {
		t.Errorf("identical frames should not report motion, changePercent = %f", changePercent)
	}
}

func TestMotionDetector_PerformerEntersFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	emptyStage := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer emptyStage.Close()

	occupied := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer occupied.Close()
	occupied.SetTo(gocv.NewScalar(255, 255, 255, 0))

	detected, _ := md.Detect(&emptyStage)
	if detected {
		t.Error("baseline frame should not report motion")
	}

	detected, changePercent := md.Detect(&occupied)
	if !detected {
		t.Errorf("fully changed frame should report motion, changePercent = %f", changePercent)
	}
	if changePercent < 50.0 {
		t.Errorf("changePercent = %f, expected > 50%% for a full-frame change", changePercent)
	}
}

func TestMotionDetector_ResolutionChangeRebaselines(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	// Small frames are analyzed as-is; a switch to 720p must not be
	// compared against the old baseline.
	small := gocv.NewMatWithSize(240, 300, gocv.MatTypeCV8UC3)
	defer small.Close()

	large := gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV8UC3)
	defer large.Close()
	large.SetTo(gocv.NewScalar(255, 255, 255, 0))

	md.Detect(&small)

	detected, changePercent := md.Detect(&large)
	if detected {
		t.Errorf("resolution change should re-baseline, got motion with changePercent = %f", changePercent)
	}

	// The frame after the new baseline is compared normally.
	detected, _ = md.Detect(&large)
	if detected {
		t.Error("identical frames after re-baseline should not report motion")
	}
}

func TestMotionDetector_DownscalesLargeFrames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame := gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV8UC3)
	defer frame.Close()

	md.Detect(&frame)

	if md.prevGray.Cols() != analysisWidth {
		t.Errorf("baseline width = %d, want %d after downscaling", md.prevGray.Cols(), analysisWidth)
	}
}

func TestMotionDetector_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	md.Detect(&frame)

	if !md.initialized {
		t.Error("detector should have a baseline after the first Detect")
	}

	md.Reset()

	if md.initialized {
		t.Error("detector should not have a baseline after Reset")
	}

	if !md.prevGray.Empty() {
		t.Error("prevGray should be empty after Reset")
	}
}

func TestMotionDetector_SetThreshold(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	md.SetThreshold(5.0)
	if md.threshold != 5.0 {
		t.Errorf("threshold = %f, want 5.0 after SetThreshold", md.threshold)
	}

	md.SetThreshold(0.5)
	if md.threshold != 0.5 {
		t.Errorf("threshold = %f, want 0.5 after SetThreshold", md.threshold)
	}

	// Non-positive values are ignored.
	md.SetThreshold(-1.0)
	if md.threshold != 0.5 {
		t.Errorf("negative threshold should be ignored, got %f", md.threshold)
	}
}

func TestMotionDetector_Close_Multiple(t *testing.T) {
	md := NewMotionDetector(1.0)

	md.Close()
	md.Close()
}

func TestMotionDetector_Detect_AfterClose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	md.Detect(&frame)
	md.Close()

	// Closed detectors can be reused; the next frame re-baselines.
	detected, _ := md.Detect(&frame)
	if detected {
		t.Error("first frame after Close should not report motion")
	}
}
