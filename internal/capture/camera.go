// Package capture acquires webcam frames for the pose tracking pipeline
// and decides, via motion detection, when the pipeline should run at full
// rate. It wraps GoCV (OpenCV) video capture.
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// Capture defaults. Full-body landmark detection needs the whole figure
// in frame, so we capture at 720p rather than the VGA default most
// webcams open with.
const (
	DefaultFPS    = 5
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// ErrCameraNotOpen is returned when reading from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Camera is the frame source for the tracking pipeline. The pipeline
// adjusts the rate with SetFPS when it switches between idle and active
// tracking.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// webcam is the GoCV-backed Camera used in production.
type webcam struct {
	deviceID int
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	running  bool
	fps      int
}

// NewCamera creates a Camera for the given device ID. The camera starts
// at the idle rate; the pipeline raises it when a performer is detected.
func NewCamera(deviceID int) Camera {
	return &webcam{
		deviceID: deviceID,
		fps:      DefaultFPS,
	}
}

// Open opens the device and requests the default resolution and the
// current frame rate. Opening an already open camera is a no-op.
func (c *webcam) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return err
	}

	// Drivers treat these as requests; the actual frame size may differ.
	capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = capture
	c.running = true

	return nil
}

// Close releases the device. Closing a camera that was never opened
// returns nil.
func (c *webcam) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame grabs one frame. The caller owns the returned Mat and must
// close it.
func (c *webcam) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

// SetFPS changes the capture rate. Values <= 0 are ignored.
func (c *webcam) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current capture rate setting.
func (c *webcam) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen reports whether the camera is open.
func (c *webcam) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
