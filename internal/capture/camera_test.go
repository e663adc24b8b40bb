package capture

import (
	"errors"
	"testing"
)

func TestNewCamera_Defaults(t *testing.T) {
	for _, deviceID := range []int{0, 1, 2} {
		cam := NewCamera(deviceID)

		if cam == nil {
			t.Fatal("NewCamera returned nil")
		}

		if got := cam.FPS(); got != DefaultFPS {
			t.Errorf("device %d: FPS() = %d, want %d", deviceID, got, DefaultFPS)
		}

		if cam.IsOpen() {
			t.Errorf("device %d: camera should not be open before Open()", deviceID)
		}
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(0)

	tests := []struct {
		name    string
		fps     int
		wantFPS int
	}{
		{
			name:    "active rate",
			fps:     15,
			wantFPS: 15,
		},
		{
			name:    "high rate",
			fps:     30,
			wantFPS: 30,
		},
		{
			name:    "idle rate",
			fps:     1,
			wantFPS: 1,
		},
		{
			name:    "zero keeps previous",
			fps:     0,
			wantFPS: 1,
		},
		{
			name:    "negative keeps previous",
			fps:     -5,
			wantFPS: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.SetFPS(tt.fps)

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
		})
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewCamera(0)

	_, err := cam.ReadFrame()
	if !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(0)

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera should return nil, got: %v", err)
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(0)

	err := cam.Open()
	if err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat == nil {
			t.Error("ReadFrame() returned nil mat")
		} else if mat.Empty() {
			t.Error("ReadFrame() returned empty mat")
		} else {
			// Resolution is a request; drivers may downgrade it.
			if mat.Cols() != DefaultWidth || mat.Rows() != DefaultHeight {
				t.Logf("frame is %dx%d, requested %dx%d", mat.Cols(), mat.Rows(), DefaultWidth, DefaultHeight)
			}
			mat.Close()
		}
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}
