package app

import (
	"path/filepath"
	"testing"

	"github.com/ayusman/natya/internal/detector"
	"github.com/ayusman/natya/internal/rig"
	"github.com/ayusman/natya/internal/sink"
	"github.com/ayusman/natya/internal/store"
)

// collectSink records published frames for pipeline assertions.
type collectSink struct {
	frames []*sink.Frame
}

func (s *collectSink) Name() string { return "collect" }
func (s *collectSink) Send(frame *sink.Frame) error {
	s.frames = append(s.frames, frame)
	return nil
}
func (s *collectSink) Close() error { return nil }

func newTestApp(t *testing.T, s *store.Store) *App {
	t.Helper()

	a := New(Config{
		Store:        s,
		SinkDir:      t.TempDir(),
		CameraID:     0,
		MotionThresh: 0.05,
	})
	a.SetDetector(detector.NewMockDetector())
	return a
}

func TestApp_StepPublishesFrames(t *testing.T) {
	a := newTestApp(t, nil)
	if err := a.LoadBuiltinRig(); err != nil {
		t.Fatalf("LoadBuiltinRig() error = %v", err)
	}

	collect := &collectSink{}
	a.Sinks().Add(collect)

	det := &detector.Detection{Pose: detector.StandingPoseLandmarks()}
	a.step(det)
	a.step(det)

	if len(collect.frames) != 2 {
		t.Fatalf("published %d frames, want 2", len(collect.frames))
	}
	first := collect.frames[0]
	if first.Seq != 1 || collect.frames[1].Seq != 2 {
		t.Errorf("frame seqs = %d, %d; want 1, 2", first.Seq, collect.frames[1].Seq)
	}
	if first.Rig != "humanoid" {
		t.Errorf("frame rig = %q, want humanoid", first.Rig)
	}
	if !first.Tracked {
		t.Error("frame not marked tracked for a body detection")
	}
	if len(first.Joints) == 0 {
		t.Error("frame carries no joints")
	}
}

func TestApp_StepWithoutRigPublishesNothing(t *testing.T) {
	a := newTestApp(t, nil)

	collect := &collectSink{}
	a.Sinks().Add(collect)

	a.step(&detector.Detection{Pose: detector.StandingPoseLandmarks()})

	if len(collect.frames) != 0 {
		t.Errorf("published %d frames with no rig loaded, want 0", len(collect.frames))
	}
}

func TestApp_NilDetectionStillPublishes(t *testing.T) {
	a := newTestApp(t, nil)
	if err := a.LoadBuiltinRig(); err != nil {
		t.Fatalf("LoadBuiltinRig() error = %v", err)
	}

	collect := &collectSink{}
	a.Sinks().Add(collect)

	a.step(nil)

	if len(collect.frames) != 1 {
		t.Fatalf("published %d frames for a nil detection, want 1", len(collect.frames))
	}
	if collect.frames[0].Tracked {
		t.Error("nil detection frame marked tracked")
	}
}

func TestApp_LoadRigFromStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	bvh := `HIERARCHY
ROOT Hips
{
	OFFSET 0 0 0
	CHANNELS 6 Xposition Yposition Zposition Zrotation Xrotation Yrotation
	JOINT Head
	{
		OFFSET 0 1.6 0
		CHANNELS 3 Zrotation Xrotation Yrotation
		End Site
		{
			OFFSET 0 0.2 0
		}
	}
}
MOTION
Frames: 0
`
	if err := s.Rigs().Create(&store.Rig{
		ID:     "rig-1",
		Name:   "minimal",
		Format: store.RigFormatBVH,
		Data:   bvh,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Rigs().SetOverrides("rig-1", map[string]string{"neck": "Head"}); err != nil {
		t.Fatalf("SetOverrides() error = %v", err)
	}

	a := newTestApp(t, s)
	if err := a.LoadRig("rig-1"); err != nil {
		t.Fatalf("LoadRig() error = %v", err)
	}

	if a.RigName() != "minimal" {
		t.Errorf("RigName() = %q, want minimal", a.RigName())
	}
	if a.Session().Rig() == nil {
		t.Fatal("session has no rig after LoadRig")
	}

	// The override mapped the neck role onto the head joint
	mapping := a.Session().Mapping()
	j, ok := mapping.Joint(rig.RoleNeck)
	if !ok || j.Name != "Head" {
		t.Errorf("neck override not applied, got %v", j)
	}

	// The active rig was persisted
	active, err := s.GetSetting(SettingActiveRig)
	if err != nil || active != "rig-1" {
		t.Errorf("active rig setting = %q, %v", active, err)
	}
}

func TestApp_LoadStoredStateFallsBack(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	// Points at a rig that no longer exists
	if err := s.SetSetting(SettingActiveRig, "gone"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}

	a := newTestApp(t, s)
	if err := a.LoadStoredState(); err != nil {
		t.Fatalf("LoadStoredState() error = %v", err)
	}

	if a.RigName() != "humanoid" {
		t.Errorf("RigName() = %q, want the builtin fallback", a.RigName())
	}
}

func TestApp_CalibrationCompletes(t *testing.T) {
	a := newTestApp(t, nil)
	if err := a.LoadBuiltinRig(); err != nil {
		t.Fatalf("LoadBuiltinRig() error = %v", err)
	}

	a.StartCalibration()
	if !a.Calibrating() {
		t.Fatal("Calibrating() = false after StartCalibration")
	}

	det := &detector.Detection{Pose: detector.StandingPoseLandmarks()}
	for i := 0; i < CalibrationFrames; i++ {
		a.step(det)
	}

	if a.Calibrating() {
		t.Error("Calibrating() = true after enough frames")
	}
}

func TestApp_EnableToggle(t *testing.T) {
	a := newTestApp(t, nil)

	if a.IsEnabled() {
		t.Error("tracking enabled by default")
	}
	a.SetEnabled(true)
	if !a.IsEnabled() {
		t.Error("SetEnabled(true) had no effect")
	}
}
