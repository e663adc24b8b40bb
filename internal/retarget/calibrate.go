package retarget

import (
	"fmt"

	"gonum.org/v1/gonum/num/quat"

	"github.com/ayusman/natya/internal/rig"
)

// Calibrator averages raw target rotations over a run of frames into a
// neutral rest pose. The subject stands relaxed for the capture window;
// the result is installed into the session so decay relaxes toward the
// subject's actual rest stance instead of the identity pose.
type Calibrator struct {
	want  int
	taken int
	sums  map[rig.Role]quat.Number
}

// NewCalibrator creates a calibrator that captures the given number of
// frames. Fewer than one frame is clamped to one.
func NewCalibrator(frames int) *Calibrator {
	if frames < 1 {
		frames = 1
	}
	return &Calibrator{
		want: frames,
		sums: make(map[rig.Role]quat.Number),
	}
}

// Add accumulates one frame of target rotations. Returns true once enough
// frames have been captured.
func (c *Calibrator) Add(targets map[rig.Role]quat.Number) bool {
	if c.taken >= c.want {
		return true
	}

	for role, q := range targets {
		if !finiteQuat(q) {
			continue
		}
		sum, ok := c.sums[role]
		if ok && quatDot(sum, q) < 0 {
			// Keep accumulation on one hemisphere
			q = quat.Scale(-1, q)
		}
		c.sums[role] = quat.Add(sum, q)
	}

	c.taken++
	return c.taken >= c.want
}

// Done reports whether the capture window is complete.
func (c *Calibrator) Done() bool {
	return c.taken >= c.want
}

// Neutral returns the averaged neutral rotations. It fails if called
// before the capture window completed or if no frames carried targets.
func (c *Calibrator) Neutral() (map[rig.Role]quat.Number, error) {
	if !c.Done() {
		return nil, fmt.Errorf("calibration incomplete: %d of %d frames", c.taken, c.want)
	}
	if len(c.sums) == 0 {
		return nil, fmt.Errorf("calibration captured no targets")
	}

	neutral := make(map[rig.Role]quat.Number, len(c.sums))
	for role, sum := range c.sums {
		neutral[role] = quatNormalize(sum)
	}
	return neutral, nil
}
