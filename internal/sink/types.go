// Package sink delivers applied pose frames to consumers: external sink
// processes discovered on disk and in-process subscribers such as the
// websocket broadcaster.
package sink

import (
	"time"

	"github.com/ayusman/natya/internal/retarget"
	"github.com/ayusman/natya/internal/rig"
)

// JointFrame is one joint's applied rotation on the wire. The quaternion
// uses w,x,y,z order.
type JointFrame struct {
	Role  string     `json:"role"`
	Joint string     `json:"joint"`
	Quat  [4]float64 `json:"quat"`
}

// Frame is one applied pose on the wire, serialized as a single JSON line.
type Frame struct {
	Seq       uint64       `json:"seq"`
	Timestamp int64        `json:"timestamp"`
	Rig       string       `json:"rig"`
	Tracked   bool         `json:"tracked"`
	Joints    []JointFrame `json:"joints"`
	Root      *[3]float64  `json:"root,omitempty"`
}

// Manifest describes an external sink's metadata, read from sink.json in
// the sink's directory.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Executable  string `json:"executable"`
}

// NewFrame flattens an applied pose into its wire form. Roles without a
// mapped joint are absent from the smoother output already; joints appear
// in role order so consumers see a stable layout.
func NewFrame(seq uint64, rigName string, pose retarget.AppliedPose, mapping rig.RoleMapping) *Frame {
	frame := &Frame{
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Rig:       rigName,
		Tracked:   pose.Tracked,
		Joints:    make([]JointFrame, 0, len(pose.Rotations)),
	}

	for _, role := range rig.Roles() {
		q, ok := pose.Rotations[role]
		if !ok {
			continue
		}
		joint, ok := mapping.Joint(role)
		if !ok {
			continue
		}
		frame.Joints = append(frame.Joints, JointFrame{
			Role:  role.String(),
			Joint: joint.Name,
			Quat:  [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		})
	}

	if pose.HasRoot {
		frame.Root = &[3]float64{pose.Root.X, pose.Root.Y, pose.Root.Z}
	}

	return frame
}
