package retarget

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/ayusman/natya/internal/detector"
	"github.com/ayusman/natya/internal/rig"
)

// PoseTargets holds the target rotations produced from one body pose frame.
// Roles whose joints are unmapped or whose landmarks are missing this frame
// are simply absent from Rotations; the smoother decays them. Root is non-nil
// only when both shoulders were visible.
type PoseTargets struct {
	Rotations map[rig.Role]quat.Number
	Root      *r3.Vector
}

// PoseRetargeter converts body landmark frames into per-role target
// rotations. It holds no per-frame state; all persistence lives in the
// Smoother.
type PoseRetargeter struct {
	tuning Tuning
}

// NewPoseRetargeter creates a pose retargeter with the given tuning.
func NewPoseRetargeter(tuning Tuning) *PoseRetargeter {
	return &PoseRetargeter{tuning: tuning}
}

// Retarget computes target local rotations for every mapped body role whose
// landmarks are present in the frame. A nil pose yields empty targets.
func (p *PoseRetargeter) Retarget(pose *detector.PoseLandmarks, mapping rig.RoleMapping) PoseTargets {
	targets := PoseTargets{Rotations: make(map[rig.Role]quat.Number)}
	if pose == nil {
		return targets
	}

	p.retargetHead(pose, mapping, &targets)
	p.retargetTorso(pose, mapping, &targets)

	p.retargetArm(pose, mapping, &targets, rig.SideLeft)
	p.retargetArm(pose, mapping, &targets, rig.SideRight)

	p.retargetLegs(pose, mapping, &targets)
	p.retargetRoot(pose, &targets)

	return targets
}

// retargetHead derives yaw from the nose's horizontal offset from frame
// center and pitch from its vertical offset. Looking down increases pitch.
func (p *PoseRetargeter) retargetHead(pose *detector.PoseLandmarks, mapping rig.RoleMapping, targets *PoseTargets) {
	if _, ok := mapping.Joint(rig.RoleHead); !ok {
		return
	}
	nose, ok := pose.At(detector.Nose)
	if !ok {
		return
	}

	m := lateralSign(p.tuning.Mirrored)
	yaw := m * (nose.X - 0.5) * 2 * p.tuning.HeadYawGain
	pitch := (nose.Y - 0.5) * 2 * p.tuning.HeadPitchGain

	targets.Rotations[rig.RoleHead] = quat.Mul(yRot(yaw), xRot(pitch))
}

// retargetTorso derives roll from the height difference of the shoulders.
func (p *PoseRetargeter) retargetTorso(pose *detector.PoseLandmarks, mapping rig.RoleMapping, targets *PoseTargets) {
	if _, ok := mapping.Joint(rig.RoleSpine); !ok {
		return
	}
	ls, lok := pose.At(detector.LeftShoulder)
	rs, rok := pose.At(detector.RightShoulder)
	if !lok || !rok {
		return
	}

	roll := lateralSign(p.tuning.Mirrored) * (ls.Y - rs.Y) * p.tuning.TorsoRollGain
	targets.Rotations[rig.RoleSpine] = zRot(roll)
}

// retargetArm computes the upper-arm swing from the shoulder-to-elbow
// vector and the forearm bend from the angle between upper arm and forearm.
func (p *PoseRetargeter) retargetArm(pose *detector.PoseLandmarks, mapping rig.RoleMapping, targets *PoseTargets, side rig.Side) {
	shoulderIdx, elbowIdx, wristIdx := detector.LeftShoulder, detector.LeftElbow, detector.LeftWrist
	upperRole, foreRole := rig.RoleLeftUpperArm, rig.RoleLeftForearm
	if side == rig.SideRight {
		shoulderIdx, elbowIdx, wristIdx = detector.RightShoulder, detector.RightElbow, detector.RightWrist
		upperRole, foreRole = rig.RoleRightUpperArm, rig.RoleRightForearm
	}

	shoulder, sok := pose.At(shoulderIdx)
	elbow, eok := pose.At(elbowIdx)
	if !sok || !eok {
		return
	}

	sign := sideSign(side, p.tuning.Mirrored)

	// Upper arm: angle of the shoulder→elbow vector from straight down.
	// An arm hanging straight down is the zero reference.
	dx := elbow.X - shoulder.X
	dy := elbow.Y - shoulder.Y
	if dx*dx+dy*dy >= degenerateEps {
		if _, ok := mapping.Joint(upperRole); ok {
			swing := math.Atan2(sign*dx, dy)
			targets.Rotations[upperRole] = zRot(swing)
		}
	}

	// Forearm: bend angle between shoulder→elbow and elbow→wrist.
	wrist, wok := pose.At(wristIdx)
	if !wok {
		return
	}
	if _, ok := mapping.Joint(foreRole); !ok {
		return
	}

	upper := r3.Vector{X: elbow.X - shoulder.X, Y: elbow.Y - shoulder.Y, Z: elbow.Z - shoulder.Z}
	fore := r3.Vector{X: wrist.X - elbow.X, Y: wrist.Y - elbow.Y, Z: wrist.Z - elbow.Z}

	bend, ok := angleBetween(upper, fore)
	if !ok {
		return
	}
	bend = clamp(bend, 0, math.Pi)
	targets.Rotations[foreRole] = zRot(sign * bend)
}

// retargetLegs computes hip roll from the hip height difference and a per
// side stance angle from the hip-to-knee vector. Both are applied
// additively to the thigh; rigs that expose separate hip joints also get
// the roll on those.
func (p *PoseRetargeter) retargetLegs(pose *detector.PoseLandmarks, mapping rig.RoleMapping, targets *PoseTargets) {
	lh, lok := pose.At(detector.LeftHip)
	rh, rok := pose.At(detector.RightHip)

	hipRoll := 0.0
	if lok && rok {
		hipRoll = lateralSign(p.tuning.Mirrored) * (lh.Y - rh.Y) * p.tuning.HipRollGain

		if _, ok := mapping.Joint(rig.RoleLeftHip); ok {
			targets.Rotations[rig.RoleLeftHip] = zRot(hipRoll)
		}
		if _, ok := mapping.Joint(rig.RoleRightHip); ok {
			targets.Rotations[rig.RoleRightHip] = zRot(hipRoll)
		}
	}

	p.retargetThigh(pose, mapping, targets, rig.SideLeft, hipRoll, lok && rok)
	p.retargetThigh(pose, mapping, targets, rig.SideRight, hipRoll, lok && rok)
}

func (p *PoseRetargeter) retargetThigh(pose *detector.PoseLandmarks, mapping rig.RoleMapping, targets *PoseTargets, side rig.Side, hipRoll float64, haveRoll bool) {
	hipIdx, kneeIdx := detector.LeftHip, detector.LeftKnee
	role := rig.RoleLeftThigh
	if side == rig.SideRight {
		hipIdx, kneeIdx = detector.RightHip, detector.RightKnee
		role = rig.RoleRightThigh
	}
	if _, ok := mapping.Joint(role); !ok {
		return
	}

	hip, hok := pose.At(hipIdx)
	knee, kok := pose.At(kneeIdx)
	if !hok || !kok {
		return
	}

	dx := knee.X - hip.X
	dy := knee.Y - hip.Y
	if dx*dx+dy*dy < degenerateEps {
		return
	}

	sign := sideSign(side, p.tuning.Mirrored)
	stance := math.Atan2(sign*dx, dy) * p.tuning.StanceGain

	angle := stance
	if haveRoll {
		angle += hipRoll
	}
	targets.Rotations[role] = zRot(angle)
}

// retargetRoot remaps the shoulder midpoint into scene coordinates so a
// person centered in the video frame centers the rig in view.
func (p *PoseRetargeter) retargetRoot(pose *detector.PoseLandmarks, targets *PoseTargets) {
	ls, lok := pose.At(detector.LeftShoulder)
	rs, rok := pose.At(detector.RightShoulder)
	if !lok || !rok {
		return
	}

	midX := (ls.X + rs.X) / 2
	midY := (ls.Y + rs.Y) / 2
	midZ := (ls.Z + rs.Z) / 2

	m := lateralSign(p.tuning.Mirrored)
	root := r3.Vector{
		X: m*(midX-0.5)*p.tuning.RootScale.X + p.tuning.RootOffset.X,
		Y: (0.5-midY)*p.tuning.RootScale.Y + p.tuning.RootOffset.Y,
		Z: midZ*p.tuning.RootScale.Z + p.tuning.RootOffset.Z,
	}
	targets.Root = &root
}
