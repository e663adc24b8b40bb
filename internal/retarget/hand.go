package retarget

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/ayusman/natya/internal/detector"
	"github.com/ayusman/natya/internal/rig"
)

// fingerPoints maps each finger role to its MCP and tip landmark indices.
var fingerPoints = map[rig.Role][2]int{
	rig.RoleLeftThumb:   {detector.ThumbMCP, detector.ThumbTip},
	rig.RoleRightThumb:  {detector.ThumbMCP, detector.ThumbTip},
	rig.RoleLeftIndex:   {detector.IndexMCP, detector.IndexTip},
	rig.RoleRightIndex:  {detector.IndexMCP, detector.IndexTip},
	rig.RoleLeftMiddle:  {detector.MiddleMCP, detector.MiddleTip},
	rig.RoleRightMiddle: {detector.MiddleMCP, detector.MiddleTip},
	rig.RoleLeftRing:    {detector.RingMCP, detector.RingTip},
	rig.RoleRightRing:   {detector.RingMCP, detector.RingTip},
	rig.RoleLeftPinky:   {detector.PinkyMCP, detector.PinkyTip},
	rig.RoleRightPinky:  {detector.PinkyMCP, detector.PinkyTip},
}

// fingerRolesBySide lists the finger roles of each body side.
var fingerRolesBySide = map[rig.Side][]rig.Role{
	rig.SideLeft:  {rig.RoleLeftThumb, rig.RoleLeftIndex, rig.RoleLeftMiddle, rig.RoleLeftRing, rig.RoleLeftPinky},
	rig.SideRight: {rig.RoleRightThumb, rig.RoleRightIndex, rig.RoleRightMiddle, rig.RoleRightRing, rig.RoleRightPinky},
}

// HandRetargeter converts hand landmark frames into wrist-plane and finger
// curl target rotations. If the rig maps no hand or finger joints this
// degrades to a no-op.
type HandRetargeter struct {
	tuning Tuning
}

// NewHandRetargeter creates a hand retargeter with the given tuning.
func NewHandRetargeter(tuning Tuning) *HandRetargeter {
	return &HandRetargeter{tuning: tuning}
}

// Retarget computes targets for every detected hand whose side has mapped
// joints. Hands with an unknown handedness label are ignored.
func (h *HandRetargeter) Retarget(hands []detector.HandLandmarks, mapping rig.RoleMapping) map[rig.Role]quat.Number {
	targets := make(map[rig.Role]quat.Number)

	for i := range hands {
		hand := &hands[i]

		var side rig.Side
		switch hand.Handedness {
		case "Left":
			side = rig.SideLeft
		case "Right":
			side = rig.SideRight
		default:
			continue
		}

		h.retargetWrist(hand, side, mapping, targets)
		h.retargetFingers(hand, side, mapping, targets)
	}

	return targets
}

// retargetWrist orients the hand from the wrist to middle-MCP vector.
// Fingers pointing straight up is the zero reference.
func (h *HandRetargeter) retargetWrist(hand *detector.HandLandmarks, side rig.Side, mapping rig.RoleMapping, targets map[rig.Role]quat.Number) {
	role := rig.RoleLeftHand
	if side == rig.SideRight {
		role = rig.RoleRightHand
	}
	if _, ok := mapping.Joint(role); !ok {
		return
	}

	wrist := hand.Points[detector.Wrist]
	mcp := hand.Points[detector.MiddleMCP]

	dx := mcp.X - wrist.X
	dy := mcp.Y - wrist.Y
	if dx*dx+dy*dy < degenerateEps {
		return
	}

	sign := sideSign(side, h.tuning.Mirrored)
	angle := math.Atan2(sign*dx, -dy)
	targets[role] = zRot(angle)
}

// retargetFingers infers per-finger curl from the tip-to-MCP distance
// relative to the hand's wrist-to-MCP scale. An extended finger has a
// tip-to-MCP span comparable to that scale; a curled finger collapses it.
func (h *HandRetargeter) retargetFingers(hand *detector.HandLandmarks, side rig.Side, mapping rig.RoleMapping, targets map[rig.Role]quat.Number) {
	normalized := hand.Normalize()
	if normalized == nil {
		return
	}

	for _, role := range fingerRolesBySide[side] {
		if _, ok := mapping.Joint(role); !ok {
			continue
		}

		pts := fingerPoints[role]
		mcp := normalized.Points[pts[0]]
		tip := normalized.Points[pts[1]]

		dx := tip.X - mcp.X
		dy := tip.Y - mcp.Y
		dz := tip.Z - mcp.Z
		span := math.Sqrt(dx*dx + dy*dy + dz*dz)

		// In wrist-normalized space an extended finger spans roughly the
		// wrist-to-middle-MCP unit; clamp the deficit into a curl fraction.
		curl := clamp(1-span, 0, 1)
		targets[role] = xRot(curl * h.tuning.FingerCurlMax)
	}
}
