package rig

import "github.com/golang/geo/r3"

// NewHumanoid builds the default procedural humanoid rig used when no
// external model is loaded. Joint names follow the common Mixamo-style
// convention, so the resolver maps them without overrides.
func NewHumanoid() *Rig {
	hips := NewJoint("Hips")

	spine := NewJoint("Spine")
	spine.Offset = r3.Vector{Y: 0.1}
	hips.AddChild(spine)

	neck := NewJoint("Neck")
	neck.Offset = r3.Vector{Y: 0.25}
	spine.AddChild(neck)

	head := NewJoint("Head")
	head.Offset = r3.Vector{Y: 0.08}
	neck.AddChild(head)

	for _, side := range []string{"Left", "Right"} {
		sign := 1.0
		if side == "Right" {
			sign = -1.0
		}

		shoulder := NewJoint(side + "Shoulder")
		shoulder.Offset = r3.Vector{X: sign * 0.08, Y: 0.22}
		spine.AddChild(shoulder)

		upperArm := NewJoint(side + "Arm")
		upperArm.Offset = r3.Vector{X: sign * 0.1}
		shoulder.AddChild(upperArm)

		forearm := NewJoint(side + "ForeArm")
		forearm.Offset = r3.Vector{X: sign * 0.26}
		upperArm.AddChild(forearm)

		hand := NewJoint(side + "Hand")
		hand.Offset = r3.Vector{X: sign * 0.24}
		forearm.AddChild(hand)

		for _, finger := range []string{"Thumb", "Index", "Middle", "Ring", "Pinky"} {
			f := NewJoint(side + "Hand" + finger + "1")
			f.Offset = r3.Vector{X: sign * 0.08}
			hand.AddChild(f)
		}

		upLeg := NewJoint(side + "UpLeg")
		upLeg.Offset = r3.Vector{X: sign * 0.09}
		hips.AddChild(upLeg)

		leg := NewJoint(side + "Leg")
		leg.Offset = r3.Vector{Y: -0.42}
		upLeg.AddChild(leg)

		foot := NewJoint(side + "Foot")
		foot.Offset = r3.Vector{Y: -0.4}
		leg.AddChild(foot)
	}

	return &Rig{Name: "humanoid", Root: hips}
}
