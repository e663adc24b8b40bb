package rig

// Role is a semantic body-part label independent of any specific rig's
// joint naming.
type Role int

// Body roles, in resolution priority order.
const (
	RoleHead Role = iota
	RoleNeck
	RoleSpine
	RoleLeftShoulder
	RoleRightShoulder
	RoleLeftUpperArm
	RoleRightUpperArm
	RoleLeftForearm
	RoleRightForearm
	RoleLeftHand
	RoleRightHand
	RoleLeftHip
	RoleRightHip
	RoleLeftThigh
	RoleRightThigh
	RoleLeftShin
	RoleRightShin
	RoleLeftFoot
	RoleRightFoot
	RoleLeftThumb
	RoleRightThumb
	RoleLeftIndex
	RoleRightIndex
	RoleLeftMiddle
	RoleRightMiddle
	RoleLeftRing
	RoleRightRing
	RoleLeftPinky
	RoleRightPinky
	NumRoles
)

var roleNames = [NumRoles]string{
	"head",
	"neck",
	"spine",
	"left-shoulder",
	"right-shoulder",
	"left-upper-arm",
	"right-upper-arm",
	"left-forearm",
	"right-forearm",
	"left-hand",
	"right-hand",
	"left-hip",
	"right-hip",
	"left-thigh",
	"right-thigh",
	"left-shin",
	"right-shin",
	"left-foot",
	"right-foot",
	"left-thumb",
	"right-thumb",
	"left-index",
	"right-index",
	"left-middle",
	"right-middle",
	"left-ring",
	"right-ring",
	"left-pinky",
	"right-pinky",
}

// String returns the stable textual name of the role.
func (r Role) String() string {
	if r < 0 || r >= NumRoles {
		return "unknown"
	}
	return roleNames[r]
}

// ParseRole returns the role with the given textual name.
func ParseRole(name string) (Role, bool) {
	for i, n := range roleNames {
		if n == name {
			return Role(i), true
		}
	}
	return 0, false
}

// Side identifies which half of the body a role belongs to.
type Side int

const (
	// SideNone marks center-line roles such as head and spine.
	SideNone Side = iota
	// SideLeft marks roles on the person's left.
	SideLeft
	// SideRight marks roles on the person's right.
	SideRight
)

// Side returns which half of the body the role belongs to.
func (r Role) Side() Side {
	switch r {
	case RoleHead, RoleNeck, RoleSpine:
		return SideNone
	case RoleLeftShoulder, RoleLeftUpperArm, RoleLeftForearm, RoleLeftHand,
		RoleLeftHip, RoleLeftThigh, RoleLeftShin, RoleLeftFoot,
		RoleLeftThumb, RoleLeftIndex, RoleLeftMiddle, RoleLeftRing, RoleLeftPinky:
		return SideLeft
	default:
		return SideRight
	}
}

// IsFinger reports whether the role is a per-finger hand role.
func (r Role) IsFinger() bool {
	return r >= RoleLeftThumb && r <= RoleRightPinky
}

// Roles returns all roles in priority order.
func Roles() []Role {
	out := make([]Role, NumRoles)
	for i := range out {
		out[i] = Role(i)
	}
	return out
}
