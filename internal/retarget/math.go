// Package retarget converts per-frame landmark detections into smoothed
// joint-local rotations for a resolved skeletal rig.
package retarget

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/ayusman/natya/internal/rig"
)

// degenerateEps is the squared-length floor below which a landmark-derived
// vector is considered degenerate and the role is skipped for the frame.
const degenerateEps = 1e-6

// identityQuat is the neutral rotation.
func identityQuat() quat.Number {
	return quat.Number{Real: 1}
}

// axisAngle builds the rotation of angle radians about the given axis.
func axisAngle(axis r3.Vector, angle float64) quat.Number {
	n := axis.Norm()
	if n < degenerateEps {
		return identityQuat()
	}
	s := math.Sin(angle/2) / n
	return quat.Number{
		Real: math.Cos(angle / 2),
		Imag: axis.X * s,
		Jmag: axis.Y * s,
		Kmag: axis.Z * s,
	}
}

func xRot(angle float64) quat.Number { return axisAngle(r3.Vector{X: 1}, angle) }
func yRot(angle float64) quat.Number { return axisAngle(r3.Vector{Y: 1}, angle) }
func zRot(angle float64) quat.Number { return axisAngle(r3.Vector{Z: 1}, angle) }

func quatDot(p, q quat.Number) float64 {
	return p.Real*q.Real + p.Imag*q.Imag + p.Jmag*q.Jmag + p.Kmag*q.Kmag
}

func quatNormalize(q quat.Number) quat.Number {
	n := math.Sqrt(quatDot(q, q))
	if n < degenerateEps {
		return identityQuat()
	}
	return quat.Scale(1/n, q)
}

// nlerp interpolates from p toward q by t along the shorter arc and
// renormalizes. For the small per-frame steps the smoother takes this is
// indistinguishable from slerp and considerably cheaper.
func nlerp(p, q quat.Number, t float64) quat.Number {
	if quatDot(p, q) < 0 {
		q = quat.Scale(-1, q)
	}
	mixed := quat.Add(quat.Scale(1-t, p), quat.Scale(t, q))
	return quatNormalize(mixed)
}

// rotationAngle returns the absolute rotation angle of q in radians.
func rotationAngle(q quat.Number) float64 {
	r := math.Abs(quatNormalize(q).Real)
	if r > 1 {
		r = 1
	}
	return 2 * math.Acos(r)
}

// finiteQuat reports whether all components of q are finite.
func finiteQuat(q quat.Number) bool {
	for _, v := range [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// angleBetween returns the angle between two vectors in [0, π]. The second
// return value is false when either vector is too short to define an angle.
func angleBetween(a, b r3.Vector) (float64, bool) {
	na, nb := a.Norm(), b.Norm()
	if na < degenerateEps || nb < degenerateEps {
		return 0, false
	}
	cos := a.Dot(b) / (na * nb)
	cos = clamp(cos, -1, 1)
	return math.Acos(cos), true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sideSign is the single place the mirrored-input convention lives. All
// lateral computations multiply their cross-body component by this sign so
// left and right limbs rotate consistently whether or not the video feed is
// horizontally mirrored upstream.
func sideSign(side rig.Side, mirrored bool) float64 {
	var s float64
	switch side {
	case rig.SideLeft:
		s = 1
	case rig.SideRight:
		s = -1
	default:
		s = 1
	}
	if !mirrored {
		s = -s
	}
	return s
}

// lateralSign is sideSign for center-line values (head yaw, torso roll)
// whose direction flips with mirroring but not with body side.
func lateralSign(mirrored bool) float64 {
	if mirrored {
		return 1
	}
	return -1
}
