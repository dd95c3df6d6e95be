package mathutil

import "math"

// Quat represents a quaternion (x, y, z, w).
type Quat [4]float64

// QuatIdentity returns the rotation that leaves every vector unchanged.
func QuatIdentity() Quat {
	return Quat{0, 0, 0, 1}
}

// QuatFromAxisAngle builds a rotation of angle radians around a unit axis.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	s := math.Sin(angle * 0.5)
	return Quat{axis[0] * s, axis[1] * s, axis[2] * s, math.Cos(angle * 0.5)}
}

// QuatFromUnitVectors returns the shortest rotation taking unit vector from onto
// unit vector to. Opposite vectors yield a half turn around an axis orthogonal
// to from.
func QuatFromUnitVectors(from, to Vec3) Quat {
	r := from.Dot(to) + 1

	var q Quat
	if r < 1e-8 {
		r = 0
		if math.Abs(from[0]) > math.Abs(from[2]) {
			q = Quat{-from[1], from[0], 0, r}
		} else {
			q = Quat{0, -from[2], from[1], r}
		}
	} else {
		c := from.Cross(to)
		q = Quat{c[0], c[1], c[2], r}
	}
	return q.Normalize()
}

func (q Quat) Len() float64 {
	return math.Sqrt(q.Dot(q))
}

func (q Quat) Dot(p Quat) float64 {
	return q[0]*p[0] + q[1]*p[1] + q[2]*p[2] + q[3]*p[3]
}

// Normalize returns q scaled to unit length; a zero quaternion becomes identity.
func (q Quat) Normalize() Quat {
	l := q.Len()
	if l < Epsilon {
		return QuatIdentity()
	}
	return Quat{q[0] / l, q[1] / l, q[2] / l, q[3] / l}
}

// Mul returns the Hamilton product q × p (apply p first, then q).
func (q Quat) Mul(p Quat) Quat {
	qx, qy, qz, qw := q[0], q[1], q[2], q[3]
	px, py, pz, pw := p[0], p[1], p[2], p[3]
	return Quat{
		qw*px + qx*pw + qy*pz - qz*py,
		qw*py - qx*pz + qy*pw + qz*px,
		qw*pz + qx*py - qy*px + qz*pw,
		qw*pw - qx*px - qy*py - qz*pz,
	}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q[0], q[1], q[2]}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q[3])).Add(u.Cross(t))
}

// ApproxEqual reports whether q and p describe the same rotation within tol.
// q and -q are treated as equal.
func (q Quat) ApproxEqual(p Quat, tol float64) bool {
	return 1-math.Abs(q.Dot(p)) <= tol
}

// Slerp interpolates from a towards b by t along the shortest arc.
func Slerp(a, b Quat, t float64) Quat {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}

	cosHalf := a.Dot(b)
	if cosHalf < 0 {
		b = Quat{-b[0], -b[1], -b[2], -b[3]}
		cosHalf = -cosHalf
	}
	if cosHalf >= 1 {
		return a
	}

	sqrSinHalf := 1 - cosHalf*cosHalf
	if sqrSinHalf <= 1e-12 {
		s := 1 - t
		return Quat{
			s*a[0] + t*b[0],
			s*a[1] + t*b[1],
			s*a[2] + t*b[2],
			s*a[3] + t*b[3],
		}.Normalize()
	}

	sinHalf := math.Sqrt(sqrSinHalf)
	halfTheta := math.Atan2(sinHalf, cosHalf)
	ra := math.Sin((1-t)*halfTheta) / sinHalf
	rb := math.Sin(t*halfTheta) / sinHalf
	return Quat{
		a[0]*ra + b[0]*rb,
		a[1]*ra + b[1]*rb,
		a[2]*ra + b[2]*rb,
		a[3]*ra + b[3]*rb,
	}
}

// QuatToMat3 converts a quaternion to a 3×3 rotation matrix.
func QuatToMat3(q Quat) Mat3 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat3{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}
