package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertVecInDelta(t *testing.T, want, got Vec3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], delta, "component %d", i)
	}
}

func TestQuatFromUnitVectors(t *testing.T) {
	down := Vec3{0, -1, 0}

	tests := []struct {
		name string
		to   Vec3
	}{
		{"same direction", Vec3{0, -1, 0}},
		{"right", Vec3{1, 0, 0}},
		{"forward", Vec3{0, 0, 1}},
		{"diagonal", Vec3{1, 1, 1}.Normalize()},
		{"opposite", Vec3{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuatFromUnitVectors(down, tt.to)
			assert.InDelta(t, 1.0, q.Len(), 1e-9)
			assertVecInDelta(t, tt.to, q.Rotate(down), 1e-9)
		})
	}
}

func TestQuatMulComposesRotations(t *testing.T) {
	qx := QuatFromAxisAngle(Vec3{1, 0, 0}, math.Pi/2)
	qy := QuatFromAxisAngle(Vec3{0, 1, 0}, math.Pi/2)
	v := Vec3{0, 0, 1}

	got := qy.Mul(qx).Rotate(v)
	want := qy.Rotate(qx.Rotate(v))
	assertVecInDelta(t, want, got, 1e-9)
}

func TestQuatToMat3MatchesRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, 0.7)
	v := Vec3{0.3, -1.2, 2}
	assertVecInDelta(t, q.Rotate(v), QuatToMat3(q).MulVec3(v), 1e-9)
}

func TestSlerp(t *testing.T) {
	a := QuatIdentity()
	b := QuatFromAxisAngle(Vec3{0, 1, 0}, math.Pi/2)

	t.Run("endpoints", func(t *testing.T) {
		assert.Equal(t, a, Slerp(a, b, 0))
		assert.Equal(t, b, Slerp(a, b, 1))
	})

	t.Run("fraction of the angle", func(t *testing.T) {
		got := Slerp(a, b, 0.3)
		want := QuatFromAxisAngle(Vec3{0, 1, 0}, 0.3*math.Pi/2)
		assert.True(t, want.ApproxEqual(got, 1e-12), "got %v want %v", got, want)
	})

	t.Run("takes the short arc", func(t *testing.T) {
		neg := Quat{-b[0], -b[1], -b[2], -b[3]}
		got := Slerp(a, neg, 0.5)
		want := QuatFromAxisAngle(Vec3{0, 1, 0}, math.Pi/4)
		assert.True(t, want.ApproxEqual(got, 1e-12), "got %v want %v", got, want)
	})

	t.Run("identical inputs", func(t *testing.T) {
		assert.True(t, b.ApproxEqual(Slerp(b, b, 0.3), 1e-12))
	})
}

func TestFromTRS(t *testing.T) {
	m := FromTRS(Vec3{1, 2, 3}, QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi/2), Vec3{2, 2, 2})
	assertVecInDelta(t, Vec3{1, 4, 3}, m.MulPoint(Vec3{1, 0, 0}), 1e-9)
	assertVecInDelta(t, Vec3{1, 2, 3}, m.Translation(), 0)
}

func TestMat4FromColumnMajor(t *testing.T) {
	col := [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		5, 6, 7, 1,
	}
	m := Mat4FromColumnMajor(col)
	assertVecInDelta(t, Vec3{5, 6, 7}, m.Translation(), 0)
	assert.False(t, m.IsIdentity())
}

func TestMat3ToQuatRoundTrip(t *testing.T) {
	for _, q := range []Quat{
		QuatIdentity(),
		QuatFromAxisAngle(Vec3{1, 0, 0}, 2.5),
		QuatFromAxisAngle(Vec3{0, 1, 0}, -3),
		QuatFromAxisAngle(Vec3{0, 0, 1}, 3.1),
		QuatFromAxisAngle(Vec3{1, 1, 0}.Normalize(), 1.2),
	} {
		got := Mat3ToQuat(QuatToMat3(q))
		assert.True(t, q.ApproxEqual(got, 1e-12), "want %v got %v", q, got)
	}
}
